package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"movura-admin/core/auth"
	"movura-admin/core/utils"
)

const invalidCredentialsMsg = "invalid credentials"

type loginResponse struct {
	Token string       `json:"token"`
	User  auth.UserDTO `json:"user"`
}

// handleLogin verifies credentials and mints a bearer session. Every
// failure mode answers with the same message so callers cannot probe
// which identities exist.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var cred auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&cred); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": invalidCredentialsMsg})
		return
	}
	cred.Identity = strings.ToLower(strings.TrimSpace(cred.Identity))
	if cred.Identity == "" || cred.Secret == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": invalidCredentialsMsg})
		return
	}
	user, roles, err := s.users.FindByIdentity(r.Context(), cred.Identity)
	if err != nil {
		s.logger.Errorf("login lookup: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if user == nil || !user.Active {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": invalidCredentialsMsg})
		return
	}
	ph, err := auth.ParsePasswordHash(user.PasswordHash, user.Salt)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": invalidCredentialsMsg})
		return
	}
	ok, err := auth.VerifyPassword(cred.Secret, s.cfg.Pepper, ph)
	if err != nil || !ok {
		s.audit(r, cred.Identity, "auth.login.fail", "")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": invalidCredentialsMsg})
		return
	}
	sess, err := s.sessionManager.Create(r.Context(), user, roles, s.clientIP(r), r.UserAgent())
	if err != nil {
		s.logger.Errorf("login session: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.users.Update(r.Context(), user, nil); err != nil {
		s.logger.Errorf("login last seen: %v", err)
	}
	s.audit(r, user.Identity, "auth.login", "")
	s.metrics.logins.Inc()
	writeJSON(w, http.StatusOK, loginResponse{Token: sess.Token, User: auth.UserToDTO(user, roles)})
}

// handleForgotPassword always answers success-shaped so the endpoint
// cannot be used to enumerate identities. The actual reset handoff is
// logged for an operator to follow up.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identity string `json:"identity"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	identity := strings.ToLower(strings.TrimSpace(req.Identity))
	if identity != "" {
		if user, _, err := s.users.FindByIdentity(r.Context(), identity); err == nil && user != nil {
			s.audit(r, identity, "auth.forgot", "")
			s.logger.Printf("password reset requested for %s", identity)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "si la cuenta existe, recibiras instrucciones",
	})
}

type changePasswordRequest struct {
	Secret  string `json:"secret"`
	Confirm string `json:"confirm"`
}

// handleChangeFirstPassword completes the forced first-login change:
// both fields must match, pass the secret policy, and differ from the
// default. All other sessions of the user are revoked afterwards.
func (s *Server) handleChangeFirstPassword(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	if req.Secret != req.Confirm {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "las contrasenas no coinciden"})
		return
	}
	if err := utils.ValidateSecret(req.Secret, s.cfg.Security.MinSecretLength); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	user, _, err := s.users.Get(r.Context(), sess.UserID)
	if err != nil || user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	ph, err := auth.HashPassword(req.Secret, s.cfg.Pepper)
	if err != nil {
		s.logger.Errorf("password hash: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if err := s.users.UpdatePassword(r.Context(), user.ID, ph.Hash, ph.Salt, false); err != nil {
		s.logger.Errorf("password update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if _, err := s.sessionManager.RevokeAllForUser(r.Context(), user.ID, user.Identity); err != nil {
		s.logger.Errorf("revoke sessions: %v", err)
	}
	sessNew, err := s.sessionManager.Create(r.Context(), user, sess.Roles, s.clientIP(r), r.UserAgent())
	if err != nil {
		s.logger.Errorf("reissue session: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	user.FirstLogin = false
	s.audit(r, user.Identity, "auth.password.change", "first login")
	writeJSON(w, http.StatusOK, loginResponse{Token: sessNew.Token, User: auth.UserToDTO(user, sess.Roles)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	if err := s.sessionManager.Revoke(r.Context(), sess.Token, sess.Identity); err != nil {
		s.logger.Errorf("logout: %v", err)
	}
	s.audit(r, sess.Identity, "auth.logout", "")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	user, roles, err := s.users.Get(r.Context(), sess.UserID)
	if err != nil || user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, auth.UserToDTO(user, roles))
}

func (s *Server) audit(r *http.Request, actor, action, details string) {
	if s.audits == nil {
		return
	}
	if err := s.audits.Append(r.Context(), actor, action, details); err != nil && s.logger != nil {
		s.logger.Errorf("audit %s: %v", action, err)
	}
}
