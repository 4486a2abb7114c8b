package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"movura-admin/core/store"
)

// accountRow is the listing shape for staff accounts. Credential
// material never leaves the store layer.
type accountRow struct {
	ID          string     `json:"id"`
	Identity    string     `json:"identity"`
	FullName    string     `json:"full_name"`
	FirstLogin  bool       `json:"first_login"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.logger.Errorf("accounts list: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	rows := make([]accountRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, accountRow{
			ID:          u.ID,
			Identity:    u.Identity,
			FullName:    u.FullName,
			FirstLogin:  u.FirstLogin,
			Active:      u.Active,
			CreatedAt:   u.CreatedAt,
			LastLoginAt: u.LastLoginAt,
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad limit"})
			return
		}
	}
	entries, err := s.audits.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Errorf("audit log: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if entries == nil {
		entries = []store.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
