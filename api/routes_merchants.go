package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"movura-admin/core/auth"
	"movura-admin/core/store"
)

type merchantRequest struct {
	FacilityID      string `json:"facility_id"`
	Name            string `json:"name"`
	CourtesyMinutes int    `json:"courtesy_minutes"`
}

func (req *merchantRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return errors.New("name required")
	}
	if req.CourtesyMinutes < 0 || req.CourtesyMinutes > 24*60 {
		return errors.New("courtesy_minutes out of range")
	}
	return nil
}

func (s *Server) handleListMerchants(w http.ResponseWriter, r *http.Request) {
	list, err := s.merchants.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("facility_id")))
	if err != nil {
		s.logger.Errorf("merchants list: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if list == nil {
		list = []store.Merchant{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateMerchant(w http.ResponseWriter, r *http.Request) {
	var req merchantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	if err := req.validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	f, err := s.facilities.Get(r.Context(), strings.TrimSpace(req.FacilityID))
	if err != nil {
		s.logger.Errorf("merchant facility lookup: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if f == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown facility"})
		return
	}
	m := &store.Merchant{
		FacilityID:      f.ID,
		Name:            req.Name,
		CourtesyMinutes: req.CourtesyMinutes,
	}
	if _, err := s.merchants.Create(r.Context(), m); err != nil {
		s.logger.Errorf("merchant create: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	sess := auth.FromContext(r.Context())
	s.audit(r, sess.Identity, "merchant.create", m.ID)
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleUpdateMerchant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req merchantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	if err := req.validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	m, err := s.merchants.Get(r.Context(), id)
	if err != nil {
		s.logger.Errorf("merchant get: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if m == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	m.Name = req.Name
	m.CourtesyMinutes = req.CourtesyMinutes
	if err := s.merchants.Update(r.Context(), m); err != nil {
		s.logger.Errorf("merchant update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	sess := auth.FromContext(r.Context())
	s.audit(r, sess.Identity, "merchant.update", id)
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMerchantStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != store.MerchantStatusActive && status != store.MerchantStatusInactive {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
		return
	}
	if err := s.merchants.SetStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		s.logger.Errorf("merchant status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	sess := auth.FromContext(r.Context())
	s.audit(r, sess.Identity, "merchant.status", id+" -> "+status)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
