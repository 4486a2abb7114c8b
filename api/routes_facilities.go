package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"movura-admin/core/auth"
	"movura-admin/core/store"
	"movura-admin/core/utils"
)

func (s *Server) handleListFacilities(w http.ResponseWriter, r *http.Request) {
	list, err := s.facilities.List(r.Context())
	if err != nil {
		s.logger.Errorf("facilities list: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if list == nil {
		list = []store.Facility{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetFacility(w http.ResponseWriter, r *http.Request) {
	f, err := s.facilities.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.logger.Errorf("facility get: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if f == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func validateTariffs(t store.TariffConfig) error {
	if t.BaseRateCents < 0 || t.HourlyCents < 0 || t.FractionCents < 0 {
		return errors.New("amounts must not be negative")
	}
	if t.FractionMinutes < 1 || t.FractionMinutes > 60 {
		return errors.New("fraction_minutes must be between 1 and 60")
	}
	if t.GraceMinutes < 0 || t.GraceMinutes > 240 {
		return errors.New("grace_minutes must be between 0 and 240")
	}
	if err := utils.ValidateCutoff(t.Cutoff); err != nil {
		return fmt.Errorf("cutoff: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateTariffs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var t store.TariffConfig
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	if err := validateTariffs(t); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.facilities.UpdateTariffs(r.Context(), id, t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		s.logger.Errorf("tariffs update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	sess := auth.FromContext(r.Context())
	s.audit(r, sess.Identity, "tariffs.update", id)
	f, err := s.facilities.Get(r.Context(), id)
	if err != nil || f == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleFacilityStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != store.FacilityStatusActive && status != store.FacilityStatusCancelled {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
		return
	}
	if err := s.facilities.SetStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		s.logger.Errorf("facility status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	sess := auth.FromContext(r.Context())
	s.audit(r, sess.Identity, "facility.status", id+" -> "+status)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
