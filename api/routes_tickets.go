package api

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"movura-admin/core/auth"
	"movura-admin/core/pricing"
	"movura-admin/core/store"
	"movura-admin/core/utils"
)

const exitQRPrefix = "EXIT:"

func exitPayload(ticketID string) string {
	return exitQRPrefix + ticketID
}

func (s *Server) handleOpenTicket(w http.ResponseWriter, r *http.Request) {
	facilityID := chi.URLParam(r, "id")
	var req struct {
		Plate string `json:"plate"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	if req.Email != "" {
		if err := utils.ValidateIdentity(req.Email); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email: " + err.Error()})
			return
		}
	}
	if req.Phone != "" {
		if err := utils.ValidatePhone(req.Phone); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone: " + err.Error()})
			return
		}
	}
	f, err := s.facilities.Get(r.Context(), facilityID)
	if err != nil {
		s.logger.Errorf("ticket facility: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if f == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if f.Status != store.FacilityStatusActive {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "facility not active"})
		return
	}
	t := &store.Ticket{
		FacilityID: f.ID,
		Plate:      req.Plate,
		Email:      req.Email,
		Phone:      req.Phone,
	}
	if _, err := s.tickets.Create(r.Context(), t); err != nil {
		s.logger.Errorf("ticket create: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	sess := auth.FromContext(r.Context())
	s.audit(r, sess.Identity, "ticket.open", t.ID)
	writeJSON(w, http.StatusCreated, t)
}

// handleTicketSearch finds open tickets by email or phone for the
// manual settlement screen.
func (s *Server) handleTicketSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	email := strings.TrimSpace(q.Get("email"))
	phone := strings.TrimSpace(q.Get("phone"))
	if email == "" && phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email or phone required"})
		return
	}
	list, err := s.tickets.FindOpenByContact(r.Context(), strings.TrimSpace(q.Get("facility_id")), email, phone)
	if err != nil {
		s.logger.Errorf("ticket search: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if list == nil {
		list = []store.Ticket{}
	}
	writeJSON(w, http.StatusOK, list)
}

type settleResponse struct {
	Ticket      store.Ticket `json:"ticket"`
	AmountCents int64        `json:"amount_cents"`
	ExitQR      string       `json:"exit_qr"`
	ExitQRImage string       `json:"exit_qr_image"`
}

// handleSettle closes an open ticket: the amount is computed from the
// facility tariff, optionally discounted by a merchant courtesy, and
// an exit QR is issued for the gate.
func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "id")
	var req struct {
		MerchantID string `json:"merchant_id"`
		Method     string `json:"method"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	t, err := s.tickets.Get(r.Context(), ticketID)
	if err != nil {
		s.logger.Errorf("settle get: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if t.Status != store.TicketStatusOpen {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "ticket already settled"})
		return
	}
	f, err := s.facilities.Get(r.Context(), t.FacilityID)
	if err != nil || f == nil {
		s.logger.Errorf("settle facility: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	courtesy := 0
	if req.MerchantID != "" {
		m, err := s.merchants.Get(r.Context(), req.MerchantID)
		if err != nil {
			s.logger.Errorf("settle merchant: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		if m == nil || m.Status != store.MerchantStatusActive {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown merchant"})
			return
		}
		courtesy = m.CourtesyMinutes
	}
	now := time.Now().UTC()
	amount := pricing.Fee(f.Tariffs, t.EnteredAt, now, courtesy)
	sess := auth.FromContext(r.Context())
	p := &store.Payment{
		FacilityID:  f.ID,
		AmountCents: amount,
		Method:      req.Method,
		SettledBy:   sess.Identity,
		SettledAt:   now,
	}
	if err := s.tickets.Settle(r.Context(), t.ID, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "ticket already settled"})
			return
		}
		s.logger.Errorf("settle: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	t.Status = store.TicketStatusPaid
	t.ExitedAt = &now
	payload := exitPayload(t.ID)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		s.logger.Errorf("settle qr: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	s.audit(r, sess.Identity, "ticket.settle", t.ID)
	s.metrics.settlements.Inc()
	writeJSON(w, http.StatusOK, settleResponse{
		Ticket:      *t,
		AmountCents: amount,
		ExitQR:      payload,
		ExitQRImage: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}

// handleExitQR re-renders the exit code for a paid ticket as a PNG.
func (s *Server) handleExitQR(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "id")
	t, err := s.tickets.Get(r.Context(), ticketID)
	if err != nil {
		s.logger.Errorf("exit qr: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if t == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if t.Status != store.TicketStatusPaid {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "ticket not settled"})
		return
	}
	png, err := qrcode.Encode(exitPayload(t.ID), qrcode.Medium, 256)
	if err != nil {
		s.logger.Errorf("exit qr encode: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// handleCheckout resolves an exiting car by plate. Unknown plates get a
// plain 400 so gate hardware can fall back to manual handling.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FacilityID string `json:"facility_id"`
		Plate      string `json:"plate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	if strings.TrimSpace(req.Plate) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plate required"})
		return
	}
	t, err := s.tickets.FindOpenByPlate(r.Context(), strings.TrimSpace(req.FacilityID), req.Plate)
	if err != nil {
		s.logger.Errorf("checkout: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if t == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plate not found"})
		return
	}
	f, err := s.facilities.Get(r.Context(), t.FacilityID)
	if err != nil || f == nil {
		s.logger.Errorf("checkout facility: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	amount := pricing.Fee(f.Tariffs, t.EnteredAt, time.Now().UTC(), 0)
	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":       t,
		"amount_cents": amount,
	})
}
