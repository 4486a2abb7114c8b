package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"movura-admin/core/store"
)

func (s *Server) handleOccupancy(w http.ResponseWriter, r *http.Request) {
	rows, err := s.tickets.Occupancy(r.Context())
	if err != nil {
		s.logger.Errorf("occupancy: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if rows == nil {
		rows = []store.OccupancyRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func parseReportTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseReportTime(strings.TrimSpace(q.Get("from")))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad from"})
		return
	}
	to, err := parseReportTime(strings.TrimSpace(q.Get("to")))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad to"})
		return
	}
	limit := 0
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad limit"})
			return
		}
	}
	list, err := s.tickets.Transactions(r.Context(), store.TransactionsFilter{
		FacilityID: strings.TrimSpace(q.Get("facility_id")),
		From:       from,
		To:         to,
		Limit:      limit,
	})
	if err != nil {
		s.logger.Errorf("transactions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if list == nil {
		list = []store.Payment{}
	}
	var total int64
	for _, p := range list {
		total += p.AmountCents
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payments":    list,
		"total_cents": total,
	})
}
