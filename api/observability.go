package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"movura-admin/core/store"
)

var processStartedAt = time.Now().UTC()

type metricsRegistry struct {
	registry    *prometheus.Registry
	logins      prometheus.Counter
	settlements prometheus.Counter
}

func newMetricsRegistry(tickets store.TicketsStore) *metricsRegistry {
	reg := prometheus.NewRegistry()
	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "movura_uptime_seconds",
		Help: "Process uptime in seconds.",
	}, func() float64 {
		return time.Since(processStartedAt).Seconds()
	}))
	m := &metricsRegistry{
		registry: reg,
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "movura_logins_total",
			Help: "Successful operator logins.",
		}),
		settlements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "movura_settlements_total",
			Help: "Manually settled tickets.",
		}),
	}
	reg.MustRegister(m.logins, m.settlements)
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "movura_open_tickets",
		Help: "Tickets currently open across all facilities.",
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		n, err := tickets.CountOpen(ctx)
		if err != nil {
			return -1
		}
		return float64(n)
	}))
	return m
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil || !s.cfg.Observability.MetricsEnabled {
		http.NotFound(w, r)
		return
	}
	token := strings.TrimSpace(s.cfg.Observability.MetricsToken)
	if token == "" && !s.cfg.IsDev() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	appEnv := ""
	if s.cfg != nil {
		appEnv = s.cfg.AppEnv
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"now":        time.Now().UTC().Format(time.RFC3339Nano),
		"uptime_sec": int64(time.Since(processStartedAt).Seconds()),
		"app_env":    appEnv,
	})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()
	if s.ready == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
		return
	}
	if err := s.ready(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
