package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"movura-admin/config"
	"movura-admin/core/auth"
	"movura-admin/core/rbac"
	"movura-admin/core/store"
	"movura-admin/core/utils"
)

type Server struct {
	cfg            *config.AppConfig
	router         chi.Router
	httpServer     *http.Server
	logger         *utils.Logger
	sessionManager *auth.SessionManager
	users          store.UsersStore
	sessions       store.SessionStore
	facilities     store.FacilitiesStore
	merchants      store.MerchantsStore
	tickets        store.TicketsStore
	audits         store.AuditStore
	policy         *rbac.Policy
	metrics        *metricsRegistry
	loginLimiter   *requestLimiter
	ready          func(context.Context) error
}

func NewServer(cfg *config.AppConfig, db *sql.DB, sessions store.SessionStore, logger *utils.Logger) (*Server, error) {
	policy, err := rbac.NewPolicy()
	if err != nil {
		return nil, err
	}
	burst := cfg.Security.LoginBurst
	if burst <= 0 {
		burst = 5
	}
	s := &Server{
		cfg:            cfg,
		router:         chi.NewRouter(),
		logger:         logger,
		sessionManager: auth.NewSessionManager(sessions, cfg.EffectiveSessionTTL()),
		users:          store.NewUsersStore(db),
		sessions:       sessions,
		facilities:     store.NewFacilitiesStore(db),
		merchants:      store.NewMerchantsStore(db),
		tickets:        store.NewTicketsStore(db),
		audits:         store.NewAuditStore(db),
		policy:         policy,
		loginLimiter:   newLimiter(burst, time.Minute),
		ready:          func(ctx context.Context) error { return db.PingContext(ctx) },
	}
	s.metrics = newMetricsRegistry(s.tickets)
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Printf("listening on %s (tls=%v)", s.cfg.ListenAddr, s.cfg.TLSEnabled)
	if s.cfg.TLSEnabled {
		return s.httpServer.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
