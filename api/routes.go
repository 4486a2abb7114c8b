package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"movura-admin/core/rbac"
)

func (s *Server) routes() {
	s.router.Use(s.securityHeadersMiddleware, s.loggingMiddleware)

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)
	s.router.Get("/metrics", s.handleMetrics)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.rateLimitMiddleware(s.handleLogin))
		r.Post("/auth/forgot", s.rateLimitMiddleware(s.handleForgotPassword))
		r.Post("/auth/change-first-password", s.withSession(s.handleChangeFirstPassword))
		r.Post("/auth/logout", s.withSession(s.handleLogout))
		r.Get("/auth/me", s.withSession(s.handleMe))

		r.Get("/parkings", s.guard(rbac.ObjTariffs, rbac.ActView, s.handleListFacilities))
		r.Get("/parkings/{id}", s.guard(rbac.ObjTariffs, rbac.ActView, s.handleGetFacility))
		r.Put("/parkings/{id}/tariffs", s.guard(rbac.ObjTariffs, rbac.ActManage, s.handleUpdateTariffs))
		r.Put("/parkings/{id}/status", s.guard(rbac.ObjTariffs, rbac.ActManage, s.handleFacilityStatus))
		r.Post("/parkings/{id}/tickets", s.guard(rbac.ObjPayments, rbac.ActSettle, s.handleOpenTicket))
		r.Post("/parkings/checkout", s.guard(rbac.ObjPayments, rbac.ActSettle, s.handleCheckout))

		r.Get("/merchants", s.guard(rbac.ObjMerchants, rbac.ActView, s.handleListMerchants))
		r.Post("/merchants", s.guard(rbac.ObjMerchants, rbac.ActManage, s.handleCreateMerchant))
		r.Put("/merchants/{id}", s.guard(rbac.ObjMerchants, rbac.ActManage, s.handleUpdateMerchant))
		r.Put("/merchants/{id}/status", s.guard(rbac.ObjMerchants, rbac.ActManage, s.handleMerchantStatus))

		r.Get("/reports/occupancy", s.guard(rbac.ObjReports, rbac.ActView, s.handleOccupancy))
		r.Get("/reports/transactions", s.guard(rbac.ObjReports, rbac.ActView, s.handleTransactions))

		r.Get("/accounts", s.guard(rbac.ObjAccounts, rbac.ActManage, s.handleListAccounts))
		r.Get("/audit", s.guard(rbac.ObjAccounts, rbac.ActManage, s.handleAuditLog))

		r.Get("/tickets/search", s.guard(rbac.ObjPayments, rbac.ActSettle, s.handleTicketSearch))
		r.Post("/tickets/{id}/settle", s.guard(rbac.ObjPayments, rbac.ActSettle, s.handleSettle))
		r.Get("/tickets/{id}/exit-qr", s.guard(rbac.ObjPayments, rbac.ActSettle, s.handleExitQR))
	})
}

func (s *Server) guard(obj, act string, h http.HandlerFunc) http.HandlerFunc {
	return s.withSession(s.requirePermission(obj, act)(h))
}
