package router

import (
	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/handler"
	"github.com/biskaken/garage-api/internal/middleware"
	"github.com/biskaken/garage-api/internal/model"
	"github.com/biskaken/garage-api/internal/token"
)

// RegisterInvoices registers billing endpoints under /api/invoices.
func RegisterInvoices(e *echo.Echo, h *handler.InvoiceHandler, codec *token.Codec, store middleware.PrincipalSource) {
	g := e.Group("/api/invoices",
		middleware.Authenticate(codec, store),
		middleware.RequireRole(staffRoles...),
	)
	g.GET("", h.List, middleware.Validate(handler.ListInvoicesSchema))
	g.POST("", h.Create, middleware.Validate(handler.CreateInvoiceSchema))
	g.GET("/:id", h.Get, middleware.Validate(handler.InvoiceIDSchema))
	g.POST("/:id/send", h.Send, middleware.Validate(handler.InvoiceIDSchema))
	g.POST("/:id/cancel", h.Cancel, middleware.Validate(handler.InvoiceIDSchema))
	g.POST("/:id/payments", h.RecordPayment, middleware.Validate(handler.RecordPaymentSchema))
	g.DELETE("/:id", h.Delete,
		middleware.RequireRole(model.RoleAdmin),
		middleware.Validate(handler.InvoiceIDSchema))
}

// RegisterReports registers the dashboard summary. The aggregate queries are
// heavy enough to cache; staleness is bounded by the cache TTL.
func RegisterReports(e *echo.Echo, h *handler.ReportHandler, codec *token.Codec, store middleware.PrincipalSource, cacher echo.MiddlewareFunc) {
	g := e.Group("/api/reports",
		middleware.Authenticate(codec, store),
		middleware.RequireRole(model.RoleAdmin, model.RoleSubAdmin),
	)
	g.GET("/summary", h.Summary, cacher)
}
