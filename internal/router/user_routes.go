package router

import (
	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/handler"
	"github.com/biskaken/garage-api/internal/middleware"
	"github.com/biskaken/garage-api/internal/model"
	"github.com/biskaken/garage-api/internal/token"
)

// RegisterUsers registers staff account management under /api/users.
// Listing is open to SUB_ADMIN so shift leads can see the roster; every
// mutation is ADMIN-only.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, codec *token.Codec, store middleware.PrincipalSource) {
	g := e.Group("/api/users", middleware.Authenticate(codec, store))

	g.GET("", h.List,
		middleware.RequireRole(model.RoleAdmin, model.RoleSubAdmin),
		middleware.Validate(handler.ListUsersSchema))

	admin := middleware.RequireRole(model.RoleAdmin)
	g.POST("", h.Create, admin, middleware.Validate(handler.CreateUserSchema))
	g.PUT("/:id", h.Update, admin, middleware.Validate(handler.UpdateUserSchema))
	g.PUT("/:id/status", h.UpdateStatus, admin, middleware.Validate(handler.UpdateUserStatusSchema))
	g.DELETE("/:id", h.Delete, admin, middleware.Validate(handler.UserIDSchema))
}
