// Package router maps the HTTP surface onto handlers and stacks the
// middleware pipeline for each group: authenticate, then authorize, then
// validate, then the handler.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/handler"
	"github.com/biskaken/garage-api/internal/middleware"
	"github.com/biskaken/garage-api/internal/token"
)

// RegisterRoutes registers endpoints that carry no authentication at all.
func RegisterRoutes(e *echo.Echo) {
	// Liveness probe for load balancers and monitors.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers login and identity endpoints. Login is public but
// rate limited; /api/auth/me requires a valid token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, codec *token.Codec, store middleware.PrincipalSource, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/login", a.Login, limiter, middleware.Validate(handler.LoginSchema))

	g.GET("/me", a.Me, middleware.Authenticate(codec, store))
}

// RegisterShop registers the public storefront endpoint. A token is not
// required, but a valid one personalizes the response.
func RegisterShop(e *echo.Echo, s *handler.ShopHandler, codec *token.Codec, store middleware.PrincipalSource) {
	e.GET("/api/shop", s.Info, middleware.OptionalAuth(codec, store))
}
