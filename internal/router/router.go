// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
// Currently this is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the staff auth endpoints.  Token-issuing
// operations live under /v1/auth; /v1/me sits behind the JWT
// middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout validates its own credentials so a session can always be
	// closed, even with an expired access token.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the guest-facing routes: the cached menu
// read and the QR order endpoint.  No JWT; the rate limiter is the
// only gate.
func RegisterPublic(e *echo.Echo, m *handler.MenuHandler, o *handler.OrderHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/public/menu", m.PublicMenu, cache)
	e.POST("/v1/public/orders", o.PlaceQR)
}
