// Package router wires handlers to their routes and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-events/internal/handler"
	"github.com/iliyamo/community-events/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication beyond
// what the handlers themselves enforce.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints.  Register, login, refresh and
// logout live under /v1/auth without middleware; /v1/me requires a valid
// access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a bearer token (revoke all sessions) or a
	// refresh token in the body (revoke one), so no middleware here.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the anonymous browsing endpoints.  The optional
// cache middleware is applied only here; authenticated responses are never
// cached.
func RegisterPublic(e *echo.Echo, ev *handler.PublicEventHandler, pos *handler.PositionHandler, pr *handler.ProjectHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/events", ev.List)
	g.GET("/events/:id", ev.Detail)
	g.GET("/positions", pos.List)
	g.GET("/positions/:id", pos.Detail)
	g.GET("/projects", pr.List)
}
