package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-events/internal/handler"
	"github.com/iliyamo/community-events/internal/middleware"
	"github.com/iliyamo/community-events/internal/model"
)

// RegisterMember registers the member-scoped registration and application
// endpoints under /v1.  All routes require a valid JWT; any role may
// register for events or apply for positions.
func RegisterMember(e *echo.Echo, h *handler.RegistrationHandler, pos *handler.PositionHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleMember, model.RoleAdmin, model.RoleSuperAdmin),
	)
	g.POST("/events/:id/register", h.Register)
	g.DELETE("/events/:id/register", h.Unregister)
	g.GET("/events/:id/registration", h.Status)
	g.GET("/my-registrations", h.MyRegistrations)
	g.POST("/positions/:id/apply", pos.Apply)
	g.GET("/positions/:id/application", pos.MyApplication)
}
