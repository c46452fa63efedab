package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-events/internal/handler"
	"github.com/iliyamo/community-events/internal/middleware"
	"github.com/iliyamo/community-events/internal/model"
)

// RegisterAdmin registers the event, position, project, user directory and
// team management endpoints under /v1/admin for ADMIN and SUPERADMIN users.
// Role changes are additionally restricted to SUPERADMIN.
func RegisterAdmin(e *echo.Echo, ev *handler.AdminEventHandler, pos *handler.AdminPositionHandler, pr *handler.ProjectHandler, us *handler.AdminUserHandler, tm *handler.AdminTeamHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin),
	)

	g.POST("/events", ev.Create)
	g.GET("/events", ev.List)
	g.GET("/events/:id", ev.Detail)
	g.PUT("/events/:id", ev.Update)
	g.GET("/events/:id/registrations", ev.Registrations)
	g.PATCH("/registrations/:regID/attendance", ev.SetAttendance)
	g.POST("/check-in", ev.CheckIn)

	g.POST("/positions", pos.Create)
	g.GET("/positions", pos.List)
	g.PUT("/positions/:id", pos.Update)
	g.GET("/positions/:id/applications", pos.ListApplications)
	g.PATCH("/applications/:appID/status", pos.ReviewApplication)

	g.POST("/projects", pr.Create)
	g.PUT("/projects/:id", pr.Update)

	g.GET("/users", us.List)

	g.POST("/teams", tm.Create)
	g.GET("/teams", tm.List)
	g.POST("/teams/:id/members", tm.AddMember)
	g.DELETE("/teams/:id/members/:userID", tm.RemoveMember)

	super := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleSuperAdmin),
	)
	super.POST("/users/:id/role", us.UpdateRole)
}
