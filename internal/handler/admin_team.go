package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-events/internal/model"
	"github.com/iliyamo/community-events/internal/repository"
)

// AdminTeamHandler manages organizing teams and their rosters.
type AdminTeamHandler struct {
	Teams *repository.TeamRepo
	Users *repository.UserRepo
}

func NewAdminTeamHandler(t *repository.TeamRepo, u *repository.UserRepo) *AdminTeamHandler {
	return &AdminTeamHandler{Teams: t, Users: u}
}

type teamReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create adds a new team.
func (h *AdminTeamHandler) Create(c echo.Context) error {
	var req teamReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	t := model.Team{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := h.Teams.Create(ctx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create team failed"})
	}
	t.Members = []model.TeamMember{}
	return c.JSON(http.StatusCreated, t)
}

// List returns all teams with their rosters.
func (h *AdminTeamHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	teams, err := h.Teams.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"teams": teams})
}

type memberReq struct {
	UserID   uint64 `json:"user_id"`
	Position string `json:"position"`
}

// AddMember adds a user to a team roster with a display position.
func (h *AdminTeamHandler) AddMember(c echo.Context) error {
	teamID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid team id"})
	}
	var req memberReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := h.Teams.AddMember(ctx, teamID, req.UserID, req.Position); err != nil {
		switch {
		case errors.Is(err, repository.ErrTeamNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "team not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "already a member"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add member failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveMember drops a user from a team roster.
func (h *AdminTeamHandler) RemoveMember(c echo.Context) error {
	teamID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid team id"})
	}
	userID, err := pathID(c, "userID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Teams.RemoveMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, repository.ErrTeamNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "membership not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove member failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
