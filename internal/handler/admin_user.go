package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-events/internal/model"
	"github.com/iliyamo/community-events/internal/repository"
)

// AdminUserHandler serves the user directory and role management.
type AdminUserHandler struct {
	Users *repository.UserRepo
}

func NewAdminUserHandler(u *repository.UserRepo) *AdminUserHandler {
	return &AdminUserHandler{Users: u}
}

// List returns the user directory, optionally filtered by ?q= over name
// and email.
func (h *AdminUserHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	users, err := h.Users.List(ctx, c.QueryParam("q"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

type roleReq struct {
	Role string `json:"role"`
}

// UpdateRole grants or revokes admin rights.  Only MEMBER and ADMIN can be
// assigned; superadmin accounts cannot be modified through the API, and
// callers cannot change their own role.
func (h *AdminUserHandler) UpdateRole(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	targetID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if targetID == callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot change own role"})
	}

	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := model.Role(strings.ToUpper(strings.TrimSpace(req.Role)))
	if role != model.RoleMember && role != model.RoleAdmin {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be MEMBER or ADMIN"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	target, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if target.Role == model.RoleSuperAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot modify a superadmin"})
	}
	if target.Role == role {
		return c.JSON(http.StatusOK, echo.Map{"user_id": targetID, "role": role})
	}

	if err := h.Users.UpdateRole(ctx, targetID, role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": targetID, "role": role})
}
