package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-events/internal/model"
	"github.com/iliyamo/community-events/internal/repository"
)

// PositionHandler serves the public position listing and the member-facing
// application flow.
type PositionHandler struct {
	Positions    *repository.PositionRepo
	Applications *repository.ApplicationRepo
}

func NewPositionHandler(p *repository.PositionRepo, a *repository.ApplicationRepo) *PositionHandler {
	return &PositionHandler{Positions: p, Applications: a}
}

// List returns all open positions.
func (h *PositionHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	positions, err := h.Positions.List(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"positions": positions})
}

// Detail returns one open position with its application questions.  Draft
// and inactive positions 404 for anonymous callers.
func (h *PositionHandler) Detail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid position id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	p, err := h.Positions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPositionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "position not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !p.IsOpen() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "position not found"})
	}
	return c.JSON(http.StatusOK, p)
}

type applyReq struct {
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Answers map[string]string `json:"answers"`
}

// Apply submits the caller's application for an open position.  One
// application per user per position, ever; a rejected application does not
// free the slot.
func (h *PositionHandler) Apply(c echo.Context) error {
	positionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid position id"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req applyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and email required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	p, err := h.Positions.GetByID(ctx, positionID)
	if err != nil {
		if errors.Is(err, repository.ErrPositionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "position not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !p.IsOpen() {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "position is not accepting applications"})
	}

	app := model.Application{
		PositionID: positionID,
		UserID:     userID,
		Name:       req.Name,
		Email:      req.Email,
		Answers:    req.Answers,
	}
	if err := h.Applications.Submit(ctx, &app); err != nil {
		if errors.Is(err, repository.ErrAlreadyApplied) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already applied for this position"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "apply failed"})
	}
	return c.JSON(http.StatusCreated, app)
}

// MyApplication returns the caller's application for a position, if any.
func (h *PositionHandler) MyApplication(c echo.Context) error {
	positionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid position id"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	app, err := h.Applications.GetByPositionAndUser(ctx, positionID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no application for this position"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, app)
}
