package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-events/internal/model"
	"github.com/iliyamo/community-events/internal/repository"
)

// AdminPositionHandler serves position management and application review.
type AdminPositionHandler struct {
	Positions    *repository.PositionRepo
	Applications *repository.ApplicationRepo
}

func NewAdminPositionHandler(p *repository.PositionRepo, a *repository.ApplicationRepo) *AdminPositionHandler {
	return &AdminPositionHandler{Positions: p, Applications: a}
}

// positionReq carries the mutable fields of a position.
type positionReq struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Tags        []string                 `json:"tags"`
	Questions   []model.PositionQuestion `json:"questions"`
	Status      string                   `json:"status"`
}

func (req *positionReq) toModel(p *model.Position) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return errors.New("name required")
	}
	status := model.PositionStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	switch status {
	case "":
		status = model.PositionDraft
	case model.PositionDraft, model.PositionActive, model.PositionInactive:
	default:
		return errors.New("status must be draft, active or inactive")
	}
	for _, q := range req.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return errors.New("questions must not be blank")
		}
		switch q.Type {
		case "text", "textarea", "select", "checkbox", "file":
		default:
			return errors.New("question type must be text, textarea, select, checkbox or file")
		}
	}

	p.Name = req.Name
	p.Description = req.Description
	p.Tags = req.Tags
	p.Questions = req.Questions
	p.Status = status
	return nil
}

// Create adds a new position.  Positions start as drafts unless a status is
// given.
func (h *AdminPositionHandler) Create(c echo.Context) error {
	var req positionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var p model.Position
	if err := req.toModel(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Positions.Create(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create position failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

// Update replaces the mutable fields of a position.
func (h *AdminPositionHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid position id"})
	}
	var req positionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p := model.Position{ID: id}
	if err := req.toModel(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Positions.Update(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrPositionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "position not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update position failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// List returns all positions including drafts and inactive ones.
func (h *AdminPositionHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	positions, err := h.Positions.List(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"positions": positions})
}

// ListApplications returns every application for a position, oldest first.
func (h *AdminPositionHandler) ListApplications(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid position id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Positions.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPositionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "position not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	apps, err := h.Applications.ListByPosition(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": apps})
}

type applicationReviewReq struct {
	Status string `json:"status"`
}

// ReviewApplication records the review outcome for one application.
// Applications are never deleted; rejection is a status, not a removal.
func (h *AdminPositionHandler) ReviewApplication(c echo.Context) error {
	appID, err := pathID(c, "appID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	var req applicationReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := model.ApplicationStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	switch status {
	case model.ApplicationPending, model.ApplicationAccepted, model.ApplicationRejected:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be pending, accepted or rejected"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Applications.SetStatus(ctx, appID, status); err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
