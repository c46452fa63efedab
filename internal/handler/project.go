package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-events/internal/model"
	"github.com/iliyamo/community-events/internal/repository"
)

// ProjectHandler serves the public project showcase and its admin
// management endpoints.
type ProjectHandler struct {
	Projects *repository.ProjectRepo
}

func NewProjectHandler(p *repository.ProjectRepo) *ProjectHandler {
	return &ProjectHandler{Projects: p}
}

// List returns all showcase projects, newest first.
func (h *ProjectHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	projects, err := h.Projects.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"projects": projects})
}

// projectReq carries the mutable fields of a project.
type projectReq struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Languages    []string            `json:"languages"`
	Link         string              `json:"link"`
	Color        string              `json:"color"`
	ImageURL     *string             `json:"image_url"`
	Contributors []model.Contributor `json:"contributors"`
}

func (req *projectReq) toModel(p *model.Project) error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return errors.New("title required")
	}
	p.Title = req.Title
	p.Description = req.Description
	p.Languages = req.Languages
	p.Link = strings.TrimSpace(req.Link)
	p.Color = strings.TrimSpace(req.Color)
	p.ImageURL = req.ImageURL
	p.Contributors = req.Contributors
	return nil
}

// Create adds a new project card.
func (h *ProjectHandler) Create(c echo.Context) error {
	var req projectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var p model.Project
	if err := req.toModel(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Projects.Create(ctx, &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create project failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

// Update replaces the mutable fields of a project.
func (h *ProjectHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id"})
	}
	var req projectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p := model.Project{ID: id}
	if err := req.toModel(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Projects.Update(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update project failed"})
	}
	return c.JSON(http.StatusOK, p)
}
