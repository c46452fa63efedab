package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-events/internal/model"
	"github.com/iliyamo/community-events/internal/repository"
)

// PublicEventHandler serves the anonymous browsing endpoints.
type PublicEventHandler struct {
	Events        *repository.EventRepo
	Registrations *repository.RegistrationRepo
}

func NewPublicEventHandler(e *repository.EventRepo, r *repository.RegistrationRepo) *PublicEventHandler {
	return &PublicEventHandler{Events: e, Registrations: r}
}

// eventView is the public projection of an event, with derived counts.
type eventView struct {
	model.Event
	RegistrationOpen bool `json:"registration_open"`
	ActiveCount      int  `json:"active_count"`
	WaitlistLength   int  `json:"waitlist_length"`
	SpotsLeft        *int `json:"spots_left,omitempty"`
}

func buildEventView(e model.Event, active, waitlisted int) eventView {
	v := eventView{
		Event:            e,
		RegistrationOpen: e.IsRegistrationOpen(time.Now().UTC()),
		ActiveCount:      active,
		WaitlistLength:   waitlisted,
	}
	if e.HasCapacityLimit() {
		left := int(*e.Capacity) - active
		if left < 0 {
			left = 0
		}
		v.SpotsLeft = &left
	}
	return v
}

// List returns all publicly visible events ordered by date.
func (h *PublicEventHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	events, err := h.Events.List(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		active, waitlisted, err := h.Registrations.Counts(ctx, e.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		views = append(views, buildEventView(e, active, waitlisted))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": views})
}

// Detail returns one publicly visible event with its derived counts.
func (h *PublicEventHandler) Detail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// Hidden and test events 404 for anonymous callers.
	if !e.IsPublic() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}

	active, waitlisted, err := h.Registrations.Counts(ctx, e.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, buildEventView(*e, active, waitlisted))
}
