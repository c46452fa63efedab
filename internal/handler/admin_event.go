package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-events/internal/model"
	"github.com/iliyamo/community-events/internal/repository"
)

// AdminEventHandler serves the admin event management surface: event CRUD,
// registration listings, attendance and check-in.
type AdminEventHandler struct {
	Events *repository.EventRepo
	Regs   *repository.RegistrationRepo
}

func NewAdminEventHandler(e *repository.EventRepo, r *repository.RegistrationRepo) *AdminEventHandler {
	return &AdminEventHandler{Events: e, Regs: r}
}

// eventReq carries the mutable fields of an event.
type eventReq struct {
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	EventDate            string     `json:"event_date"` // YYYY-MM-DD
	StartTime            *string    `json:"start_time"`
	EndTime              *string    `json:"end_time"`
	Location             *string    `json:"location"`
	Capacity             *uint32    `json:"capacity"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	Status               string     `json:"status"`
}

func (req *eventReq) toModel(e *model.Event) error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return errors.New("title required")
	}
	date, err := time.ParseInLocation("2006-01-02", req.EventDate, time.UTC)
	if err != nil {
		return errors.New("event_date must be YYYY-MM-DD")
	}
	status := model.EventStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	switch status {
	case "":
		status = model.EventStatusDefault
	case model.EventStatusDefault, model.EventStatusHidden, model.EventStatusTest:
	default:
		return errors.New("status must be default, hidden or test")
	}
	for _, clock := range []*string{req.StartTime, req.EndTime} {
		if clock != nil && len(*clock) != 5 {
			return errors.New("times must be HH:MM")
		}
	}
	if req.Capacity != nil && *req.Capacity == 0 {
		return errors.New("capacity must be positive")
	}

	e.Title = req.Title
	e.Description = req.Description
	e.EventDate = date
	e.StartTime = req.StartTime
	e.EndTime = req.EndTime
	e.Location = req.Location
	e.Capacity = req.Capacity
	e.RegistrationDeadline = req.RegistrationDeadline
	e.Status = status
	return nil
}

// Create adds a new event.
func (h *AdminEventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var e model.Event
	if err := req.toModel(&e); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Events.Create(ctx, &e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, e)
}

// Update replaces the mutable fields of an event.  Lowering the capacity
// below the current active count does not cancel anyone; the event simply
// stays over capacity until attrition catches up.
func (h *AdminEventHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	e := model.Event{ID: id}
	if err := req.toModel(&e); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Events.Update(ctx, &e); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	return c.JSON(http.StatusOK, e)
}

// List returns all events including hidden and test ones.
func (h *AdminEventHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	events, err := h.Events.List(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// Detail returns one event regardless of visibility, with counts.
func (h *AdminEventHandler) Detail(c echo.Context) error {
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
	active, waitlisted, err := h.Regs.Counts(ctx, e.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, buildEventView(*e, active, waitlisted))
}

// Registrations lists every registration for an event: active first, then
// the waitlist in promotion order, then cancelled history.
func (h *AdminEventHandler) Registrations(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Events.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	regs, err := h.Regs.ListByEvent(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": regs})
}

type attendanceReq struct {
	Attendance string  `json:"attendance"`
	Notes      *string `json:"notes"`
}

// SetAttendance records the attendance outcome for one registration.
func (h *AdminEventHandler) SetAttendance(c echo.Context) error {
	regID, err := pathID(c, "regID")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}
	var req attendanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	attendance := model.AttendanceStatus(strings.ToLower(strings.TrimSpace(req.Attendance)))
	switch attendance {
	case model.AttendancePending, model.AttendanceAttended, model.AttendanceNoShow:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "attendance must be pending, attended or no_show"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Regs.SetAttendance(ctx, regID, attendance, req.Notes); err != nil {
		if errors.Is(err, repository.ErrNotRegistered) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "registration not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

type checkInReq struct {
	Code string `json:"code"`
}

// CheckIn marks an active registration attended by its public reference
// code, as presented at the door.
func (h *AdminEventHandler) CheckIn(c echo.Context) error {
	var req checkInReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Regs.CheckInByPublicID(ctx, strings.TrimSpace(req.Code)); err != nil {
		if errors.Is(err, repository.ErrNotRegistered) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active registration for code"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
