package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-events/internal/repository"
	"github.com/iliyamo/community-events/internal/service"
)

// RegistrationHandler serves the member-facing registration endpoints.
type RegistrationHandler struct {
	Svc *service.RegistrationService
}

func NewRegistrationHandler(svc *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{Svc: svc}
}

// Register attempts to register the caller for an event.  201 carries the
// resulting registration; a full event yields a waitlisted registration
// with its rank rather than an error.
func (h *RegistrationHandler) Register(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	res, err := h.Svc.Register(ctx, eventID, uid)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrRegistrationClosed):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "registration closed"})
		case errors.Is(err, repository.ErrAlreadyRegistered):
			return c.JSON(http.StatusConflict, echo.Map{"error": "already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	body := echo.Map{"registration": res.Registration}
	if res.Registration.IsWaitlisted() {
		body["waitlist_rank"] = res.WaitlistRank
	}
	return c.JSON(http.StatusCreated, body)
}

// Unregister cancels the caller's registration for an event.
func (h *RegistrationHandler) Unregister(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Svc.Unregister(ctx, eventID, uid); err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrNotRegistered):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unregister failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Status reports the caller's registration for an event, including the live
// waitlist rank when queued.
func (h *RegistrationHandler) Status(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	st, err := h.Svc.Status(ctx, eventID, uid)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrNotRegistered):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, st)
}

// MyRegistrations lists the caller's registration history, newest first.
func (h *RegistrationHandler) MyRegistrations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	regs, err := h.Svc.ListMine(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": regs})
}
