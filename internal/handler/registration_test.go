package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-events/internal/model"
	"github.com/iliyamo/community-events/internal/queue"
	"github.com/iliyamo/community-events/internal/repository"
	"github.com/iliyamo/community-events/internal/service"
)

type fakeEvents struct {
	event *model.Event
	err   error
}

func (f *fakeEvents) GetByID(context.Context, uint64) (*model.Event, error) { return f.event, f.err }

type fakeLedger struct {
	registerRes *repository.RegisterResult
	registerErr error
	promoted    *model.Registration
	unregErr    error
	current     *model.Registration
	currentErr  error
	rank        *int
}

func (f *fakeLedger) Register(context.Context, uint64, uint64) (*repository.RegisterResult, error) {
	return f.registerRes, f.registerErr
}
func (f *fakeLedger) Unregister(context.Context, uint64, uint64) (*model.Registration, error) {
	return f.promoted, f.unregErr
}
func (f *fakeLedger) GetByEventAndUser(context.Context, uint64, uint64) (*model.Registration, error) {
	return f.current, f.currentErr
}
func (f *fakeLedger) WaitlistPosition(context.Context, uint64, uint64) (*int, error) {
	return f.rank, nil
}
func (f *fakeLedger) Counts(context.Context, uint64) (int, int, error) { return 0, 0, nil }
func (f *fakeLedger) ListByUser(context.Context, uint64) ([]repository.RegistrationDetail, error) {
	return nil, nil
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, queue.RegistrationEvent) error { return nil }

func handlerEvent() *model.Event {
	return &model.Event{ID: 1, Title: "Hack Night", EventDate: time.Now().UTC().Add(72 * time.Hour)}
}

func newRegistrationContext(t *testing.T, method, target string, eventID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/events/:id/register")
	c.SetParamNames("id")
	c.SetParamValues(eventID)
	c.Set("user_id", float64(7)) // mimics the JWT middleware
	return c, rec
}

func newHandler(ledger *fakeLedger, events *fakeEvents) *RegistrationHandler {
	return NewRegistrationHandler(service.NewRegistrationService(ledger, events, noopNotifier{}))
}

func TestRegisterHandler_ActiveCreated(t *testing.T) {
	h := newHandler(&fakeLedger{registerRes: &repository.RegisterResult{
		Registration: model.Registration{PublicID: "r1", EventID: 1, UserID: 7, Status: model.RegistrationActive},
	}}, &fakeEvents{event: handlerEvent()})

	c, rec := newRegistrationContext(t, http.MethodPost, "/v1/events/1/register", "1")
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "registration")
	assert.NotContains(t, body, "waitlist_rank")
}

func TestRegisterHandler_WaitlistedIncludesRank(t *testing.T) {
	pos := uint32(3)
	h := newHandler(&fakeLedger{registerRes: &repository.RegisterResult{
		Registration: model.Registration{PublicID: "r2", EventID: 1, UserID: 7,
			Status: model.RegistrationWaitlisted, Position: &pos},
		WaitlistRank: 2,
	}}, &fakeEvents{event: handlerEvent()})

	c, rec := newRegistrationContext(t, http.MethodPost, "/v1/events/1/register", "1")
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		WaitlistRank int `json:"waitlist_rank"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.WaitlistRank)
}

func TestRegisterHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"event missing", repository.ErrEventNotFound, http.StatusNotFound},
		{"closed", repository.ErrRegistrationClosed, http.StatusUnprocessableEntity},
		{"duplicate", repository.ErrAlreadyRegistered, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHandler(&fakeLedger{registerErr: tc.err}, &fakeEvents{event: handlerEvent()})
			c, rec := newRegistrationContext(t, http.MethodPost, "/v1/events/1/register", "1")
			require.NoError(t, h.Register(c))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestRegisterHandler_BadEventID(t *testing.T) {
	h := newHandler(&fakeLedger{}, &fakeEvents{event: handlerEvent()})
	c, rec := newRegistrationContext(t, http.MethodPost, "/v1/events/x/register", "x")
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnregisterHandler(t *testing.T) {
	h := newHandler(&fakeLedger{}, &fakeEvents{event: handlerEvent()})
	c, rec := newRegistrationContext(t, http.MethodDelete, "/v1/events/1/register", "1")
	require.NoError(t, h.Unregister(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUnregisterHandler_NotRegistered(t *testing.T) {
	h := newHandler(&fakeLedger{unregErr: repository.ErrNotRegistered}, &fakeEvents{event: handlerEvent()})
	c, rec := newRegistrationContext(t, http.MethodDelete, "/v1/events/1/register", "1")
	require.NoError(t, h.Unregister(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusHandler_Waitlisted(t *testing.T) {
	rank := 1
	pos := uint32(2)
	h := newHandler(&fakeLedger{
		current: &model.Registration{PublicID: "r3", Status: model.RegistrationWaitlisted, Position: &pos},
		rank:    &rank,
	}, &fakeEvents{event: handlerEvent()})

	c, rec := newRegistrationContext(t, http.MethodGet, "/v1/events/1/registration", "1")
	require.NoError(t, h.Status(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		WaitlistRank *int `json:"waitlist_rank"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.WaitlistRank)
	assert.Equal(t, 1, *body.WaitlistRank)
}
