package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-events/internal/model"
	"github.com/iliyamo/community-events/internal/queue"
	"github.com/iliyamo/community-events/internal/repository"
)

type stubEvents struct {
	event *model.Event
	err   error
}

func (s *stubEvents) GetByID(context.Context, uint64) (*model.Event, error) {
	return s.event, s.err
}

type stubLedger struct {
	registerRes *repository.RegisterResult
	registerErr error
	promoted    *model.Registration
	unregErr    error
	current     *model.Registration
	currentErr  error
	rank        *int
	active      int
	waitlisted  int
	details     []repository.RegistrationDetail
}

func (s *stubLedger) Register(context.Context, uint64, uint64) (*repository.RegisterResult, error) {
	return s.registerRes, s.registerErr
}
func (s *stubLedger) Unregister(context.Context, uint64, uint64) (*model.Registration, error) {
	return s.promoted, s.unregErr
}
func (s *stubLedger) GetByEventAndUser(context.Context, uint64, uint64) (*model.Registration, error) {
	return s.current, s.currentErr
}
func (s *stubLedger) WaitlistPosition(context.Context, uint64, uint64) (*int, error) {
	return s.rank, nil
}
func (s *stubLedger) Counts(context.Context, uint64) (int, int, error) {
	return s.active, s.waitlisted, nil
}
func (s *stubLedger) ListByUser(context.Context, uint64) ([]repository.RegistrationDetail, error) {
	return s.details, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []queue.RegistrationEvent
}

func (n *recordingNotifier) Publish(_ context.Context, ev queue.RegistrationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) published() []queue.RegistrationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]queue.RegistrationEvent, len(n.events))
	copy(out, n.events)
	return out
}

func testEvent() *model.Event {
	return &model.Event{
		ID:        1,
		Title:     "Monthly Meetup",
		EventDate: time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
		Status:    model.EventStatusDefault,
	}
}

func TestRegister_PublishesConfirmed(t *testing.T) {
	notifier := &recordingNotifier{}
	ledger := &stubLedger{registerRes: &repository.RegisterResult{
		Registration: model.Registration{PublicID: "r1", EventID: 1, UserID: 7, Status: model.RegistrationActive},
	}}
	svc := NewRegistrationService(ledger, &stubEvents{event: testEvent()}, notifier)

	res, err := svc.Register(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationActive, res.Registration.Status)

	time.Sleep(50 * time.Millisecond) // goroutine notify
	events := notifier.published()
	require.Len(t, events, 1)
	assert.Equal(t, queue.KindConfirmed, events[0].Kind)
	assert.Equal(t, "r1", events[0].RegistrationID)
	assert.Equal(t, "2026-09-20", events[0].EventDate)
	assert.NotEmpty(t, events[0].MessageID)
}

func TestRegister_PublishesWaitlistedWithRank(t *testing.T) {
	notifier := &recordingNotifier{}
	pos := uint32(4)
	ledger := &stubLedger{registerRes: &repository.RegisterResult{
		Registration: model.Registration{PublicID: "r2", EventID: 1, UserID: 7,
			Status: model.RegistrationWaitlisted, Position: &pos},
		WaitlistRank: 3,
	}}
	svc := NewRegistrationService(ledger, &stubEvents{event: testEvent()}, notifier)

	res, err := svc.Register(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, res.WaitlistRank)

	time.Sleep(50 * time.Millisecond)
	events := notifier.published()
	require.Len(t, events, 1)
	assert.Equal(t, queue.KindWaitlisted, events[0].Kind)
	assert.Equal(t, 3, events[0].WaitlistRank)
}

func TestRegister_LedgerErrorNotPublished(t *testing.T) {
	notifier := &recordingNotifier{}
	ledger := &stubLedger{registerErr: repository.ErrAlreadyRegistered}
	svc := NewRegistrationService(ledger, &stubEvents{event: testEvent()}, notifier)

	_, err := svc.Register(context.Background(), 1, 7)
	require.ErrorIs(t, err, repository.ErrAlreadyRegistered)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, notifier.published())
}

func TestRegister_EventNotFound(t *testing.T) {
	svc := NewRegistrationService(&stubLedger{}, &stubEvents{err: repository.ErrEventNotFound}, &recordingNotifier{})

	_, err := svc.Register(context.Background(), 1, 7)
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
}

func TestUnregister_PublishesCancelledAndPromoted(t *testing.T) {
	notifier := &recordingNotifier{}
	ledger := &stubLedger{promoted: &model.Registration{
		PublicID: "r9", EventID: 1, UserID: 9, Status: model.RegistrationActive,
	}}
	svc := NewRegistrationService(ledger, &stubEvents{event: testEvent()}, notifier)

	require.NoError(t, svc.Unregister(context.Background(), 1, 7))

	time.Sleep(50 * time.Millisecond)
	events := notifier.published()
	require.Len(t, events, 2)
	kinds := map[string]uint64{}
	for _, ev := range events {
		kinds[ev.Kind] = ev.UserID
	}
	assert.Equal(t, uint64(7), kinds[queue.KindCancelled])
	assert.Equal(t, uint64(9), kinds[queue.KindPromoted])
}

func TestUnregister_NoPromotionSingleEvent(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewRegistrationService(&stubLedger{}, &stubEvents{event: testEvent()}, notifier)

	require.NoError(t, svc.Unregister(context.Background(), 1, 7))

	time.Sleep(50 * time.Millisecond)
	events := notifier.published()
	require.Len(t, events, 1)
	assert.Equal(t, queue.KindCancelled, events[0].Kind)
}

func TestStatus_WaitlistedIncludesRank(t *testing.T) {
	rank := 2
	pos := uint32(5)
	ledger := &stubLedger{
		current: &model.Registration{PublicID: "r3", Status: model.RegistrationWaitlisted, Position: &pos},
		rank:    &rank,
		active:  10, waitlisted: 4,
	}
	svc := NewRegistrationService(ledger, &stubEvents{event: testEvent()}, &recordingNotifier{})

	st, err := svc.Status(context.Background(), 1, 7)
	require.NoError(t, err)
	require.NotNil(t, st.WaitlistRank)
	assert.Equal(t, 2, *st.WaitlistRank)
	assert.Equal(t, 10, st.ActiveCount)
	assert.Equal(t, 4, st.WaitlistLen)
}

func TestStatus_ActiveHasNoRank(t *testing.T) {
	ledger := &stubLedger{
		current: &model.Registration{PublicID: "r4", Status: model.RegistrationActive},
		active:  3,
	}
	svc := NewRegistrationService(ledger, &stubEvents{event: testEvent()}, &recordingNotifier{})

	st, err := svc.Status(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Nil(t, st.WaitlistRank)
	assert.Equal(t, 3, st.ActiveCount)
}

func TestStatus_NotRegistered(t *testing.T) {
	ledger := &stubLedger{currentErr: repository.ErrNotRegistered}
	svc := NewRegistrationService(ledger, &stubEvents{event: testEvent()}, &recordingNotifier{})

	_, err := svc.Status(context.Background(), 1, 7)
	assert.ErrorIs(t, err, repository.ErrNotRegistered)
}
