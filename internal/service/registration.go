// Package service orchestrates the registration ledger: it validates
// requests against the event catalogue, drives the transactional store and
// emits notification events for every state change.
package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/community-events/internal/model"
	"github.com/iliyamo/community-events/internal/queue"
	"github.com/iliyamo/community-events/internal/repository"
	"github.com/iliyamo/community-events/internal/service/ports"
)

// RegistrationService coordinates registrations across the ledger, the
// event catalogue and the notification queue.
type RegistrationService struct {
	ledger   ports.RegistrationLedger
	events   ports.EventStore
	notifier ports.Notifier
}

func NewRegistrationService(ledger ports.RegistrationLedger, events ports.EventStore, notifier ports.Notifier) *RegistrationService {
	return &RegistrationService{ledger: ledger, events: events, notifier: notifier}
}

// RegistrationStatus describes the caller's standing for one event.
type RegistrationStatus struct {
	Registration *model.Registration `json:"registration"`
	WaitlistRank *int                `json:"waitlist_rank,omitempty"`
	ActiveCount  int                 `json:"active_count"`
	WaitlistLen  int                 `json:"waitlist_length"`
}

// Register attempts to register the user for an event.  The outcome (active
// or waitlisted) is decided by the ledger under the event lock; a
// notification is published asynchronously on success.
func (s *RegistrationService) Register(ctx context.Context, eventID, userID uint64) (*repository.RegisterResult, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.Register(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	kind := queue.KindConfirmed
	if res.Registration.IsWaitlisted() {
		kind = queue.KindWaitlisted
	}
	go s.publish(context.WithoutCancel(ctx), kind, event, &res.Registration, res.WaitlistRank)

	return res, nil
}

// Unregister cancels the user's registration.  When the cancellation frees
// a capacity slot the ledger promotes the head of the waitlist; both the
// cancellation and the promotion are announced.
func (s *RegistrationService) Unregister(ctx context.Context, eventID, userID uint64) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	promoted, err := s.ledger.Unregister(ctx, eventID, userID)
	if err != nil {
		return err
	}

	bg := context.WithoutCancel(ctx)
	go s.publish(bg, queue.KindCancelled, event, &model.Registration{EventID: eventID, UserID: userID}, 0)
	if promoted != nil {
		go s.publish(bg, queue.KindPromoted, event, promoted, 0)
	}
	return nil
}

// Status reports the caller's current registration, their live waitlist
// rank when queued, and the event's derived counts.
func (s *RegistrationService) Status(ctx context.Context, eventID, userID uint64) (*RegistrationStatus, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	reg, err := s.ledger.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	st := &RegistrationStatus{Registration: reg}
	if reg.IsWaitlisted() {
		rank, err := s.ledger.WaitlistPosition(ctx, eventID, userID)
		if err != nil {
			return nil, err
		}
		st.WaitlistRank = rank
	}

	st.ActiveCount, st.WaitlistLen, err = s.ledger.Counts(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// ListMine returns the user's registration history, newest first.
func (s *RegistrationService) ListMine(ctx context.Context, userID uint64) ([]repository.RegistrationDetail, error) {
	return s.ledger.ListByUser(ctx, userID)
}

func (s *RegistrationService) publish(ctx context.Context, kind string, event *model.Event, reg *model.Registration, rank int) {
	msg := queue.RegistrationEvent{
		MessageID:      uuid.New().String(),
		Kind:           kind,
		RegistrationID: reg.PublicID,
		EventID:        event.ID,
		EventTitle:     event.Title,
		EventDate:      event.EventDate.UTC().Format("2006-01-02"),
		UserID:         reg.UserID,
		WaitlistRank:   rank,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.notifier.Publish(ctx, msg); err != nil {
		log.Printf("registration-service: publish %s event failed: %v", kind, err)
	}
}
