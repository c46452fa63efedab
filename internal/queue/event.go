// Package queue defines message payloads exchanged over the message broker.
package queue

// Registration event kinds carried in RegistrationEvent.Kind.
const (
	KindConfirmed  = "confirmed"
	KindWaitlisted = "waitlisted"
	KindPromoted   = "promoted"
	KindCancelled  = "cancelled"
)

// RegistrationEvent is published whenever a registration changes state.  It
// carries enough context for downstream consumers (notification mailers,
// analytics) to act without querying the primary database.
type RegistrationEvent struct {
	MessageID      string `json:"message_id"`
	Kind           string `json:"kind"`
	RegistrationID string `json:"registration_id"`
	EventID        uint64 `json:"event_id"`
	EventTitle     string `json:"event_title"`
	EventDate      string `json:"event_date"`
	UserID         uint64 `json:"user_id"`
	WaitlistRank   int    `json:"waitlist_rank,omitempty"`
	OccurredAt     string `json:"occurred_at"`
}
