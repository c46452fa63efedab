package model

import "time"

// EventStatus controls the visibility of an event.  "default" events are
// public, "hidden" events are withheld from public listings, and "test"
// events are only visible to admins and never accept registrations.
type EventStatus string

const (
	EventStatusDefault EventStatus = "default"
	EventStatusHidden  EventStatus = "hidden"
	EventStatusTest    EventStatus = "test"
)

// Event represents a community event that members can register for.
//
// Fields:
//  ID                   – primary key identifier.
//  Title                – display title.
//  Description          – long-form description.
//  EventDate            – calendar date of the event (UTC).
//  StartTime, EndTime   – optional "HH:MM" strings on the event date.
//  Location             – optional venue.
//  Capacity             – optional maximum of simultaneously active
//                         registrations; nil means unbounded.
//  RegistrationDeadline – optional cutoff after which registration closes.
//  Status               – visibility status (default/hidden/test).
//  CreatedAt, UpdatedAt – audit timestamps.
type Event struct {
	ID                   uint64      `json:"id"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	EventDate            time.Time   `json:"event_date"`
	StartTime            *string     `json:"start_time,omitempty"`
	EndTime              *string     `json:"end_time,omitempty"`
	Location             *string     `json:"location,omitempty"`
	Capacity             *uint32     `json:"capacity,omitempty"`
	RegistrationDeadline *time.Time  `json:"registration_deadline,omitempty"`
	Status               EventStatus `json:"status"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// StartDateTime combines EventDate with StartTime when present.  Without a
// start time the event date itself (midnight UTC) is used.
func (e *Event) StartDateTime() time.Time {
	d := e.EventDate.UTC()
	if e.StartTime != nil {
		if h, m, ok := parseClock(*e.StartTime); ok {
			return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, time.UTC)
		}
	}
	return d
}

// IsPublic reports whether the event appears in public listings.
func (e *Event) IsPublic() bool {
	return e.Status != EventStatusHidden && e.Status != EventStatusTest
}

// IsRegistrationOpen reports whether new registration attempts are accepted
// at the given instant.  Test events never accept registrations.  When a
// deadline is set it wins; otherwise registration stays open until the
// event starts.
func (e *Event) IsRegistrationOpen(now time.Time) bool {
	if e.Status == EventStatusTest {
		return false
	}
	if e.RegistrationDeadline != nil {
		return e.RegistrationDeadline.After(now)
	}
	return e.StartDateTime().After(now)
}

// HasCapacityLimit reports whether the event enforces a capacity.
func (e *Event) HasCapacityLimit() bool { return e.Capacity != nil }

// parseClock parses "HH:MM" into hour and minute components.
func parseClock(s string) (int, int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, false
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
