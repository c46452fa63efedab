package model

import "time"

// RegistrationStatus is the lifecycle state of a registration.  A cancelled
// registration is terminal; registering again after cancelling creates a
// fresh record.
type RegistrationStatus string

const (
	RegistrationActive     RegistrationStatus = "active"
	RegistrationWaitlisted RegistrationStatus = "waitlisted"
	RegistrationCancelled  RegistrationStatus = "cancelled"
)

// AttendanceStatus tracks whether a registrant showed up.  It is recorded
// by admins during or after the event.
type AttendanceStatus string

const (
	AttendancePending  AttendanceStatus = "pending"
	AttendanceAttended AttendanceStatus = "attended"
	AttendanceNoShow   AttendanceStatus = "no_show"
)

// Registration records one user's registration attempt for one event.
// Records are never physically deleted; cancellation flips the status and
// the row is kept for history.
//
// Fields:
//  ID         – primary key identifier.
//  PublicID   – opaque UUID returned to clients and used for check-in.
//  EventID    – event being registered for.
//  UserID     – registering user.
//  Status     – active, waitlisted or cancelled.
//  Position   – creation-order token for waitlisted rows.  Strictly
//               increasing per event, never renumbered; the user-facing
//               rank is computed on read.  Nil for active/cancelled rows.
//  Attendance – pending, attended or no_show.
//  Notes      – optional free-form admin notes.
//  CreatedAt, UpdatedAt – audit timestamps.
type Registration struct {
	ID         uint64             `json:"id"`
	PublicID   string             `json:"public_id"`
	EventID    uint64             `json:"event_id"`
	UserID     uint64             `json:"user_id"`
	Status     RegistrationStatus `json:"status"`
	Position   *uint32            `json:"position,omitempty"`
	Attendance AttendanceStatus   `json:"attendance"`
	Notes      *string            `json:"notes,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// IsActive reports whether the registration currently consumes capacity.
func (r *Registration) IsActive() bool { return r.Status == RegistrationActive }

// IsWaitlisted reports whether the registration is queued for promotion.
func (r *Registration) IsWaitlisted() bool { return r.Status == RegistrationWaitlisted }

// IsCancelled reports whether the registration has been cancelled.
func (r *Registration) IsCancelled() bool { return r.Status == RegistrationCancelled }
