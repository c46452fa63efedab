package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/community-events/internal/model"
)

// Registration ledger sentinel errors.  Handlers translate these into HTTP
// statuses; none of them is retryable.
var (
	// ErrRegistrationClosed is returned when the event no longer accepts
	// registration attempts (test status, past deadline, or started).
	ErrRegistrationClosed = errors.New("registration closed")
	// ErrAlreadyRegistered is returned when a non-cancelled registration
	// already exists for the (event, user) pair.
	ErrAlreadyRegistered = errors.New("already registered for this event")
	// ErrNotRegistered is returned when there is no active or waitlisted
	// registration to cancel or report on.
	ErrNotRegistered = errors.New("not registered for this event")
)

// RegistrationRepo owns the registration ledger: it decides the outcome of
// registration attempts, maintains waitlist ordering and performs
// promotion, all under a per-event row lock.
//
// Concurrency contract: every mutation starts by locking the event row with
// SELECT ... FOR UPDATE inside a transaction.  Two register calls racing
// for the last free slot therefore queue on the lock; the loser observes
// the updated active count and is waitlisted.  Two concurrent cancellations
// cannot promote the same waitlisted entry twice for the same reason.  The
// naive read-then-write alternative lets both racers see a free slot and
// overbook the event.
type RegistrationRepo struct {
	db *sql.DB
}

// NewRegistrationRepo returns a RegistrationRepo bound to the given database.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

// RegisterResult reports the outcome of a registration attempt.  When the
// attempt was waitlisted, WaitlistRank carries the 1-based rank at creation
// time; it is 0 for active registrations.
type RegisterResult struct {
	Registration model.Registration
	WaitlistRank int
}

// lockEvent acquires the event row lock and returns the fields needed to
// evaluate the registration window and capacity.  It must be called inside
// a transaction; the lock is held until commit or rollback.
func lockEvent(ctx context.Context, tx *sql.Tx, eventID uint64) (*model.Event, error) {
	var (
		e        model.Event
		start    sql.NullString
		capacity sql.NullInt64
		deadline sql.NullTime
	)
	err := tx.QueryRowContext(ctx,
		`SELECT id, status, event_date, start_time, capacity, registration_deadline
		 FROM events WHERE id = ? FOR UPDATE`,
		eventID,
	).Scan(&e.ID, &e.Status, &e.EventDate, &start, &capacity, &deadline)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if start.Valid {
		v := start.String
		e.StartTime = &v
	}
	if capacity.Valid {
		v := uint32(capacity.Int64)
		e.Capacity = &v
	}
	if deadline.Valid {
		v := deadline.Time.UTC()
		e.RegistrationDeadline = &v
	}
	return &e, nil
}

// Register creates a registration for the user, either active (when the
// event has free capacity or no capacity limit) or waitlisted with the next
// position token.  Exactly one row is written.
func (r *RegistrationRepo) Register(ctx context.Context, eventID, userID uint64) (*RegisterResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	event, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsRegistrationOpen(time.Now().UTC()) {
		return nil, ErrRegistrationClosed
	}

	// One non-cancelled registration per (event, user).  Checked under the
	// event lock so a double-submit cannot slip two rows in.
	var existing int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations
		 WHERE event_id = ? AND user_id = ? AND status IN ('active', 'waitlisted')`,
		eventID, userID,
	).Scan(&existing)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadyRegistered
	}

	now := time.Now().UTC()
	reg := model.Registration{
		PublicID:   uuid.New().String(),
		EventID:    eventID,
		UserID:     userID,
		Status:     model.RegistrationActive,
		Attendance: model.AttendancePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	rank := 0

	if event.HasCapacityLimit() {
		var active int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM registrations WHERE event_id = ? AND status = 'active'`,
			eventID,
		).Scan(&active)
		if err != nil {
			return nil, err
		}
		if uint32(active) >= *event.Capacity {
			// Full: join the waitlist.  The position token is strictly
			// increasing per event and never renumbered; rank is derived
			// on read.
			var waiting, maxPos int
			err = tx.QueryRowContext(ctx,
				`SELECT COUNT(*), COALESCE(MAX(position), 0) FROM registrations
				 WHERE event_id = ? AND status = 'waitlisted'`,
				eventID,
			).Scan(&waiting, &maxPos)
			if err != nil {
				return nil, err
			}
			pos := uint32(maxPos + 1)
			reg.Status = model.RegistrationWaitlisted
			reg.Position = &pos
			rank = waiting + 1
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO registrations (public_id, event_id, user_id, status, position, attendance, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reg.PublicID, reg.EventID, reg.UserID, reg.Status, positionArg(reg.Position), reg.Attendance, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	reg.ID = uint64(id)

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &RegisterResult{Registration: reg, WaitlistRank: rank}, nil
}

// Unregister cancels the caller's registration.  When an active
// registration on a capacity-limited event is cancelled, the waitlisted
// entry with the lowest position is promoted to active and returned so the
// caller can notify the promoted user.  At most two rows are written.
func (r *RegistrationRepo) Unregister(ctx context.Context, eventID, userID uint64) (*model.Registration, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	event, err := lockEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}

	var (
		regID  uint64
		status model.RegistrationStatus
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, status FROM registrations
		 WHERE event_id = ? AND user_id = ? AND status IN ('active', 'waitlisted')
		 ORDER BY created_at DESC LIMIT 1`,
		eventID, userID,
	).Scan(&regID, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx,
		`UPDATE registrations SET status = 'cancelled', position = NULL, updated_at = ? WHERE id = ?`,
		now, regID,
	); err != nil {
		return nil, err
	}

	var promoted *model.Registration
	if status == model.RegistrationActive && event.HasCapacityLimit() {
		// A capacity slot opened up: promote the head of the waitlist.
		// Cancelling a waitlisted entry frees nothing, and the remaining
		// positions are left untouched.
		var p model.Registration
		err = tx.QueryRowContext(ctx,
			`SELECT id, public_id, user_id FROM registrations
			 WHERE event_id = ? AND status = 'waitlisted'
			 ORDER BY position ASC LIMIT 1`,
			eventID,
		).Scan(&p.ID, &p.PublicID, &p.UserID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// empty waitlist
		case err != nil:
			return nil, err
		default:
			if _, err = tx.ExecContext(ctx,
				`UPDATE registrations SET status = 'active', position = NULL, updated_at = ? WHERE id = ?`,
				now, p.ID,
			); err != nil {
				return nil, err
			}
			p.EventID = eventID
			p.Status = model.RegistrationActive
			p.UpdatedAt = now
			promoted = &p
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return promoted, nil
}

// GetByEventAndUser returns the caller's current (non-cancelled)
// registration, or ErrNotRegistered.
func (r *RegistrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID uint64) (*model.Registration, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, public_id, event_id, user_id, status, position, attendance, notes, created_at, updated_at
		 FROM registrations
		 WHERE event_id = ? AND user_id = ? AND status IN ('active', 'waitlisted')
		 ORDER BY created_at DESC LIMIT 1`,
		eventID, userID)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return reg, nil
}

// WaitlistPosition computes the caller's 1-based rank among the event's
// waitlisted registrations, ordered by position ascending.  It returns nil
// when the caller is not waitlisted.  Pure read; ranks shift down naturally
// as earlier entries are promoted or cancelled.  The rank is counted against
// the caller's own position token in a single statement, so a promotion
// running concurrently cannot be observed between lookup and count.
func (r *RegistrationRepo) WaitlistPosition(ctx context.Context, eventID, userID uint64) (*int, error) {
	var rank int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations
		 WHERE event_id = ? AND status = 'waitlisted'
		   AND position <= (SELECT position FROM registrations
				WHERE event_id = ? AND user_id = ? AND status = 'waitlisted' LIMIT 1)`,
		eventID, eventID, userID,
	).Scan(&rank)
	if err != nil {
		return nil, err
	}
	// A NULL subquery (caller not waitlisted) makes the comparison false for
	// every row, so the count comes back zero.
	if rank == 0 {
		return nil, nil
	}
	return &rank, nil
}

// Counts returns the number of active and waitlisted registrations for an
// event.  Counts are derived from the rows themselves rather than a
// materialized counter, so they cannot drift.
func (r *RegistrationRepo) Counts(ctx context.Context, eventID uint64) (active, waitlisted int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT
			COUNT(CASE WHEN status = 'active' THEN 1 END),
			COUNT(CASE WHEN status = 'waitlisted' THEN 1 END)
		 FROM registrations WHERE event_id = ?`,
		eventID,
	).Scan(&active, &waitlisted)
	return active, waitlisted, err
}

// RegistrationDetail joins a registration with display fields for listings.
type RegistrationDetail struct {
	model.Registration
	EventTitle string    `json:"event_title,omitempty"`
	EventDate  time.Time `json:"event_date,omitempty"`
	UserName   string    `json:"user_name,omitempty"`
	UserEmail  string    `json:"user_email,omitempty"`
}

// ListByUser returns all of a user's registrations, newest first, with
// event display fields attached.  Cancelled rows are included for history.
func (r *RegistrationRepo) ListByUser(ctx context.Context, userID uint64) ([]RegistrationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.public_id, r.event_id, r.user_id, r.status, r.position,
			r.attendance, r.notes, r.created_at, r.updated_at,
			e.title, e.event_date
		 FROM registrations r
		 JOIN events e ON e.id = r.event_id
		 WHERE r.user_id = ?
		 ORDER BY r.created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]RegistrationDetail, 0)
	for rows.Next() {
		var d RegistrationDetail
		if err := scanRegistrationInto(rows, &d.Registration, &d.EventTitle, &d.EventDate); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// ListByEvent returns all registrations for an event with registrant
// display fields, active first, then waitlisted by position, then
// cancelled.  Used by the admin surface.
func (r *RegistrationRepo) ListByEvent(ctx context.Context, eventID uint64) ([]RegistrationDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.public_id, r.event_id, r.user_id, r.status, r.position,
			r.attendance, r.notes, r.created_at, r.updated_at,
			u.name, u.email
		 FROM registrations r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.event_id = ?
		 ORDER BY FIELD(r.status, 'active', 'waitlisted', 'cancelled'),
			r.position ASC, r.created_at ASC`,
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]RegistrationDetail, 0)
	for rows.Next() {
		var d RegistrationDetail
		if err := scanRegistrationInto(rows, &d.Registration, &d.UserName, &d.UserEmail); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// SetAttendance records the attendance outcome for a registration,
// optionally replacing the admin notes.  ErrNotRegistered is returned when
// the row does not exist or has been cancelled.
func (r *RegistrationRepo) SetAttendance(ctx context.Context, regID uint64, attendance model.AttendanceStatus, notes *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET attendance = ?, notes = COALESCE(?, notes), updated_at = ?
		 WHERE id = ? AND status != 'cancelled'`,
		attendance, notes, time.Now().UTC(), regID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotRegistered
	}
	return nil
}

// CheckInByPublicID marks an active registration attended, keyed by the
// public reference code presented at the door.
func (r *RegistrationRepo) CheckInByPublicID(ctx context.Context, publicID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET attendance = 'attended', updated_at = ?
		 WHERE public_id = ? AND status = 'active'`,
		time.Now().UTC(), publicID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotRegistered
	}
	return nil
}

func scanRegistration(s rowScanner) (*model.Registration, error) {
	var reg model.Registration
	if err := scanRegistrationInto(s, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// scanRegistrationInto scans the standard registration column set plus any
// trailing extra columns.
func scanRegistrationInto(s rowScanner, reg *model.Registration, extra ...any) error {
	var (
		pos   sql.NullInt64
		notes sql.NullString
	)
	dest := []any{&reg.ID, &reg.PublicID, &reg.EventID, &reg.UserID, &reg.Status,
		&pos, &reg.Attendance, &notes, &reg.CreatedAt, &reg.UpdatedAt}
	dest = append(dest, extra...)
	if err := s.Scan(dest...); err != nil {
		return err
	}
	if pos.Valid {
		v := uint32(pos.Int64)
		reg.Position = &v
	}
	if notes.Valid {
		v := notes.String
		reg.Notes = &v
	}
	return nil
}

func positionArg(p *uint32) any {
	if p == nil {
		return nil
	}
	return *p
}
