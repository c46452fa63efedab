package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/community-events/internal/model"
)

// ErrEventNotFound is returned when the requested event does not exist.
var ErrEventNotFound = errors.New("event not found")

// EventRepo provides CRUD operations for events.  All timestamp fields are
// stored in UTC.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, title, description, event_date, start_time, end_time,
	location, capacity, registration_deadline, status, created_at, updated_at`

// Create inserts a new event and populates the generated ID and timestamps
// on the provided model.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (title, description, event_date, start_time, end_time,
			location, capacity, registration_deadline, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Title, e.Description, e.EventDate.UTC(), e.StartTime, e.EndTime,
		e.Location, e.Capacity, deadlineArg(e.RegistrationDeadline), e.Status, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// Update overwrites all mutable fields of an event.  ErrEventNotFound is
// returned when no row matches.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	e.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET title=?, description=?, event_date=?, start_time=?, end_time=?,
			location=?, capacity=?, registration_deadline=?, status=?, updated_at=?
		 WHERE id=?`,
		e.Title, e.Description, e.EventDate.UTC(), e.StartTime, e.EndTime,
		e.Location, e.Capacity, deadlineArg(e.RegistrationDeadline), e.Status, e.UpdatedAt, e.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// GetByID returns a single event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns events ordered by event date ascending.  When publicOnly is
// set, hidden and test events are excluded.
func (r *EventRepo) List(ctx context.Context, publicOnly bool) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events`
	if publicOnly {
		q += ` WHERE status NOT IN ('hidden', 'test')`
	}
	q += ` ORDER BY event_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...any) error }

func scanEvent(s rowScanner) (*model.Event, error) {
	var (
		e        model.Event
		start    sql.NullString
		end      sql.NullString
		location sql.NullString
		capacity sql.NullInt64
		deadline sql.NullTime
	)
	err := s.Scan(&e.ID, &e.Title, &e.Description, &e.EventDate, &start, &end,
		&location, &capacity, &deadline, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if start.Valid {
		v := start.String
		e.StartTime = &v
	}
	if end.Valid {
		v := end.String
		e.EndTime = &v
	}
	if location.Valid {
		v := location.String
		e.Location = &v
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

// deadlineArg converts an optional deadline into a driver-friendly value.
func deadlineArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
