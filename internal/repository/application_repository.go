package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/community-events/internal/model"
)

var (
	// ErrAlreadyApplied is returned when the user already holds an
	// application for the position, whatever its review status.
	ErrAlreadyApplied = errors.New("already applied for this position")
	// ErrApplicationNotFound is returned when no application matches.
	ErrApplicationNotFound = errors.New("application not found")
)

// ApplicationRepo stores position applications.  Applications are append-only
// for historical record: there is deliberately no delete method, and review
// only ever changes the status column.
type ApplicationRepo struct{ db *sql.DB }

func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

const applicationColumns = `id, position_id, user_id, name, email, answers, status, created_at, updated_at`

// Submit records a new application with status pending.  A user can apply at
// most once per position; a second attempt returns ErrAlreadyApplied even if
// the first was rejected.
func (r *ApplicationRepo) Submit(ctx context.Context, a *model.Application) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM applications WHERE position_id=? AND user_id=?",
		a.PositionID, a.UserID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return ErrAlreadyApplied
	}
	if a.Answers == nil {
		a.Answers = map[string]string{}
	}
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	a.Status = model.ApplicationPending
	a.CreatedAt = now
	a.UpdatedAt = now
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (position_id, user_id, name, email, answers, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.PositionID, a.UserID, a.Name, a.Email, answers, a.Status, now, now)
	if err != nil {
		// Unique (position_id, user_id) index backs the pre-check against
		// concurrent submissions.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrAlreadyApplied
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByPositionAndUser returns the user's application for a position, or
// ErrApplicationNotFound.
func (r *ApplicationRepo) GetByPositionAndUser(ctx context.Context, positionID, userID uint64) (*model.Application, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE position_id=? AND user_id=?`,
		positionID, userID)
	a, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListByPosition returns every application for a position, oldest first.
func (r *ApplicationRepo) ListByPosition(ctx context.Context, positionID uint64) ([]model.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE position_id=? ORDER BY created_at ASC, id ASC`,
		positionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	apps := make([]model.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// SetStatus records a review decision.  ErrApplicationNotFound is returned
// when no row matches.
func (r *ApplicationRepo) SetStatus(ctx context.Context, id uint64, status model.ApplicationStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE applications SET status=?, updated_at=? WHERE id=?",
		status, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func scanApplication(s rowScanner) (*model.Application, error) {
	var (
		a       model.Application
		answers []byte
	)
	err := s.Scan(&a.ID, &a.PositionID, &a.UserID, &a.Name, &a.Email, &answers,
		&a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Answers = map[string]string{}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, err
		}
	}
	return &a, nil
}
