package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/iliyamo/community-events/internal/model"
)

// ErrPositionNotFound is returned when the requested position does not exist.
var ErrPositionNotFound = errors.New("position not found")

// PositionRepo provides CRUD operations for volunteer positions.  Tags and
// questions are stored as JSON documents in text columns.
type PositionRepo struct{ db *sql.DB }

func NewPositionRepo(db *sql.DB) *PositionRepo { return &PositionRepo{db: db} }

const positionColumns = `id, name, description, tags, questions, status, created_at, updated_at`

// Create inserts a new position and populates the generated ID and
// timestamps on the provided model.
func (r *PositionRepo) Create(ctx context.Context, p *model.Position) error {
	tags, questions, err := encodePositionDocs(p)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO positions (name, description, tags, questions, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, tags, questions, p.Status, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// Update overwrites all mutable fields of a position.  ErrPositionNotFound
// is returned when no row matches.
func (r *PositionRepo) Update(ctx context.Context, p *model.Position) error {
	tags, questions, err := encodePositionDocs(p)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE positions SET name=?, description=?, tags=?, questions=?, status=?, updated_at=?
		 WHERE id=?`,
		p.Name, p.Description, tags, questions, p.Status, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPositionNotFound
	}
	return nil
}

// GetByID returns a single position or ErrPositionNotFound.
func (r *PositionRepo) GetByID(ctx context.Context, id uint64) (*model.Position, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+positionColumns+` FROM positions WHERE id = ?`, id)
	p, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPositionNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns positions ordered by name.  When openOnly is set, draft and
// inactive positions are excluded.
func (r *PositionRepo) List(ctx context.Context, openOnly bool) ([]model.Position, error) {
	q := `SELECT ` + positionColumns + ` FROM positions`
	if openOnly {
		q += ` WHERE status = 'active'`
	}
	q += ` ORDER BY name ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	positions := make([]model.Position, 0)
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, *p)
	}
	return positions, rows.Err()
}

func scanPosition(s rowScanner) (*model.Position, error) {
	var (
		p         model.Position
		tags      []byte
		questions []byte
	)
	err := s.Scan(&p.ID, &p.Name, &p.Description, &tags, &questions,
		&p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Tags = []string{}
	p.Questions = []model.PositionQuestion{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &p.Tags); err != nil {
			return nil, err
		}
	}
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &p.Questions); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func encodePositionDocs(p *model.Position) (tags, questions []byte, err error) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Questions == nil {
		p.Questions = []model.PositionQuestion{}
	}
	tags, err = json.Marshal(p.Tags)
	if err != nil {
		return nil, nil, err
	}
	questions, err = json.Marshal(p.Questions)
	if err != nil {
		return nil, nil, err
	}
	return tags, questions, nil
}
