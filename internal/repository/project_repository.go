package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/iliyamo/community-events/internal/model"
)

// ErrProjectNotFound is returned when the requested project does not exist.
var ErrProjectNotFound = errors.New("project not found")

// ProjectRepo stores showcase projects.  Languages and contributors are
// stored as JSON documents in text columns.
type ProjectRepo struct{ db *sql.DB }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{db: db} }

const projectColumns = `id, title, description, languages, link, color, image_url,
	contributors, created_at, updated_at`

// Create inserts a project and populates the generated ID and timestamps.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	languages, contributors, err := encodeProjectDocs(p)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (title, description, languages, link, color, image_url,
			contributors, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Description, languages, p.Link, p.Color, p.ImageURL,
		contributors, now, now)
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

// Update overwrites all mutable fields of a project.  ErrProjectNotFound is
// returned when no row matches.
func (r *ProjectRepo) Update(ctx context.Context, p *model.Project) error {
	languages, contributors, err := encodeProjectDocs(p)
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET title=?, description=?, languages=?, link=?, color=?,
			image_url=?, contributors=?, updated_at=?
		 WHERE id=?`,
		p.Title, p.Description, languages, p.Link, p.Color, p.ImageURL,
		contributors, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// List returns all projects, newest first.
func (r *ProjectRepo) List(ctx context.Context) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	projects := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func scanProject(s rowScanner) (*model.Project, error) {
	var (
		p            model.Project
		languages    []byte
		contributors []byte
		imageURL     sql.NullString
	)
	err := s.Scan(&p.ID, &p.Title, &p.Description, &languages, &p.Link, &p.Color,
		&imageURL, &contributors, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		v := imageURL.String
		p.ImageURL = &v
	}
	p.Languages = []string{}
	p.Contributors = []model.Contributor{}
	if len(languages) > 0 {
		if err := json.Unmarshal(languages, &p.Languages); err != nil {
			return nil, err
		}
	}
	if len(contributors) > 0 {
		if err := json.Unmarshal(contributors, &p.Contributors); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func encodeProjectDocs(p *model.Project) (languages, contributors []byte, err error) {
	if p.Languages == nil {
		p.Languages = []string{}
	}
	if p.Contributors == nil {
		p.Contributors = []model.Contributor{}
	}
	languages, err = json.Marshal(p.Languages)
	if err != nil {
		return nil, nil, err
	}
	contributors, err = json.Marshal(p.Contributors)
	if err != nil {
		return nil, nil, err
	}
	return languages, contributors, nil
}
