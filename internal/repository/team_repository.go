package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/community-events/internal/model"
)

// ErrTeamNotFound is returned when the requested team does not exist.
var ErrTeamNotFound = errors.New("team not found")

// TeamRepo provides access to teams and their member rosters.
type TeamRepo struct{ db *sql.DB }

func NewTeamRepo(db *sql.DB) *TeamRepo { return &TeamRepo{db: db} }

// Create inserts a team and populates the generated ID.
func (r *TeamRepo) Create(ctx context.Context, t *model.Team) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO teams (name, description, created_at, updated_at) VALUES (?,?,?,?)",
		t.Name, t.Description, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// List returns all teams with their members populated, ordered by name.
func (r *TeamRepo) List(ctx context.Context) ([]model.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM teams ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	teams := make([]model.Team, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Members = []model.TeamMember{}
		index[t.ID] = len(teams)
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return teams, nil
	}
	// Populate all rosters in one query rather than one per team.
	mrows, err := r.db.QueryContext(ctx,
		"SELECT team_id, user_id, position, joined_at FROM team_members ORDER BY team_id, joined_at ASC")
	if err != nil {
		return nil, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var m model.TeamMember
		if err := mrows.Scan(&m.TeamID, &m.UserID, &m.Position, &m.JoinedAt); err != nil {
			return nil, err
		}
		if i, ok := index[m.TeamID]; ok {
			teams[i].Members = append(teams[i].Members, m)
		}
	}
	return teams, mrows.Err()
}

// AddMember adds a user to a team with a display position.  ErrConflict is
// returned when the user is already on the roster.
func (r *TeamRepo) AddMember(ctx context.Context, teamID, userID uint64, position string) error {
	var exists int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM teams WHERE id=?", teamID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrTeamNotFound
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO team_members (team_id, user_id, position, joined_at) VALUES (?,?,?,?)",
		teamID, userID, strings.TrimSpace(position), time.Now().UTC())
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	return nil
}

// RemoveMember drops a user from a team roster.
func (r *TeamRepo) RemoveMember(ctx context.Context, teamID, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM team_members WHERE team_id=? AND user_id=?", teamID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTeamNotFound
	}
	return nil
}
