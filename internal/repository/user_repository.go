package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/community-events/internal/model"
	"github.com/iliyamo/community-events/internal/utils"
)

// ErrEmailExists is returned when registering with an email already in use.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when the requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserRepo mirrors the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, email, name, role, is_active, created_at, updated_at"

// Create inserts a user with a bcrypt-hashed password and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, name, password string, role model.Role, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, name, password_hash, role) VALUES (?,?,?,?)",
		email, strings.TrimSpace(name), hash, role)
	if err != nil {
		// 1062 = MySQL duplicate key
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user and password hash by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var (
		u    model.User
		hash string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+", password_hash FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return u, "", ErrUserNotFound
	}
	return u, hash, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// List returns users matching an optional case-insensitive name/email
// search, ordered by name.  Used by the admin user directory.
func (r *UserRepo) List(ctx context.Context, search string) ([]model.User, error) {
	q := "SELECT " + userColumns + " FROM users"
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		q += " WHERE LOWER(name) LIKE ? OR LOWER(email) LIKE ?"
		like := "%" + strings.ToLower(s) + "%"
		args = append(args, like, like)
	}
	q += " ORDER BY name ASC LIMIT 200"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateRole changes a user's privilege level.  Grants and revocations are
// authorized in the handler layer; the repository only persists the change.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role model.Role) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=?, updated_at=? WHERE id=?",
		role, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
