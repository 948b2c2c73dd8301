package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/daleel/internal/guard"
	"github.com/roach88/daleel/internal/record"
)

// CreateUser inserts an admin account. ID and CreatedAt are assigned and
// the email is lowercased. PasswordHash must already be a bcrypt hash.
func (s *Store) CreateUser(ctx context.Context, u record.User) (record.User, error) {
	u.ID = record.NewID()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = s.now()
	err := s.insert(ctx, guard.KindUser, Changes{
		"id":           u.ID,
		"email":        u.Email,
		"passwordHash": u.PasswordHash,
		"role":         u.Role,
		"isActive":     u.IsActive,
		"lastLoginAt":  u.LastLoginAt,
		"createdAt":    u.CreatedAt,
	})
	if err != nil {
		return record.User{}, err
	}
	return u, nil
}

const userColumns = `id, email, password_hash, role, is_active, last_login_at, created_at`

// GetUserByEmail looks a user up by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (record.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return record.User{}, fmt.Errorf("get user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return record.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUser looks a user up by id.
func (s *Store) GetUser(ctx context.Context, id string) (record.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return record.User{}, fmt.Errorf("get user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return record.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// TouchLastLogin stamps the user's last successful login.
func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	return s.Update(ctx, guard.KindUser, id, Changes{"lastLoginAt": s.now()})
}

func scanUser(row scanner) (record.User, error) {
	var u record.User
	var lastLogin sql.NullString
	var createdAt string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &lastLogin, &createdAt); err != nil {
		return record.User{}, err
	}
	var err error
	if u.LastLoginAt, err = nullTime(lastLogin); err != nil {
		return record.User{}, fmt.Errorf("scan user: %w", err)
	}
	if u.CreatedAt, err = record.ParseTime(createdAt); err != nil {
		return record.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
