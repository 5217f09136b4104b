package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/devtrack-ai/issue-platform/internal/model"
)

// GetUser retrieves a user by id.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user,
		"SELECT id, username, full_name, email FROM users WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}

	return &user, nil
}

// ListUsers returns all users ordered by username.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	err := s.db.SelectContext(ctx, &users,
		"SELECT id, username, full_name, email FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return users, nil
}

// ListLabels returns all labels ordered by name.
func (s *SQLiteStore) ListLabels(ctx context.Context) ([]model.Label, error) {
	labels := []model.Label{}
	err := s.db.SelectContext(ctx, &labels,
		"SELECT id, name, color FROM labels ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing labels: %w", err)
	}

	return labels, nil
}

// CreateUser inserts a user. Used by seeding and tests.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, fullName, email string) (*model.User, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, full_name, email) VALUES (?, ?, ?)",
		username, fullName, email)
	if err != nil {
		return nil, fmt.Errorf("inserting user %q: %w", username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}

	return s.GetUser(ctx, id)
}

// CreateLabel inserts a label. Used by seeding and tests.
func (s *SQLiteStore) CreateLabel(ctx context.Context, name, color string) (*model.Label, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO labels (name, color) VALUES (?, ?)", name, color)
	if err != nil {
		return nil, fmt.Errorf("inserting label %q: %w", name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading label id: %w", err)
	}

	var label model.Label
	if err := s.db.GetContext(ctx, &label,
		"SELECT id, name, color FROM labels WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("getting label %d: %w", id, err)
	}

	return &label, nil
}
