package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devtrack-ai/issue-platform/internal/model"
)

// AddComment inserts a comment on an issue. The issue must exist.
func (s *SQLiteStore) AddComment(ctx context.Context, issueID int64, userID *int64, content string) (*model.Comment, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO comments (issue_id, user_id, content, created_at) VALUES (?, ?, ?, ?)",
		issueID, userID, strings.TrimSpace(content), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading comment id: %w", err)
	}

	var comment model.Comment
	err = s.db.GetContext(ctx, &comment, `
		SELECT c.id, c.issue_id, c.user_id, c.content, c.created_at, u.username
		FROM comments c
		LEFT JOIN users u ON c.user_id = u.id
		WHERE c.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting comment %d: %w", id, err)
	}

	return &comment, nil
}

// ListComments returns all comments on an issue, oldest first.
func (s *SQLiteStore) ListComments(ctx context.Context, issueID int64) ([]model.Comment, error) {
	comments := []model.Comment{}
	err := s.db.SelectContext(ctx, &comments, `
		SELECT c.id, c.issue_id, c.user_id, c.content, c.created_at, u.username
		FROM comments c
		LEFT JOIN users u ON c.user_id = u.id
		WHERE c.issue_id = ?
		ORDER BY c.created_at ASC`, issueID)
	if err != nil {
		return nil, fmt.Errorf("listing comments for issue %d: %w", issueID, err)
	}

	return comments, nil
}
