// Package testutil provides shared test fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/devtrack-ai/issue-platform/internal/model"
	"github.com/devtrack-ai/issue-platform/internal/store"
)

// NewStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedUser creates a user with the given username.
func SeedUser(t *testing.T, s *store.SQLiteStore, username string) *model.User {
	t.Helper()

	user, err := s.CreateUser(context.Background(), username, username+" Example", username+"@example.com")
	if err != nil {
		t.Fatalf("seeding user %q: %v", username, err)
	}

	return user
}

// SeedIssue creates an issue and, when status differs from open or an
// assignee is given, applies a follow-up update.
func SeedIssue(t *testing.T, s *store.SQLiteStore, title, description string, status model.Status, priority model.Priority, reporterID int64, assigneeID *int64) *model.Issue {
	t.Helper()

	ctx := context.Background()
	issue, err := s.CreateIssue(ctx, &model.CreateIssueRequest{
		Title:       title,
		Description: description,
		Priority:    priority,
		ReporterID:  reporterID,
		AssigneeID:  assigneeID,
	})
	if err != nil {
		t.Fatalf("seeding issue %q: %v", title, err)
	}

	if status != "" && status != model.StatusOpen {
		issue, err = s.UpdateIssue(ctx, issue.ID, &model.UpdateIssueRequest{Status: &status})
		if err != nil {
			t.Fatalf("setting status on issue %q: %v", title, err)
		}
	}

	return issue
}
