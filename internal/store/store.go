// Package store provides persistence for issues, comments, labels and users.
package store

import (
	"context"
	"errors"

	"github.com/devtrack-ai/issue-platform/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// SearchLimit caps the number of rows returned by SearchIssues.
const SearchLimit = 50

// SearchQuery holds AND-combined filters for issue search. Zero values
// mean "no filter". Text matches title or description, Assignee matches
// the assignee username, both as case-insensitive substrings.
type SearchQuery struct {
	Text     string
	Status   model.Status
	Priority model.Priority
	Assignee string
}

// ListFilter holds filters and paging for the issue list endpoint.
type ListFilter struct {
	Status     model.Status
	Priority   model.Priority
	AssigneeID *int64
	Search     string
	Limit      int
	Offset     int
}

// Store is the persistence interface consumed by services and the assistant.
type Store interface {
	// Issue reads.
	GetIssue(ctx context.Context, id int64) (*model.Issue, error)
	SearchIssues(ctx context.Context, q SearchQuery) ([]model.Issue, error)
	ListIssues(ctx context.Context, f ListFilter) ([]model.Issue, int, error)
	GetSummary(ctx context.Context) (*model.Summary, error)
	GetRecentIssues(ctx context.Context, limit int) ([]model.Issue, error)

	// Issue writes.
	CreateIssue(ctx context.Context, req *model.CreateIssueRequest) (*model.Issue, error)
	UpdateIssue(ctx context.Context, id int64, req *model.UpdateIssueRequest) (*model.Issue, error)
	DeleteIssue(ctx context.Context, id int64) error

	// Comments.
	AddComment(ctx context.Context, issueID int64, userID *int64, content string) (*model.Comment, error)
	ListComments(ctx context.Context, issueID int64) ([]model.Comment, error)

	// Users and labels.
	GetUser(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListLabels(ctx context.Context) ([]model.Label, error)

	Ping(ctx context.Context) error
	Close() error
}
