// Package service provides business logic for the issue tracker.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/devtrack-ai/issue-platform/internal/events"
	"github.com/devtrack-ai/issue-platform/internal/model"
	"github.com/devtrack-ai/issue-platform/internal/store"
	"github.com/devtrack-ai/issue-platform/pkg/logger"
	"github.com/devtrack-ai/issue-platform/pkg/metrics"
)

// ErrInvalid marks a request validation failure. Handlers map it to 400.
var ErrInvalid = errors.New("invalid request")

// IssueService handles issue operations: validation, persistence and event
// publishing.
type IssueService struct {
	store  store.Store
	events events.Publisher
	logger *logger.Logger
}

// NewIssueService creates a new issue service.
func NewIssueService(s store.Store, pub events.Publisher, log *logger.Logger) *IssueService {
	return &IssueService{
		store:  s,
		events: pub,
		logger: log,
	}
}

// Get retrieves a single issue with labels and comments.
func (s *IssueService) Get(ctx context.Context, id int64) (*model.Issue, []model.Comment, error) {
	issue, err := s.store.GetIssue(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	comments, err := s.store.ListComments(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return issue, comments, nil
}

// List returns a page of issues matching the filter.
func (s *IssueService) List(ctx context.Context, f store.ListFilter) (*model.ListIssuesResponse, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	issues, total, err := s.store.ListIssues(ctx, f)
	if err != nil {
		return nil, err
	}

	return &model.ListIssuesResponse{
		Issues: issues,
		Pagination: model.Pagination{
			Total:   total,
			Limit:   f.Limit,
			Offset:  f.Offset,
			HasMore: f.Offset+len(issues) < total,
		},
	}, nil
}

// Create validates and persists a new issue, then publishes the event.
func (s *IssueService) Create(ctx context.Context, req *model.CreateIssueRequest) (*model.Issue, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if req.ReporterID == 0 {
		return nil, fmt.Errorf("%w: reporter is required", ErrInvalid)
	}
	if req.Priority != "" && !req.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalid, req.Priority)
	}

	issue, err := s.store.CreateIssue(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("issue created", zap.Int64("issue_id", issue.ID))
	metrics.IssuesTotal.WithLabelValues("created").Inc()
	s.events.Publish(ctx, events.TypeIssueCreated, issue)

	return issue, nil
}

// Update validates and applies a partial update, then publishes the event.
func (s *IssueService) Update(ctx context.Context, id int64, req *model.UpdateIssueRequest) (*model.Issue, error) {
	if req.Title == nil && req.Description == nil && req.Status == nil &&
		req.Priority == nil && req.AssigneeID == nil {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalid)
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalid)
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, *req.Status)
	}
	if req.Priority != nil && !req.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalid, *req.Priority)
	}

	issue, err := s.store.UpdateIssue(ctx, id, req)
	if err != nil {
		return nil, err
	}

	metrics.IssuesTotal.WithLabelValues("updated").Inc()
	s.events.Publish(ctx, events.TypeIssueUpdated, issue)

	return issue, nil
}

// Delete removes an issue and publishes the event.
func (s *IssueService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteIssue(ctx, id); err != nil {
		return err
	}

	metrics.IssuesTotal.WithLabelValues("deleted").Inc()
	s.events.Publish(ctx, events.TypeIssueDeleted, map[string]int64{"id": id})

	return nil
}

// AddComment validates and persists a comment on an existing issue.
func (s *IssueService) AddComment(ctx context.Context, issueID int64, userID *int64, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalid)
	}

	// Verify the issue exists so a missing parent yields 404, not a
	// foreign key error.
	if _, err := s.store.GetIssue(ctx, issueID); err != nil {
		return nil, err
	}

	comment, err := s.store.AddComment(ctx, issueID, userID, content)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.TypeCommentAdded, comment)

	return comment, nil
}

// Users returns all tracker users.
func (s *IssueService) Users(ctx context.Context) ([]model.User, error) {
	return s.store.ListUsers(ctx)
}

// Labels returns all labels.
func (s *IssueService) Labels(ctx context.Context) ([]model.Label, error) {
	return s.store.ListLabels(ctx)
}

// Stats returns the aggregate issue summary.
func (s *IssueService) Stats(ctx context.Context) (*model.Summary, error) {
	return s.store.GetSummary(ctx)
}
