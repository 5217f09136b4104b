package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devtrack-ai/issue-platform/internal/model"
)

// issueSelect is the base SELECT shared by all issue reads. Assignee columns
// come from a LEFT JOIN and may be NULL.
const issueSelect = `
SELECT i.id, i.title, i.description, i.status, i.priority,
       i.reporter_id, i.assignee_id, i.created_at, i.updated_at,
       COALESCE(reporter.username, '') AS reporter_username,
       assignee.username AS assignee_username,
       (SELECT COUNT(*) FROM comments c WHERE c.issue_id = i.id) AS comment_count
FROM issues i
LEFT JOIN users reporter ON i.reporter_id = reporter.id
LEFT JOIN users assignee ON i.assignee_id = assignee.id`

// GetIssue retrieves a single issue with its labels.
func (s *SQLiteStore) GetIssue(ctx context.Context, id int64) (*model.Issue, error) {
	var issue model.Issue
	err := s.db.GetContext(ctx, &issue, issueSelect+" WHERE i.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting issue %d: %w", id, err)
	}

	if err := s.loadLabels(ctx, []*model.Issue{&issue}); err != nil {
		return nil, err
	}

	return &issue, nil
}

// SearchIssues returns issues matching the AND-combined filters, most
// recently updated first, capped at SearchLimit rows.
func (s *SQLiteStore) SearchIssues(ctx context.Context, q SearchQuery) ([]model.Issue, error) {
	var conditions []string
	var args []interface{}

	if q.Status != "" {
		conditions = append(conditions, "i.status = ?")
		args = append(args, string(q.Status))
	}
	if q.Priority != "" {
		conditions = append(conditions, "i.priority = ?")
		args = append(args, string(q.Priority))
	}
	if q.Assignee != "" {
		conditions = append(conditions, "assignee.username LIKE ?")
		args = append(args, "%"+q.Assignee+"%")
	}
	if q.Text != "" {
		conditions = append(conditions, "(i.title LIKE ? OR i.description LIKE ?)")
		t := "%" + q.Text + "%"
		args = append(args, t, t)
	}

	query := issueSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY i.updated_at DESC LIMIT ?"
	args = append(args, SearchLimit)

	issues := []model.Issue{}
	if err := s.db.SelectContext(ctx, &issues, query, args...); err != nil {
		return nil, fmt.Errorf("searching issues: %w", err)
	}

	return issues, nil
}

// ListIssues returns a page of issues matching the filter plus the total
// matching count, newest first.
func (s *SQLiteStore) ListIssues(ctx context.Context, f ListFilter) ([]model.Issue, int, error) {
	var conditions []string
	var args []interface{}

	if f.Status != "" {
		conditions = append(conditions, "i.status = ?")
		args = append(args, string(f.Status))
	}
	if f.Priority != "" {
		conditions = append(conditions, "i.priority = ?")
		args = append(args, string(f.Priority))
	}
	if f.AssigneeID != nil {
		conditions = append(conditions, "i.assignee_id = ?")
		args = append(args, *f.AssigneeID)
	}
	if f.Search != "" {
		conditions = append(conditions, "(i.title LIKE ? OR i.description LIKE ?)")
		t := "%" + f.Search + "%"
		args = append(args, t, t)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM issues i LEFT JOIN users assignee ON i.assignee_id = assignee.id" + where
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("counting issues: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	query := issueSelect + where + " ORDER BY i.created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	issues := []model.Issue{}
	if err := s.db.SelectContext(ctx, &issues, query, args...); err != nil {
		return nil, 0, fmt.Errorf("listing issues: %w", err)
	}

	if err := s.loadLabelsForSlice(ctx, issues); err != nil {
		return nil, 0, err
	}

	return issues, total, nil
}

// GetSummary returns aggregate issue counts by status and priority.
func (s *SQLiteStore) GetSummary(ctx context.Context) (*model.Summary, error) {
	const query = `
SELECT COUNT(*) AS total,
       COUNT(*) FILTER (WHERE status = 'open') AS open,
       COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
       COUNT(*) FILTER (WHERE status = 'resolved') AS resolved,
       COUNT(*) FILTER (WHERE status = 'closed') AS closed,
       COUNT(*) FILTER (WHERE status = 'blocked') AS blocked,
       COUNT(*) FILTER (WHERE priority = 'critical') AS critical,
       COUNT(*) FILTER (WHERE priority = 'high') AS high_priority,
       COUNT(*) FILTER (WHERE priority = 'medium') AS medium_priority,
       COUNT(*) FILTER (WHERE priority = 'low') AS low_priority
FROM issues`

	var summary model.Summary
	if err := s.db.GetContext(ctx, &summary, query); err != nil {
		return nil, fmt.Errorf("getting issue summary: %w", err)
	}

	return &summary, nil
}

// GetRecentIssues returns the most recently created issues.
func (s *SQLiteStore) GetRecentIssues(ctx context.Context, limit int) ([]model.Issue, error) {
	if limit <= 0 {
		limit = 10
	}

	issues := []model.Issue{}
	query := issueSelect + " ORDER BY i.created_at DESC LIMIT ?"
	if err := s.db.SelectContext(ctx, &issues, query, limit); err != nil {
		return nil, fmt.Errorf("getting recent issues: %w", err)
	}

	return issues, nil
}

// CreateIssue inserts a new issue and attaches labels in one transaction.
func (s *SQLiteStore) CreateIssue(ctx context.Context, req *model.CreateIssueRequest) (*model.Issue, error) {
	now := time.Now().UTC()

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO issues (title, description, status, priority, reporter_id, assignee_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(req.Title), strings.TrimSpace(req.Description),
		string(model.StatusOpen), string(priority),
		req.ReporterID, req.AssigneeID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting issue: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading issue id: %w", err)
	}

	for _, labelID := range req.Labels {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO issue_labels (issue_id, label_id) VALUES (?, ?)", id, labelID,
		); err != nil {
			return nil, fmt.Errorf("attaching label %d: %w", labelID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing issue: %w", err)
	}

	return s.GetIssue(ctx, id)
}

// UpdateIssue applies a partial update and bumps updated_at.
func (s *SQLiteStore) UpdateIssue(ctx context.Context, id int64, req *model.UpdateIssueRequest) (*model.Issue, error) {
	var sets []string
	var args []interface{}

	if req.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, strings.TrimSpace(*req.Description))
	}
	if req.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*req.Status))
	}
	if req.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, string(*req.Priority))
	}
	if req.AssigneeID != nil {
		sets = append(sets, "assignee_id = ?")
		args = append(args, *req.AssigneeID)
	}

	if len(sets) == 0 {
		return nil, errors.New("no fields to update")
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := "UPDATE issues SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating issue %d: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("reading rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return s.GetIssue(ctx, id)
}

// DeleteIssue removes an issue; comments and label links cascade.
func (s *SQLiteStore) DeleteIssue(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM issues WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting issue %d: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// loadLabels attaches labels to the given issues in a single query.
func (s *SQLiteStore) loadLabels(ctx context.Context, issues []*model.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	ids := make([]int64, len(issues))
	byID := make(map[int64]*model.Issue, len(issues))
	for i, issue := range issues {
		ids[i] = issue.ID
		byID[issue.ID] = issue
	}

	query, args, err := sqlx.In(`
		SELECT il.issue_id, l.id, l.name, l.color
		FROM labels l
		JOIN issue_labels il ON l.id = il.label_id
		WHERE il.issue_id IN (?)
		ORDER BY l.name`, ids)
	if err != nil {
		return fmt.Errorf("building label query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("loading labels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var issueID int64
		var label model.Label
		if err := rows.Scan(&issueID, &label.ID, &label.Name, &label.Color); err != nil {
			return fmt.Errorf("scanning label row: %w", err)
		}
		if issue, ok := byID[issueID]; ok {
			issue.Labels = append(issue.Labels, label)
		}
	}

	return rows.Err()
}

func (s *SQLiteStore) loadLabelsForSlice(ctx context.Context, issues []model.Issue) error {
	ptrs := make([]*model.Issue, len(issues))
	for i := range issues {
		ptrs[i] = &issues[i]
	}
	return s.loadLabels(ctx, ptrs)
}
