// Package model defines data structures for the issue tracker.
package model

import (
	"time"
)

// Status is the workflow state of an issue.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
	StatusBlocked    Status = "blocked"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed, StatusBlocked:
		return true
	}
	return false
}

// Priority is the urgency bucket of an issue.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Issue represents a trackable unit of work or defect.
type Issue struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Status      Status    `db:"status" json:"status"`
	Priority    Priority  `db:"priority" json:"priority"`
	ReporterID  int64     `db:"reporter_id" json:"reporter_id"`
	AssigneeID  *int64    `db:"assignee_id" json:"assignee_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Joined fields, populated on read.
	ReporterUsername string  `db:"reporter_username" json:"reporter_username,omitempty"`
	AssigneeUsername *string `db:"assignee_username" json:"assignee_username,omitempty"`
	CommentCount     int     `db:"comment_count" json:"comment_count,omitempty"`
	Labels           []Label `db:"-" json:"labels,omitempty"`
}

// Comment represents a comment attached to an issue.
type Comment struct {
	ID        int64     `db:"id" json:"id"`
	IssueID   int64     `db:"issue_id" json:"issue_id"`
	UserID    *int64    `db:"user_id" json:"user_id,omitempty"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Username *string `db:"username" json:"username,omitempty"`
}

// Label is a named tag attachable to issues.
type Label struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Color string `db:"color" json:"color"`
}

// User represents a tracker account referenced by issues and comments.
type User struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}

// Summary holds aggregate issue counts by status and priority.
type Summary struct {
	Total          int `db:"total" json:"total"`
	Open           int `db:"open" json:"open"`
	InProgress     int `db:"in_progress" json:"in_progress"`
	Resolved       int `db:"resolved" json:"resolved"`
	Closed         int `db:"closed" json:"closed"`
	Blocked        int `db:"blocked" json:"blocked"`
	Critical       int `db:"critical" json:"critical"`
	HighPriority   int `db:"high_priority" json:"high_priority"`
	MediumPriority int `db:"medium_priority" json:"medium_priority"`
	LowPriority    int `db:"low_priority" json:"low_priority"`
}

// CreateIssueRequest is the request to create a new issue.
type CreateIssueRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	ReporterID  int64    `json:"reporter_id"`
	AssigneeID  *int64   `json:"assignee_id,omitempty"`
	Labels      []int64  `json:"labels,omitempty"`
}

// UpdateIssueRequest is the request to update an issue. Nil fields are
// left unchanged.
type UpdateIssueRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	AssigneeID  *int64    `json:"assignee_id,omitempty"`
}

// Pagination describes a page of list results.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// ListIssuesResponse is the response for listing issues.
type ListIssuesResponse struct {
	Issues     []Issue    `json:"data"`
	Pagination Pagination `json:"pagination"`
}
