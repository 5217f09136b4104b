package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devtrack-ai/issue-platform/internal/model"
)

func TestExtractIssueReference(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantID  int64
	}{
		{"plain reference", "what is the state of #42", 42},
		{"reference with other keywords", "Show me critical issue #42", 42},
		{"first of several references", "compare #7 and #9", 7},
		{"reference at start", "#123 status?", 123},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Extract(tt.message)

			assert.Equal(t, tt.wantID, c.IssueID)
			assert.True(t, c.NeedsSearch)
			// An issue reference takes precedence over everything else.
			assert.Empty(t, c.Status)
			assert.Empty(t, c.Priority)
			assert.Empty(t, c.Query)
		})
	}
}

func TestExtractStatusKeywords(t *testing.T) {
	tests := []struct {
		message string
		want    model.Status
	}{
		{"show me the open issues", model.StatusOpen},
		{"anything in progress?", model.StatusInProgress},
		{"list resolved tickets", model.StatusResolved},
		{"how many closed issues", model.StatusClosed},
		{"what is blocked right now", model.StatusBlocked},
		{"OPEN issues please", model.StatusOpen},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			c := Extract(tt.message)

			assert.Equal(t, tt.want, c.Status)
			assert.True(t, c.NeedsSearch)
		})
	}
}

func TestExtractStatusFirstMatchWins(t *testing.T) {
	// Both keywords present: the one earlier in the table order is chosen.
	c := Extract("closed or open, which ones?")

	assert.Equal(t, model.StatusOpen, c.Status)
}

func TestExtractPriorityKeywords(t *testing.T) {
	tests := []struct {
		message string
		want    model.Priority
	}{
		{"anything critical?", model.PriorityCritical},
		{"urgent items please", model.PriorityCritical},
		{"high priority work", model.PriorityHigh},
		{"what is high on the list", model.PriorityHigh},
		{"medium priority issues", model.PriorityMedium},
		{"low priority backlog", model.PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			c := Extract(tt.message)

			assert.Equal(t, tt.want, c.Priority)
			assert.True(t, c.NeedsSearch)
		})
	}
}

func TestExtractStatusAndPriorityCombine(t *testing.T) {
	c := Extract("show open critical issues")

	assert.Equal(t, model.StatusOpen, c.Status)
	assert.Equal(t, model.PriorityCritical, c.Priority)
	assert.True(t, c.NeedsSearch)
}

func TestExtractAssignee(t *testing.T) {
	c := Extract("what is assigned to alice right now")

	assert.Equal(t, "alice", c.Assignee)
	assert.True(t, c.NeedsSearch)
}

func TestExtractMyIssuesTriggersSearchWithoutAssignee(t *testing.T) {
	c := Extract("show my issues")

	assert.Empty(t, c.Assignee)
	assert.True(t, c.NeedsSearch)
}

func TestExtractFreeTextKeyword(t *testing.T) {
	c := Extract("find anything about the database")

	assert.Equal(t, "database", c.Query)
	assert.True(t, c.NeedsSearch)
	assert.Empty(t, c.Status)
	assert.Empty(t, c.Priority)
}

func TestExtractFreeTextRequiresTriggerPhrase(t *testing.T) {
	// A technical keyword alone, with no trigger phrase, does not search.
	c := Extract("database")

	assert.False(t, c.NeedsSearch)
	assert.Empty(t, c.Query)
}

func TestExtractFreeTextSkippedWhenFilterSet(t *testing.T) {
	// "open" sets a status filter, so the technical-keyword scan must not
	// run even though "bugs" contains "bug".
	c := Extract("What are the open bugs?")

	assert.Equal(t, model.StatusOpen, c.Status)
	assert.True(t, c.NeedsSearch)
	assert.Empty(t, c.Query)
}

func TestExtractNoSignals(t *testing.T) {
	c := Extract("hello there")

	assert.False(t, c.NeedsSearch)
	assert.Zero(t, c.IssueID)
	assert.Empty(t, c.Status)
	assert.Empty(t, c.Priority)
	assert.Empty(t, c.Assignee)
	assert.Empty(t, c.Query)
}

func TestExtractIsIdempotent(t *testing.T) {
	messages := []string{
		"Show me critical issue #42",
		"What are the open bugs?",
		"find anything about the database",
		"what is assigned to bob",
		"hello there",
	}

	for _, msg := range messages {
		first := Extract(msg)
		second := Extract(msg)

		assert.Equal(t, first, second, "extract must be deterministic for %q", msg)
	}
}
