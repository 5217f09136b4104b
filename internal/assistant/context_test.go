package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtrack-ai/issue-platform/internal/intent"
	"github.com/devtrack-ai/issue-platform/internal/model"
	"github.com/devtrack-ai/issue-platform/internal/testutil"
	"github.com/devtrack-ai/issue-platform/pkg/logger"
)

func TestBuildContextAlwaysCarriesSummaryAndRecent(t *testing.T) {
	a, s := newTestAssistant(t, nil)

	reporter := testutil.SeedUser(t, s, "alice")
	testutil.SeedIssue(t, s, "First issue", "", model.StatusOpen, model.PriorityLow, reporter.ID, nil)
	testutil.SeedIssue(t, s, "Second issue", "", model.StatusClosed, model.PriorityHigh, reporter.ID, nil)

	cctx, err := a.BuildContext(context.Background(), intent.Criteria{})

	require.NoError(t, err)
	require.NotNil(t, cctx.Summary)
	assert.Equal(t, 2, cctx.Summary.Total)
	assert.Len(t, cctx.Recent, 2)
	// No issue reference and no search criteria: nothing retrieved.
	assert.Empty(t, cctx.RelevantIssues)
}

func TestBuildContextIssueReference(t *testing.T) {
	a, s := newTestAssistant(t, nil)

	reporter := testutil.SeedUser(t, s, "alice")
	issue := testutil.SeedIssue(t, s, "Broken build", "make fails", model.StatusOpen, model.PriorityHigh, reporter.ID, nil)

	cctx, err := a.BuildContext(context.Background(), intent.Criteria{IssueID: issue.ID})

	require.NoError(t, err)
	require.Len(t, cctx.RelevantIssues, 1)
	assert.Equal(t, issue.ID, cctx.RelevantIssues[0].ID)
}

func TestBuildContextMissingIssueFalseIsEmpty(t *testing.T) {
	a, _ := newTestAssistant(t, nil)

	cctx, err := a.BuildContext(context.Background(), intent.Criteria{IssueID: 12345})

	require.NoError(t, err)
	assert.Empty(t, cctx.RelevantIssues)
}

func TestBuildContextSearch(t *testing.T) {
	a, s := newTestAssistant(t, nil)

	reporter := testutil.SeedUser(t, s, "alice")
	testutil.SeedIssue(t, s, "Login failure", "", model.StatusOpen, model.PriorityCritical, reporter.ID, nil)
	testutil.SeedIssue(t, s, "Slow dashboard", "", model.StatusClosed, model.PriorityLow, reporter.ID, nil)

	cctx, err := a.BuildContext(context.Background(), intent.Criteria{
		NeedsSearch: true,
		Status:      model.StatusOpen,
	})

	require.NoError(t, err)
	require.Len(t, cctx.RelevantIssues, 1)
	assert.Equal(t, "Login failure", cctx.RelevantIssues[0].Title)
}

func TestBuildContextSummaryFailurePropagates(t *testing.T) {
	a := New(failingReader{}, nil, Config{}, logger.NewNop())

	_, err := a.BuildContext(context.Background(), intent.Criteria{})

	assert.Error(t, err)
}

func TestBuildSystemPrompt(t *testing.T) {
	summary := &model.Summary{Total: 7, Open: 3, InProgress: 1, Closed: 2, Critical: 1, HighPriority: 2}
	assignee := "bob"
	recent := []model.Issue{{
		ID:               42,
		Title:            "Cache stampede on deploy",
		Status:           model.StatusOpen,
		Priority:         model.PriorityCritical,
		ReporterUsername: "alice",
		AssigneeUsername: &assignee,
		CreatedAt:        time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:        time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
	}}

	prompt := buildSystemPrompt(summary, recent)

	assert.Contains(t, prompt, "Total Issues: 7")
	assert.Contains(t, prompt, "- Open: 3")
	assert.Contains(t, prompt, "Critical Priority: 1")
	assert.Contains(t, prompt, "#42: Cache stampede on deploy (open, critical)")
	assert.Contains(t, prompt, "Created: 2024-03-01 by alice")
	assert.Contains(t, prompt, "Assignee: bob")
	assert.Contains(t, prompt, "**Your capabilities:**")
	assert.Contains(t, prompt, "**Response Format:**")
}

func TestRenderRelevantIssues(t *testing.T) {
	issues := []model.Issue{
		{ID: 1, Title: "First", Status: model.StatusOpen, Priority: model.PriorityHigh, Description: "short"},
		{ID: 2, Title: "Second", Status: model.StatusClosed, Priority: model.PriorityLow, Description: strings.Repeat("x", 300)},
	}

	block := renderRelevantIssues(issues)

	assert.True(t, strings.HasPrefix(block, "\n\n**Relevant Issues Found:**\n"))
	assert.Contains(t, block, "**#1**: First")
	assert.Contains(t, block, "Status: open | Priority: high | Assignee: Unassigned")
	assert.Contains(t, block, "short...")
	// Long descriptions are cut at the excerpt budget.
	assert.Contains(t, block, strings.Repeat("x", descriptionExcerptLen)+"...")
	assert.NotContains(t, block, strings.Repeat("x", descriptionExcerptLen+1))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "abc...", excerpt("abc", 10))
	assert.Equal(t, "abcde...", excerpt("abcdefgh", 5))
	// Truncation counts runes, not bytes.
	assert.Equal(t, "héllo...", excerpt("héllo world", 5))
}
