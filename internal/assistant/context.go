package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/devtrack-ai/issue-platform/internal/intent"
	"github.com/devtrack-ai/issue-platform/internal/model"
	"github.com/devtrack-ai/issue-platform/internal/store"
)

// descriptionExcerptLen is the character budget for issue descriptions
// rendered into the context block.
const descriptionExcerptLen = 150

// Context is the bounded issue context assembled for one chat turn.
type Context struct {
	RelevantIssues []model.Issue
	Summary        *model.Summary
	Recent         []model.Issue
}

// BuildContext retrieves the issues relevant to the extracted criteria plus
// the always-present summary and recent-activity snapshot.
//
// A failed search or recent lookup fails closed to an empty set so a
// partial store outage does not prevent the assistant from responding. A
// failed summary fetch is returned as an error: without the overview there
// is nothing to anchor the system prompt on.
func (a *Assistant) BuildContext(ctx context.Context, criteria intent.Criteria) (*Context, error) {
	summary, err := a.store.GetSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting summary: %w", err)
	}

	recent, err := a.store.GetRecentIssues(ctx, recentLimit)
	if err != nil {
		a.logger.Warn("failed to load recent issues", zap.Error(err))
		recent = nil
	}

	var relevant []model.Issue
	switch {
	case criteria.IssueID != 0:
		issue, err := a.store.GetIssue(ctx, criteria.IssueID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			// A missing issue silently yields an empty context.
			a.logger.Debug("referenced issue not found",
				zap.Int64("issue_id", criteria.IssueID))
		case err != nil:
			a.logger.Warn("issue lookup failed",
				zap.Int64("issue_id", criteria.IssueID), zap.Error(err))
		default:
			relevant = []model.Issue{*issue}
		}

	case criteria.NeedsSearch:
		issues, err := a.store.SearchIssues(ctx, store.SearchQuery{
			Text:     criteria.Query,
			Status:   criteria.Status,
			Priority: criteria.Priority,
			Assignee: criteria.Assignee,
		})
		if err != nil {
			a.logger.Warn("issue search failed", zap.Error(err))
		} else {
			relevant = issues
		}
	}

	return &Context{
		RelevantIssues: relevant,
		Summary:        summary,
		Recent:         recent,
	}, nil
}

// buildSystemPrompt renders the fixed preamble with the current overview
// counts and recent-issue listing.
func buildSystemPrompt(summary *model.Summary, recent []model.Issue) string {
	var b strings.Builder

	b.WriteString("You are an AI assistant for a DevOps issue tracking system. You help users find, understand, and resolve issues.\n\n")

	fmt.Fprintf(&b, "**Current Issues Overview:**\n")
	fmt.Fprintf(&b, "- Total Issues: %d\n", summary.Total)
	fmt.Fprintf(&b, "- Open: %d\n", summary.Open)
	fmt.Fprintf(&b, "- In Progress: %d\n", summary.InProgress)
	fmt.Fprintf(&b, "- Closed: %d\n", summary.Closed)
	fmt.Fprintf(&b, "- Critical Priority: %d\n", summary.Critical)
	fmt.Fprintf(&b, "- High Priority: %d\n\n", summary.HighPriority)

	b.WriteString("**Recent Issues:**\n")
	for _, issue := range recent {
		reporter := issue.ReporterUsername
		if reporter == "" {
			reporter = "unknown"
		}
		assignee := "unassigned"
		if issue.AssigneeUsername != nil {
			assignee = *issue.AssigneeUsername
		}
		fmt.Fprintf(&b, "- #%d: %s (%s, %s)\n    Created: %s by %s | Updated: %s | Assignee: %s\n",
			issue.ID, issue.Title, issue.Status, issue.Priority,
			issue.CreatedAt.Format("2006-01-02"), reporter,
			issue.UpdatedAt.Format("2006-01-02"), assignee)
	}

	b.WriteString(`
**Your capabilities:**
1. Search and filter issues by status, priority, assignee
2. Provide issue details and history
3. Suggest workarounds and remediation steps
4. Answer questions about issue trends
5. Help prioritize work

**Guidelines:**
- Be concise and helpful
- Provide specific issue numbers when referencing issues
- Suggest actionable next steps
- If you need to search for specific issues, tell the user what you found
- For technical issues, suggest debugging steps and workarounds
- Reference related issues when relevant

**Response Format:**
- Use markdown for formatting
- Use bullet points for lists
- Use **bold** for issue IDs like **#123**
- Keep responses under 300 words unless user asks for details`)

	return b.String()
}

// renderRelevantIssues renders the retrieved issues into the block appended
// to the outgoing user message.
func renderRelevantIssues(issues []model.Issue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		assignee := "Unassigned"
		if issue.AssigneeUsername != nil {
			assignee = *issue.AssigneeUsername
		}
		parts = append(parts, fmt.Sprintf("- **#%d**: %s\n  Status: %s | Priority: %s | Assignee: %s\n  Description: %s",
			issue.ID, issue.Title, issue.Status, issue.Priority, assignee,
			excerpt(issue.Description, descriptionExcerptLen)))
	}

	return "\n\n**Relevant Issues Found:**\n" + strings.Join(parts, "\n\n")
}

// buildSuggestionPrompt builds the analysis prompt for the per-issue
// suggestions endpoint.
func buildSuggestionPrompt(issue *model.Issue, comments []model.Comment) string {
	var b strings.Builder

	b.WriteString(`Analyze this issue and provide:
1. Root cause analysis
2. Suggested workarounds
3. Permanent fix recommendations
4. Related issues to check
5. Prevention tips

`)
	fmt.Fprintf(&b, "Issue: #%d - %s\n", issue.ID, issue.Title)
	fmt.Fprintf(&b, "Description: %s\n", issue.Description)
	fmt.Fprintf(&b, "Status: %s\n", issue.Status)
	fmt.Fprintf(&b, "Priority: %s\n", issue.Priority)
	b.WriteString("Comments:\n")
	for _, c := range comments {
		author := "unknown"
		if c.Username != nil {
			author = *c.Username
		}
		fmt.Fprintf(&b, "- %s: %s\n", author, c.Content)
	}

	return b.String()
}

// excerpt truncates s to at most n runes and appends an ellipsis marker.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
