// Package intent converts free-text assistant messages into structured
// search criteria.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/devtrack-ai/issue-platform/internal/model"
)

// Criteria is the structured search directive extracted from a message.
// Zero values mean "no filter"; IssueID 0 means no explicit reference.
type Criteria struct {
	NeedsSearch bool
	IssueID     int64
	Status      model.Status
	Priority    model.Priority
	Assignee    string
	Query       string
}

var (
	issueRefPattern  = regexp.MustCompile(`#(\d+)`)
	assignedToPattern = regexp.MustCompile(`assigned to (\w+)`)
)

// statusKeywords maps message keywords to status filters. Order is
// load-bearing: the first keyword found in the message wins, so broader
// terms must not shadow narrower ones placed before them.
var statusKeywords = []struct {
	keyword string
	status  model.Status
}{
	{"open", model.StatusOpen},
	{"in progress", model.StatusInProgress},
	{"resolved", model.StatusResolved},
	{"closed", model.StatusClosed},
	{"blocked", model.StatusBlocked},
}

// priorityKeywords maps message keywords to priority filters, first match
// wins. Compound forms precede their bare words.
var priorityKeywords = []struct {
	keyword  string
	priority model.Priority
}{
	{"critical", model.PriorityCritical},
	{"urgent", model.PriorityCritical},
	{"high priority", model.PriorityHigh},
	{"high", model.PriorityHigh},
	{"medium priority", model.PriorityMedium},
	{"medium", model.PriorityMedium},
	{"low priority", model.PriorityLow},
	{"low", model.PriorityLow},
}

// searchTriggers are phrases that indicate the user wants a listing.
var searchTriggers = []string{
	"list", "show", "find", "search", "get", "give me",
	"what are", "which", "how many", "issues",
}

// technicalKeywords is the fixed vocabulary matched for free-text search.
var technicalKeywords = []string{
	"login", "authentication", "database", "api", "frontend", "backend",
	"bug", "error", "crash", "performance", "security",
}

// Extract parses a user message into search criteria. It is pure and
// deterministic: the same message always yields the same criteria.
//
// Rule order matters. An explicit issue reference (#N) takes precedence
// over everything else. Status, priority and assignee filters are scanned
// next. The free-text keyword scan runs only when no earlier rule fired.
func Extract(message string) Criteria {
	var c Criteria

	lower := strings.ToLower(message)

	// Explicit issue reference short-circuits to a direct lookup.
	if m := issueRefPattern.FindStringSubmatch(lower); m != nil {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err == nil && id > 0 {
			c.IssueID = id
			c.NeedsSearch = true
			return c
		}
	}

	for _, sk := range statusKeywords {
		if strings.Contains(lower, sk.keyword) {
			c.Status = sk.status
			c.NeedsSearch = true
			break
		}
	}

	for _, pk := range priorityKeywords {
		if strings.Contains(lower, pk.keyword) {
			c.Priority = pk.priority
			c.NeedsSearch = true
			break
		}
	}

	if strings.Contains(lower, "assigned to") || strings.Contains(lower, "my issues") {
		if m := assignedToPattern.FindStringSubmatch(lower); m != nil {
			c.Assignee = m[1]
		}
		// "my issues" never resolves the caller's own identity; there is
		// no authenticated user to bind it to. It still triggers a search.
		c.NeedsSearch = true
	}

	// Free-text keyword scan runs only when no filter fired above.
	if !c.NeedsSearch && containsAny(lower, searchTriggers) {
		for _, kw := range technicalKeywords {
			if strings.Contains(lower, kw) {
				c.Query = kw
				c.NeedsSearch = true
				break
			}
		}
	}

	return c
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
