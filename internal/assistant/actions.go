package assistant

import "strings"

// actionKeywords maps literal response substrings to action tags. This is a
// keyword-presence classifier: every keyword found contributes its tag, in
// table order.
var actionKeywords = []struct {
	keyword string
	action  string
}{
	{"check", "investigate"},
	{"update", "update-issue"},
	{"assign", "assign"},
	{"close", "close-issue"},
	{"reopen", "reopen-issue"},
}

// extractSuggestedActions scans the raw response text for action keywords.
// Absence of all keywords yields an empty list.
func extractSuggestedActions(response string) []string {
	var actions []string
	for _, ak := range actionKeywords {
		if strings.Contains(response, ak.keyword) {
			actions = append(actions, ak.action)
		}
	}
	return actions
}
