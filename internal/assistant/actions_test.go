package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSuggestedActions(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []string
	}{
		{
			name:     "update and close",
			// "assignee" contains the literal "assign", so that tag fires too.
			response: "you should update the assignee and close it",
			want:     []string{"update-issue", "assign", "close-issue"},
		},
		{
			name:     "investigate",
			response: "please check the application logs first",
			want:     []string{"investigate"},
		},
		{
			name:     "reopen",
			response: "it may be worth a reopen if the bug persists",
			want:     []string{"reopen-issue"},
		},
		{
			name:     "no keywords",
			response: "everything looks fine",
			want:     nil,
		},
		{
			name:     "all keywords",
			response: "check, update, assign, close, reopen",
			want:     []string{"investigate", "update-issue", "assign", "close-issue", "reopen-issue"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSuggestedActions(tt.response))
		})
	}
}
