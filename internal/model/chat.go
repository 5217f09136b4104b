package model

// Role identifies the sender of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is a single message in the conversation history supplied
// by the caller.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body for the chat endpoint.
type ChatRequest struct {
	Message             string             `json:"message"`
	ConversationHistory []ConversationTurn `json:"conversationHistory,omitempty"`
}

// ChatResult is the sole output contract of the conversation orchestrator.
// On failure Success is false, Message carries the fixed user-visible text
// and Error the diagnostic.
type ChatResult struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	SuggestedActions []string `json:"suggestedActions,omitempty"`
	RelatedIssues    []Issue  `json:"relatedIssues,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// SuggestionsResult is the response for the per-issue suggestions endpoint.
type SuggestionsResult struct {
	Success     bool   `json:"success"`
	Issue       *Issue `json:"issue,omitempty"`
	Suggestions string `json:"suggestions,omitempty"`
	Error       string `json:"error,omitempty"`
}
