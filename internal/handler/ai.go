package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/devtrack-ai/issue-platform/internal/assistant"
	"github.com/devtrack-ai/issue-platform/internal/middleware"
	"github.com/devtrack-ai/issue-platform/internal/model"
	"github.com/devtrack-ai/issue-platform/internal/store"
	"github.com/devtrack-ai/issue-platform/pkg/logger"
)

// AIHandler handles the assistant endpoints.
type AIHandler struct {
	assistant *assistant.Assistant
	logger    *logger.Logger
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(a *assistant.Assistant, log *logger.Logger) *AIHandler {
	return &AIHandler{
		assistant: a,
		logger:    log,
	}
}

// Chat handles POST /api/ai/chat
//
// The response is always 200 with a structured ChatResult; assistant
// failures are carried in the body, distinct from transport errors.
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Only user and assistant turns are forwarded to the core.
	history := make([]model.ConversationTurn, 0, len(req.ConversationHistory))
	for _, turn := range req.ConversationHistory {
		if (turn.Role == model.RoleUser || turn.Role == model.RoleAssistant) && turn.Content != "" {
			history = append(history, turn)
		}
	}

	result := h.assistant.Chat(r.Context(), req.Message, history)

	writeJSON(w, http.StatusOK, result)
}

// Search handles GET /api/ai/search
func (h *AIHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	text := q.Get("q")
	if text == "" {
		writeError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	results, err := h.assistant.Search(r.Context(), store.SearchQuery{
		Text:     text,
		Status:   model.Status(q.Get("status")),
		Priority: model.Priority(q.Get("priority")),
		Assignee: q.Get("assignee"),
	})
	if err != nil {
		h.logger.Error("smart search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
		"count":   len(results),
	})
}

// Suggestions handles GET /api/ai/suggestions/{issueID}
func (h *AIHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.ValidateIssueID(chi.URLParam(r, "issueID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.assistant.Suggest(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get suggestions", zap.Int64("issue_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get suggestions")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
