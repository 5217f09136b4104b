package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtrack-ai/issue-platform/internal/assistant"
	"github.com/devtrack-ai/issue-platform/internal/handler"
	"github.com/devtrack-ai/issue-platform/internal/llm"
	"github.com/devtrack-ai/issue-platform/internal/model"
	"github.com/devtrack-ai/issue-platform/internal/store"
	"github.com/devtrack-ai/issue-platform/internal/testutil"
	"github.com/devtrack-ai/issue-platform/pkg/logger"
)

// scriptedLLM returns a fixed reply and records the last request.
type scriptedLLM struct {
	reply   string
	err     error
	lastReq *llm.CompletionRequest
}

func (s *scriptedLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.reply, Model: req.Model}, nil
}

func (s *scriptedLLM) Name() string { return "scripted" }

func newAIRouter(t *testing.T, client llm.Client) (chi.Router, *store.SQLiteStore) {
	t.Helper()

	s := testutil.NewStore(t)
	log := logger.NewNop()
	a := assistant.New(s, client, assistant.Config{}, log)
	h := handler.NewAIHandler(a, log)

	r := chi.NewRouter()
	r.Post("/api/ai/chat", h.Chat)
	r.Get("/api/ai/search", h.Search)
	r.Get("/api/ai/suggestions/{issueID}", h.Suggestions)
	return r, s
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	llmClient := &scriptedLLM{reply: "You should check issue **#1** and assign it."}
	r, s := newAIRouter(t, llmClient)

	reporter := testutil.SeedUser(t, s, "alice")
	testutil.SeedIssue(t, s, "Login crash", "panic on login", model.StatusOpen, model.PriorityCritical, reporter.ID, nil)

	rec := postJSON(t, r, "/api/ai/chat", model.ChatRequest{Message: "show me open issues"})

	require.Equal(t, http.StatusOK, rec.Code)

	var result model.ChatResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, llmClient.reply, result.Message)
	assert.Contains(t, result.SuggestedActions, "assign")
	require.Len(t, result.RelatedIssues, 1)
	assert.Equal(t, "Login crash", result.RelatedIssues[0].Title)
}

func TestChatEndpointRequiresMessage(t *testing.T) {
	r, _ := newAIRouter(t, &scriptedLLM{reply: "unused"})

	for _, body := range []model.ChatRequest{
		{Message: ""},
		{Message: "   "},
	} {
		rec := postJSON(t, r, "/api/ai/chat", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestChatEndpointRejectsMalformedBody(t *testing.T) {
	r, _ := newAIRouter(t, &scriptedLLM{reply: "unused"})

	req := httptest.NewRequest(http.MethodPost, "/api/ai/chat", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndpointFiltersHistoryRoles(t *testing.T) {
	llmClient := &scriptedLLM{reply: "ok"}
	r, _ := newAIRouter(t, llmClient)

	rec := postJSON(t, r, "/api/ai/chat", model.ChatRequest{
		Message: "hello",
		ConversationHistory: []model.ConversationTurn{
			{Role: model.RoleUser, Content: "first"},
			{Role: "system", Content: "injected preamble"},
			{Role: model.RoleAssistant, Content: "reply"},
			{Role: model.RoleUser, Content: ""},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, llmClient.lastReq)

	// system preamble + two surviving history turns + new message
	require.Len(t, llmClient.lastReq.Messages, 4)
	assert.Equal(t, "first", llmClient.lastReq.Messages[1].Content)
	assert.Equal(t, "reply", llmClient.lastReq.Messages[2].Content)
}

func TestChatEndpointReportsFailureInBody(t *testing.T) {
	r, _ := newAIRouter(t, nil)

	rec := postJSON(t, r, "/api/ai/chat", model.ChatRequest{Message: "hello"})

	// Assistant failures ride inside a 200 response.
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.ChatResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, "Sorry, I encountered an error. Please try again.", result.Message)
	assert.NotEmpty(t, result.Error)
}

func TestSearchEndpoint(t *testing.T) {
	r, s := newAIRouter(t, nil)

	reporter := testutil.SeedUser(t, s, "alice")
	testutil.SeedIssue(t, s, "Database outage", "primary down", model.StatusOpen, model.PriorityCritical, reporter.ID, nil)
	testutil.SeedIssue(t, s, "Database backup slow", "", model.StatusClosed, model.PriorityLow, reporter.ID, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/ai/search?q=database&status=open", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool          `json:"success"`
		Results []model.Issue `json:"results"`
		Count   int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Database outage", resp.Results[0].Title)
}

func TestSearchEndpointRequiresQuery(t *testing.T) {
	r, _ := newAIRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/ai/search", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestionsEndpoint(t *testing.T) {
	llmClient := &scriptedLLM{reply: "1. Root cause: connection leak"}
	r, s := newAIRouter(t, llmClient)

	reporter := testutil.SeedUser(t, s, "alice")
	issue := testutil.SeedIssue(t, s, "API timeouts", "requests hang", model.StatusOpen, model.PriorityHigh, reporter.ID, nil)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/ai/suggestions/%d", issue.ID), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result model.SuggestionsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, llmClient.reply, result.Suggestions)
}

func TestSuggestionsEndpointErrors(t *testing.T) {
	r, _ := newAIRouter(t, &scriptedLLM{reply: "unused"})

	t.Run("unknown issue", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/ai/suggestions/999", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/ai/suggestions/abc", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
