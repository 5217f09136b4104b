// Package assistant implements the conversational AI layer: it turns a user
// message into search criteria, assembles issue context from the store, and
// orchestrates a single completion request.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/devtrack-ai/issue-platform/internal/intent"
	"github.com/devtrack-ai/issue-platform/internal/llm"
	"github.com/devtrack-ai/issue-platform/internal/model"
	"github.com/devtrack-ai/issue-platform/internal/store"
	"github.com/devtrack-ai/issue-platform/pkg/logger"
	"github.com/devtrack-ai/issue-platform/pkg/metrics"
)

// failureMessage is the fixed user-visible text returned on any failure.
const failureMessage = "Sorry, I encountered an error. Please try again."

// recentLimit is the number of recent issues included in every context.
const recentLimit = 15

// IssueReader is the narrow read-only store surface the assistant consumes.
type IssueReader interface {
	GetIssue(ctx context.Context, id int64) (*model.Issue, error)
	SearchIssues(ctx context.Context, q store.SearchQuery) ([]model.Issue, error)
	GetSummary(ctx context.Context) (*model.Summary, error)
	GetRecentIssues(ctx context.Context, limit int) ([]model.Issue, error)
	ListComments(ctx context.Context, issueID int64) ([]model.Comment, error)
}

// Config holds the completion parameters, a single configuration point.
type Config struct {
	Model          string
	MaxTokens      int
	Temperature    float64
	RequestTimeout time.Duration
}

// Assistant is the conversation orchestrator.
type Assistant struct {
	store  IssueReader
	llm    llm.Client
	cfg    Config
	logger *logger.Logger
}

// New creates an assistant. client may be nil when no provider is
// configured; Chat then returns the fixed failure result.
func New(s IssueReader, client llm.Client, cfg Config, log *logger.Logger) *Assistant {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	return &Assistant{
		store:  s,
		llm:    client,
		cfg:    cfg,
		logger: log,
	}
}

// Chat processes one user message with the supplied conversation history and
// returns a structured result. It never returns an error: every failure is
// converted into a well-formed ChatResult with the fixed failure message.
func (a *Assistant) Chat(ctx context.Context, message string, history []model.ConversationTurn) *model.ChatResult {
	criteria := intent.Extract(message)

	chatCtx, err := a.BuildContext(ctx, criteria)
	if err != nil {
		return a.failResult(fmt.Errorf("building context: %w", err))
	}

	if a.llm == nil {
		return a.failResult(errors.New("no completion provider configured"))
	}

	userContent := message
	if len(chatCtx.RelevantIssues) > 0 {
		// The context block rides on the user turn itself, not as a
		// separate message.
		userContent += renderRelevantIssues(chatCtx.RelevantIssues)
	}

	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.ChatMessage{
		Role:    "system",
		Content: buildSystemPrompt(chatCtx.Summary, chatCtx.Recent),
	})
	for _, turn := range history {
		messages = append(messages, llm.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, llm.ChatMessage{Role: "user", Content: userContent})

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := a.llm.Complete(callCtx, &llm.CompletionRequest{
		Model:       a.cfg.Model,
		Messages:    messages,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		metrics.RecordLLMRequest(a.cfg.Model, "error", time.Since(start).Seconds(), 0, 0)
		return a.failResult(fmt.Errorf("completion request: %w", err))
	}
	metrics.RecordLLMRequest(resp.Model, "success", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)
	metrics.ChatTurnsTotal.WithLabelValues("success").Inc()

	return &model.ChatResult{
		Success:          true,
		Message:          resp.Content,
		SuggestedActions: extractSuggestedActions(resp.Content),
		RelatedIssues:    chatCtx.RelevantIssues,
	}
}

// Search is a read-only passthrough with the same filtering semantics the
// context assembler uses. Backs the smart-search endpoint.
func (a *Assistant) Search(ctx context.Context, q store.SearchQuery) ([]model.Issue, error) {
	return a.store.SearchIssues(ctx, q)
}

// Suggest fetches an issue with its comments, builds an analysis prompt and
// runs it through Chat with no history. ErrNotFound propagates so the
// caller can answer 404.
func (a *Assistant) Suggest(ctx context.Context, issueID int64) (*model.SuggestionsResult, error) {
	issue, err := a.store.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	comments, err := a.store.ListComments(ctx, issueID)
	if err != nil {
		a.logger.Warn("failed to load comments for suggestions",
			zap.Int64("issue_id", issueID), zap.Error(err))
		comments = nil
	}

	result := a.Chat(ctx, buildSuggestionPrompt(issue, comments), nil)
	if !result.Success {
		return &model.SuggestionsResult{Success: false, Error: result.Error}, nil
	}

	return &model.SuggestionsResult{
		Success:     true,
		Issue:       issue,
		Suggestions: result.Message,
	}, nil
}

func (a *Assistant) failResult(err error) *model.ChatResult {
	a.logger.Error("chat turn failed", zap.Error(err))
	metrics.ChatTurnsTotal.WithLabelValues("error").Inc()

	return &model.ChatResult{
		Success: false,
		Message: failureMessage,
		Error:   err.Error(),
	}
}
