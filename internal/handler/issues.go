package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/devtrack-ai/issue-platform/internal/middleware"
	"github.com/devtrack-ai/issue-platform/internal/model"
	"github.com/devtrack-ai/issue-platform/internal/service"
	"github.com/devtrack-ai/issue-platform/internal/store"
	"github.com/devtrack-ai/issue-platform/pkg/logger"
)

// IssueHandler handles issue and comment endpoints.
type IssueHandler struct {
	issueService *service.IssueService
	logger       *logger.Logger
}

// NewIssueHandler creates a new issue handler.
func NewIssueHandler(svc *service.IssueService, log *logger.Logger) *IssueHandler {
	return &IssueHandler{
		issueService: svc,
		logger:       log,
	}
}

// List handles GET /api/issues
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.ListFilter{
		Status:   model.Status(q.Get("status")),
		Priority: model.Priority(q.Get("priority")),
		Search:   q.Get("search"),
	}

	if raw := q.Get("assignee"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid assignee ID")
			return
		}
		filter.AssigneeID = &id
	}
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			filter.Limit = parsed
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			filter.Offset = parsed
		}
	}

	resp, err := h.issueService.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list issues", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch issues")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"data":       resp.Issues,
		"pagination": resp.Pagination,
	})
}

// issueDetail is an issue with its comments inlined, for the detail view.
type issueDetail struct {
	model.Issue
	Comments []model.Comment `json:"comments"`
}

// Get handles GET /api/issues/{id}
func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.ValidateIssueID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	issue, comments, err := h.issueService.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get issue", zap.Int64("issue_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch issue")
		return
	}

	writeData(w, http.StatusOK, issueDetail{Issue: *issue, Comments: comments})
}

// Create handles POST /api/issues
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateTitle(req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	issue, err := h.issueService.Create(r.Context(), &req)
	if errors.Is(err, service.ErrInvalid) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to create issue", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create issue")
		return
	}

	writeData(w, http.StatusCreated, issue)
}

// Update handles PUT /api/issues/{id}
func (h *IssueHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.ValidateIssueID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.UpdateIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	issue, err := h.issueService.Update(r.Context(), id, &req)
	if errors.Is(err, service.ErrInvalid) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update issue", zap.Int64("issue_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update issue")
		return
	}

	writeData(w, http.StatusOK, issue)
}

// Delete handles DELETE /api/issues/{id}
func (h *IssueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.ValidateIssueID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.issueService.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete issue", zap.Int64("issue_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete issue")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Issue deleted successfully",
	})
}

// addCommentRequest is the body for POST /api/issues/{id}/comments.
type addCommentRequest struct {
	UserID  *int64 `json:"user_id,omitempty"`
	Content string `json:"content"`
}

// AddComment handles POST /api/issues/{id}/comments
func (h *IssueHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.ValidateIssueID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.issueService.AddComment(r.Context(), id, req.UserID, req.Content)
	if errors.Is(err, service.ErrInvalid) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to add comment", zap.Int64("issue_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create comment")
		return
	}

	writeData(w, http.StatusCreated, comment)
}
