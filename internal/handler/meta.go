package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/devtrack-ai/issue-platform/internal/service"
	"github.com/devtrack-ai/issue-platform/pkg/logger"
)

// MetaHandler handles the user, label and stats endpoints.
type MetaHandler struct {
	issueService *service.IssueService
	logger       *logger.Logger
}

// NewMetaHandler creates a new meta handler.
func NewMetaHandler(svc *service.IssueService, log *logger.Logger) *MetaHandler {
	return &MetaHandler{
		issueService: svc,
		logger:       log,
	}
}

// Users handles GET /api/users
func (h *MetaHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.issueService.Users(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch users")
		return
	}

	writeData(w, http.StatusOK, users)
}

// Labels handles GET /api/labels
func (h *MetaHandler) Labels(w http.ResponseWriter, r *http.Request) {
	labels, err := h.issueService.Labels(r.Context())
	if err != nil {
		h.logger.Error("failed to list labels", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch labels")
		return
	}

	writeData(w, http.StatusOK, labels)
}

// Stats handles GET /api/stats
func (h *MetaHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.issueService.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to get stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch stats")
		return
	}

	writeData(w, http.StatusOK, stats)
}
