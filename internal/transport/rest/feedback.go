package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/service/feedback"
)

// feedbackService defines the minimal interface needed by FeedbackHandler.
type feedbackService interface {
	ExportFeedback(ctx context.Context, contractID uuid.UUID) (feedback.Report, error)
}

// FeedbackHandler serves the feedback export endpoint.
type FeedbackHandler struct {
	svc feedbackService
	log *slog.Logger
}

// NewFeedbackHandler creates a FeedbackHandler.
func NewFeedbackHandler(svc feedbackService, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{svc: svc, log: logger.With("handler", "feedback")}
}

// Export handles GET /contracts/{id}/feedback.
func (h *FeedbackHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	report, err := h.svc.ExportFeedback(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
