package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// auditService defines the minimal interface needed by AuditHandler.
type auditService interface {
	History(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditEntry, error)
	Recent(ctx context.Context, limit, offset int) ([]domain.AuditEntry, error)
}

// AuditHandler serves the audit trail read endpoints.
type AuditHandler struct {
	svc auditService
	log *slog.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(svc auditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{svc: svc, log: logger.With("handler", "audit")}
}

// History handles GET /audit/{entityType}/{id}.
func (h *AuditHandler) History(w http.ResponseWriter, r *http.Request) {
	entityType := domain.EntityType(r.PathValue("entityType"))
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.svc.History(r.Context(), entityType, id, queryInt(r, "limit"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuditEntryResponses(entries))
}

// Recent handles GET /audit.
func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Recent(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuditEntryResponses(entries))
}

func toAuditEntryResponses(entries []domain.AuditEntry) []auditEntryResponse {
	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAuditEntryResponse(e))
	}
	return out
}

// queryInt parses an integer query parameter, returning 0 when absent or
// malformed. The service layer applies its own defaults and clamps.
func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}
