// Package audit implements the audit trail business logic.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type auditRepo interface {
	Create(ctx context.Context, entry domain.AuditEntry) error
	ListByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditEntry, error)
	ListRecent(ctx context.Context, limit, offset int) ([]domain.AuditEntry, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements audit trail recording and reads.
type Service struct {
	repo auditRepo
	log  *slog.Logger
}

// NewService creates a new audit service.
func NewService(log *slog.Logger, repo auditRepo) *Service {
	return &Service{
		repo: repo,
		log:  log.With("service", "audit"),
	}
}

// Record appends an audit entry, stamping ID and CreatedAt when unset.
// Use inside a transaction when the entry must not outlive a rolled-back
// operation.
func (s *Service) Record(ctx context.Context, entry domain.AuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if !entry.Action.IsValid() {
		return domain.NewValidationError("action", fmt.Sprintf("unknown audit action %q", entry.Action))
	}
	if !entry.EntityType.IsValid() {
		return domain.NewValidationError("entity_type", fmt.Sprintf("unknown entity type %q", entry.EntityType))
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

// RecordBestEffort appends an audit entry outside any transaction. A failed
// write is logged and swallowed so it never fails the surrounding operation.
func (s *Service) RecordBestEffort(ctx context.Context, entry domain.AuditEntry) {
	if err := s.Record(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "audit write failed",
			slog.String("action", string(entry.Action)),
			slog.String("entity_type", string(entry.EntityType)),
			slog.String("entity_id", entry.EntityID.String()),
			slog.Any("error", err),
		)
	}
}

// History returns the change history of one entity, newest first.
func (s *Service) History(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	if !entityType.IsValid() {
		return nil, domain.NewValidationError("entity_type", fmt.Sprintf("unknown entity type %q", entityType))
	}
	if entityID == uuid.Nil {
		return nil, domain.NewValidationError("entity_id", "must not be empty")
	}
	limit = clampLimit(limit)

	entries, err := s.repo.ListByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit history: %w", err)
	}
	return entries, nil
}

// Recent returns the most recent audit entries across all entities.
func (s *Service) Recent(ctx context.Context, limit, offset int) ([]domain.AuditEntry, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	entries, err := s.repo.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recent audit entries: %w", err)
	}
	return entries, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
