package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// Analyze runs the full generation cycle for a contract: the PENDING ->
// ANALYZING move, the model call, and the ANALYZING -> ANALYZED save. At
// most one generation is in flight per contract; a failed model call rolls
// the status back to PENDING and records the failure in the audit log.
func (s *Service) Analyze(ctx context.Context, id uuid.UUID, ident Identity) (domain.ContractReview, error) {
	if id == uuid.Nil {
		return domain.ContractReview{}, domain.NewValidationError("id", "required")
	}

	if !s.guard.tryAcquire(id) {
		return domain.ContractReview{}, fmt.Errorf("contract %s: %w", id, domain.ErrAlreadyInProgress)
	}
	defer s.guard.release(id)

	review, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return domain.ContractReview{}, fmt.Errorf("get contract: %w", err)
	}

	switch review.Status {
	case domain.ReviewStatusPending:
		// proceed
	case domain.ReviewStatusAnalyzing:
		return domain.ContractReview{}, fmt.Errorf("contract %s: %w", id, domain.ErrAlreadyInProgress)
	default:
		return domain.ContractReview{}, domain.NewTransitionError(string(review.Status), string(domain.ReviewStatusAnalyzing))
	}

	now := time.Now()
	if err := s.contracts.UpdateStatusIf(ctx, id, domain.ReviewStatusPending, domain.ReviewStatusAnalyzing, now); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ContractReview{}, fmt.Errorf("contract %s: %w", id, domain.ErrAlreadyInProgress)
		}
		return domain.ContractReview{}, fmt.Errorf("start analysis: %w", err)
	}

	startEntry := auditEntry(domain.AuditActionStatusChanged, domain.EntityTypeContract, id, review.Title, ident)
	startEntry.Changes = domain.ChangeSet{
		"status": {Before: string(domain.ReviewStatusPending), After: string(domain.ReviewStatusAnalyzing)},
	}
	s.audit.RecordBestEffort(ctx, startEntry)

	result, err := s.analyzer.Analyze(ctx, review.Title, review.Content)
	if err != nil {
		s.failAnalysis(ctx, review, ident, err)
		return domain.ContractReview{}, fmt.Errorf("analyze contract %s: %w", id, err)
	}

	findings := s.buildFindings(ctx, id, result)

	saveAt := time.Now()
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.contracts.SaveAnalysis(txCtx, id, result.Summary, result.Rating, findings, saveAt); err != nil {
			return fmt.Errorf("save analysis: %w", err)
		}

		entry := auditEntry(domain.AuditActionStatusChanged, domain.EntityTypeContract, id, review.Title, ident)
		entry.Changes = domain.ChangeSet{
			"status": {Before: string(domain.ReviewStatusAnalyzing), After: string(domain.ReviewStatusAnalyzed)},
		}
		entry.Metadata = map[string]any{
			"risk_rating": string(result.Rating),
			"findings":    len(findings),
		}
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.failAnalysis(ctx, review, ident, err)
		return domain.ContractReview{}, err
	}

	s.log.InfoContext(ctx, "contract analyzed",
		slog.String("contract_id", id.String()),
		slog.String("risk_rating", string(result.Rating)),
		slog.Int("findings", len(findings)),
	)

	analyzed, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return domain.ContractReview{}, fmt.Errorf("reload contract: %w", err)
	}
	return analyzed, nil
}

// failAnalysis rolls a failed generation back to PENDING and records the
// failure. Both steps are best-effort: the original failure is what the
// caller sees.
func (s *Service) failAnalysis(ctx context.Context, review domain.ContractReview, ident Identity, cause error) {
	now := time.Now()
	if err := s.contracts.UpdateStatusIf(ctx, review.ID, domain.ReviewStatusAnalyzing, domain.ReviewStatusPending, now); err != nil {
		s.log.ErrorContext(ctx, "analysis rollback failed",
			slog.String("contract_id", review.ID.String()),
			slog.Any("error", err),
		)
	}

	entry := auditEntry(domain.AuditActionUpdated, domain.EntityTypeContract, review.ID, review.Title, ident)
	entry.Changes = domain.ChangeSet{
		"status": {Before: string(domain.ReviewStatusAnalyzing), After: string(domain.ReviewStatusPending)},
	}
	metadata := map[string]any{"failure": cause.Error()}
	var genErr *domain.GenerationError
	if errors.As(cause, &genErr) {
		metadata["failure_kind"] = string(genErr.Kind)
	}
	entry.Metadata = metadata
	s.audit.RecordBestEffort(ctx, entry)

	s.log.WarnContext(ctx, "contract analysis failed",
		slog.String("contract_id", review.ID.String()),
		slog.Any("error", cause),
	)
}

// buildFindings converts the generation output into persistable findings,
// truncating past the configured cap.
func (s *Service) buildFindings(ctx context.Context, contractID uuid.UUID, result *domain.AnalysisResult) []domain.Finding {
	raw := result.Findings
	if s.cfg.MaxFindings > 0 && len(raw) > s.cfg.MaxFindings {
		s.log.WarnContext(ctx, "analysis findings truncated",
			slog.String("contract_id", contractID.String()),
			slog.Int("produced", len(raw)),
			slog.Int("kept", s.cfg.MaxFindings),
		)
		raw = raw[:s.cfg.MaxFindings]
	}

	now := time.Now()
	findings := make([]domain.Finding, len(raw))
	for i, f := range raw {
		findings[i] = domain.Finding{
			ID:                uuid.New(),
			ContractID:        contractID,
			Category:          f.Category,
			ClauseText:        f.ClauseText,
			Rating:            f.Rating,
			Rationale:         f.Rationale,
			SuggestedResponse: f.SuggestedResponse,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
	}
	return findings
}
