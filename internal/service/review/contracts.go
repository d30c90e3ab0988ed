package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// CreateContract registers a contract for review in PENDING status.
func (s *Service) CreateContract(ctx context.Context, input CreateContractInput, ident Identity) (domain.ContractReview, error) {
	if err := input.Validate(); err != nil {
		return domain.ContractReview{}, err
	}

	now := time.Now()
	review := domain.ContractReview{
		ID:        uuid.New(),
		Title:     input.Title,
		Content:   input.Content,
		Status:    domain.ReviewStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.contracts.Create(txCtx, review); err != nil {
			return fmt.Errorf("create contract: %w", err)
		}

		entry := auditEntry(domain.AuditActionCreated, domain.EntityTypeContract, review.ID, review.Title, ident)
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.ContractReview{}, err
	}

	s.log.InfoContext(ctx, "contract registered",
		slog.String("contract_id", review.ID.String()),
		slog.String("title", review.Title),
	)
	return review, nil
}

// GetContract returns a contract review with its findings.
func (s *Service) GetContract(ctx context.Context, id uuid.UUID) (domain.ContractReview, error) {
	if id == uuid.Nil {
		return domain.ContractReview{}, domain.NewValidationError("id", "required")
	}
	review, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return domain.ContractReview{}, fmt.Errorf("get contract: %w", err)
	}
	return review, nil
}

// ListContracts returns all contract reviews, most recently updated first.
func (s *Service) ListContracts(ctx context.Context) ([]domain.ContractReview, error) {
	return s.contracts.List(ctx)
}

// EditFinding applies a human edit to a finding. The first edit of each field
// captures the AI-generated value into its shadow; the audit entry records
// the before/after diff of what actually changed.
func (s *Service) EditFinding(ctx context.Context, findingID uuid.UUID, input FindingEditInput, ident Identity) (domain.Finding, error) {
	if findingID == uuid.Nil {
		return domain.Finding{}, domain.NewValidationError("finding_id", "required")
	}
	if err := input.Validate(); err != nil {
		return domain.Finding{}, err
	}

	before, err := s.contracts.GetFinding(ctx, findingID)
	if err != nil {
		return domain.Finding{}, fmt.Errorf("get finding: %w", err)
	}

	now := time.Now()
	after := before.Apply(domain.FindingEdit{
		Rating:            input.Rating,
		Rationale:         input.Rationale,
		SuggestedResponse: input.SuggestedResponse,
	}, now)

	changes := domain.DiffFindings(before, after)
	if len(changes) == 0 {
		// Nothing actually changed; skip persistence and audit.
		return before, nil
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.contracts.UpdateFinding(txCtx, after); err != nil {
			return fmt.Errorf("update finding: %w", err)
		}

		entry := auditEntry(domain.AuditActionUpdated, domain.EntityTypeFinding, after.ID, after.Category, ident)
		entry.Changes = changes
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Finding{}, err
	}

	s.log.InfoContext(ctx, "finding edited",
		slog.String("finding_id", after.ID.String()),
		slog.Int("changed_fields", len(changes)),
	)
	return after, nil
}

// AddFinding manually attaches a finding the model missed. Manual findings
// carry no shadow fields and survive re-analysis.
func (s *Service) AddFinding(ctx context.Context, contractID uuid.UUID, input AddFindingInput, ident Identity) (domain.Finding, error) {
	if contractID == uuid.Nil {
		return domain.Finding{}, domain.NewValidationError("contract_id", "required")
	}
	if err := input.Validate(); err != nil {
		return domain.Finding{}, err
	}

	review, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return domain.Finding{}, fmt.Errorf("get contract: %w", err)
	}
	if len(review.Findings) >= s.cfg.MaxFindings {
		return domain.Finding{}, domain.NewValidationError("findings", "contract finding limit reached")
	}

	now := time.Now()
	finding := domain.Finding{
		ID:                uuid.New(),
		ContractID:        contractID,
		Category:          input.Category,
		ClauseText:        input.ClauseText,
		Rating:            input.Rating,
		Rationale:         input.Rationale,
		SuggestedResponse: input.SuggestedResponse,
		IsManuallyAdded:   true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.contracts.InsertFinding(txCtx, finding); err != nil {
			return fmt.Errorf("insert finding: %w", err)
		}

		entry := auditEntry(domain.AuditActionCreated, domain.EntityTypeFinding, finding.ID, finding.Category, ident)
		entry.Metadata = map[string]any{
			"contract_id":       contractID.String(),
			"is_manually_added": true,
		}
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Finding{}, err
	}

	return finding, nil
}

// CompleteReview moves an ANALYZED contract to REVIEWED. Completing an
// already-REVIEWED contract is an idempotent no-op.
func (s *Service) CompleteReview(ctx context.Context, id uuid.UUID, ident Identity) (domain.ContractReview, error) {
	return s.transitionContract(ctx, id, domain.ReviewStatusReviewed, domain.AuditActionApproved, ident)
}

// RequestReanalysis returns an ANALYZED contract to PENDING so it can be
// analyzed again. Findings stay in place until the next analysis replaces
// the AI-generated ones.
func (s *Service) RequestReanalysis(ctx context.Context, id uuid.UUID, ident Identity) (domain.ContractReview, error) {
	return s.transitionContract(ctx, id, domain.ReviewStatusPending, domain.AuditActionRefreshed, ident)
}

// transitionContract performs a human-driven status change with transition
// validation, an idempotent no-op for same-status requests, and an audit
// entry carrying the status diff.
func (s *Service) transitionContract(ctx context.Context, id uuid.UUID, to domain.ReviewStatus, action domain.AuditAction, ident Identity) (domain.ContractReview, error) {
	if id == uuid.Nil {
		return domain.ContractReview{}, domain.NewValidationError("id", "required")
	}

	review, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return domain.ContractReview{}, fmt.Errorf("get contract: %w", err)
	}

	if review.Status == to {
		return review, nil
	}
	if !review.Status.CanTransition(to) {
		return domain.ContractReview{}, domain.NewTransitionError(string(review.Status), string(to))
	}

	now := time.Now()
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if to == domain.ReviewStatusReviewed {
			if err := s.contracts.SetReviewed(txCtx, id, now); err != nil {
				return fmt.Errorf("set reviewed: %w", err)
			}
		} else {
			if err := s.contracts.UpdateStatusIf(txCtx, id, review.Status, to, now); err != nil {
				return fmt.Errorf("update status: %w", err)
			}
		}

		entry := auditEntry(action, domain.EntityTypeContract, id, review.Title, ident)
		entry.Changes = domain.ChangeSet{
			"status": {Before: string(review.Status), After: string(to)},
		}
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.ContractReview{}, err
	}

	s.log.InfoContext(ctx, "contract status changed",
		slog.String("contract_id", id.String()),
		slog.String("from", string(review.Status)),
		slog.String("to", string(to)),
	)

	review.Status = to
	review.UpdatedAt = now
	if to == domain.ReviewStatusReviewed {
		review.ReviewedAt = &now
		s.dispatchNotification(ctx, domain.NotificationEvent{
			Type:        domain.NotificationReviewCompleted,
			EntityType:  domain.EntityTypeContract,
			EntityID:    id,
			EntityLabel: review.Title,
			Actor:       ident.Actor.Label(),
			OccurredAt:  now,
		})
	}
	return review, nil
}

// DeleteContract removes a contract review and its findings. The audit entry
// keeps a final snapshot of what was deleted.
func (s *Service) DeleteContract(ctx context.Context, id uuid.UUID, ident Identity) error {
	if id == uuid.Nil {
		return domain.NewValidationError("id", "required")
	}

	review, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get contract: %w", err)
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.contracts.Delete(txCtx, id); err != nil {
			return fmt.Errorf("delete contract: %w", err)
		}

		entry := auditEntry(domain.AuditActionDeleted, domain.EntityTypeContract, id, review.Title, ident)
		entry.Metadata = map[string]any{
			"status":   string(review.Status),
			"findings": len(review.Findings),
		}
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
}
