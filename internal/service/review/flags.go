package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// SetContractFlag flags or unflags a contract review. Re-flagging a resolved
// item reopens it; unflagging keeps the historical flag timestamps.
func (s *Service) SetContractFlag(ctx context.Context, id uuid.UUID, input FlagInput, ident Identity) (domain.Attention, error) {
	review, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return domain.Attention{}, fmt.Errorf("get contract: %w", err)
	}

	now := time.Now()
	att := review.Attention.WithFlag(input.Flagged, input.Note, ident.Actor.Label(), now)

	err = s.updateContractAttention(ctx, id, review.Title, review.Attention, att, domain.AuditActionUpdated, ident, now)
	if err != nil {
		return domain.Attention{}, err
	}
	return att, nil
}

// ResolveContractFlag marks a contract's flag as resolved, or reopens a
// prior resolution when input.Resolved is false. The item stays flagged
// either way; only the resolution sub-state changes.
func (s *Service) ResolveContractFlag(ctx context.Context, id uuid.UUID, input ResolveFlagInput, ident Identity) (domain.Attention, error) {
	review, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return domain.Attention{}, fmt.Errorf("get contract: %w", err)
	}
	if !review.Attention.Flag.Flagged {
		return domain.Attention{}, domain.NewValidationError("flag", "contract is not flagged")
	}

	now := time.Now()
	att := review.Attention.WithResolution(input.Resolved, input.Note, ident.Actor.Label(), now)

	err = s.updateContractAttention(ctx, id, review.Title, review.Attention, att, domain.AuditActionFlagResolved, ident, now)
	if err != nil {
		return domain.Attention{}, err
	}
	return att, nil
}

// SetContractQueue queues or dequeues a contract for a reviewer.
func (s *Service) SetContractQueue(ctx context.Context, id uuid.UUID, input QueueInput, ident Identity) (domain.Attention, error) {
	review, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return domain.Attention{}, fmt.Errorf("get contract: %w", err)
	}

	now := time.Now()
	att := review.Attention.WithQueue(input.Queued, input.Note, input.ReviewerID, input.ReviewerName, ident.Actor.Label(), now)

	err = s.updateContractAttention(ctx, id, review.Title, review.Attention, att, domain.AuditActionUpdated, ident, now)
	if err != nil {
		return domain.Attention{}, err
	}
	return att, nil
}

// SetAnswerFlag flags or unflags a project answer.
func (s *Service) SetAnswerFlag(ctx context.Context, id uuid.UUID, input FlagInput, ident Identity) (domain.Attention, error) {
	answer, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return domain.Attention{}, fmt.Errorf("get answer: %w", err)
	}

	now := time.Now()
	att := answer.Attention.WithFlag(input.Flagged, input.Note, ident.Actor.Label(), now)

	err = s.updateAnswerAttention(ctx, id, answer.Question, answer.Attention, att, domain.AuditActionUpdated, ident, now)
	if err != nil {
		return domain.Attention{}, err
	}
	return att, nil
}

// ResolveAnswerFlag marks an answer's flag as resolved, or reopens a prior
// resolution when input.Resolved is false.
func (s *Service) ResolveAnswerFlag(ctx context.Context, id uuid.UUID, input ResolveFlagInput, ident Identity) (domain.Attention, error) {
	answer, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return domain.Attention{}, fmt.Errorf("get answer: %w", err)
	}
	if !answer.Attention.Flag.Flagged {
		return domain.Attention{}, domain.NewValidationError("flag", "answer is not flagged")
	}

	now := time.Now()
	att := answer.Attention.WithResolution(input.Resolved, input.Note, ident.Actor.Label(), now)

	err = s.updateAnswerAttention(ctx, id, answer.Question, answer.Attention, att, domain.AuditActionFlagResolved, ident, now)
	if err != nil {
		return domain.Attention{}, err
	}
	return att, nil
}

// SetAnswerQueue queues or dequeues a project answer for a reviewer.
func (s *Service) SetAnswerQueue(ctx context.Context, id uuid.UUID, input QueueInput, ident Identity) (domain.Attention, error) {
	answer, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return domain.Attention{}, fmt.Errorf("get answer: %w", err)
	}

	now := time.Now()
	att := answer.Attention.WithQueue(input.Queued, input.Note, input.ReviewerID, input.ReviewerName, ident.Actor.Label(), now)

	err = s.updateAnswerAttention(ctx, id, answer.Question, answer.Attention, att, domain.AuditActionUpdated, ident, now)
	if err != nil {
		return domain.Attention{}, err
	}
	return att, nil
}

func (s *Service) updateContractAttention(ctx context.Context, id uuid.UUID, label string, before, after domain.Attention, action domain.AuditAction, ident Identity, now time.Time) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.contracts.UpdateAttention(txCtx, id, after, now); err != nil {
			return fmt.Errorf("update attention: %w", err)
		}

		entry := auditEntry(action, domain.EntityTypeContract, id, label, ident)
		entry.Changes = attentionChanges(before, after)
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "contract attention updated",
		slog.String("contract_id", id.String()),
		slog.String("action", string(action)),
	)
	return nil
}

func (s *Service) updateAnswerAttention(ctx context.Context, id uuid.UUID, label string, before, after domain.Attention, action domain.AuditAction, ident Identity, now time.Time) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.answers.UpdateAttention(txCtx, id, after, now); err != nil {
			return fmt.Errorf("update attention: %w", err)
		}

		entry := auditEntry(action, domain.EntityTypeAnswer, id, label, ident)
		entry.Changes = attentionChanges(before, after)
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "answer attention updated",
		slog.String("answer_id", id.String()),
		slog.String("action", string(action)),
	)
	return nil
}

// autoFlagOnFirstInteraction flags an item the first time a side-interaction
// touches it. Already-flagged items are left alone, so repeat interactions
// are idempotent.
func autoFlagOnFirstInteraction(att domain.Attention, reason, actor string, now time.Time) (domain.Attention, bool) {
	if att.Flag.Flagged {
		return att, false
	}
	return att.WithFlag(true, &reason, actor, now), true
}

// attentionChanges diffs the boolean sub-state switches for the audit trail.
func attentionChanges(before, after domain.Attention) domain.ChangeSet {
	beforeSnap := domain.Snapshot{
		"flagged":       before.Flag.Flagged,
		"flag_resolved": before.Flag.FlagResolved,
		"queued":        before.Queue.Queued,
	}
	afterSnap := domain.Snapshot{
		"flagged":       after.Flag.Flagged,
		"flag_resolved": after.Flag.FlagResolved,
		"queued":        after.Queue.Queued,
	}
	return domain.Diff(beforeSnap, afterSnap, []string{"flagged", "flag_resolved", "queued"})
}
