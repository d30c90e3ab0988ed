package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// CreateAnswer adds a generated answer row to a questionnaire project in
// PENDING status.
func (s *Service) CreateAnswer(ctx context.Context, input CreateAnswerInput, ident Identity) (domain.ProjectAnswer, error) {
	if err := input.Validate(); err != nil {
		return domain.ProjectAnswer{}, err
	}

	now := time.Now()
	answer := domain.ProjectAnswer{
		ID:         uuid.New(),
		ProjectID:  input.ProjectID,
		Question:   input.Question,
		Answer:     input.Answer,
		Confidence: input.Confidence,
		Status:     domain.AnswerStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.answers.Create(txCtx, answer); err != nil {
			return fmt.Errorf("create answer: %w", err)
		}

		entry := auditEntry(domain.AuditActionCreated, domain.EntityTypeAnswer, answer.ID, answer.Question, ident)
		entry.Metadata = map[string]any{"project_id": input.ProjectID.String()}
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.ProjectAnswer{}, err
	}

	return answer, nil
}

// GetAnswer returns a single project answer.
func (s *Service) GetAnswer(ctx context.Context, id uuid.UUID) (domain.ProjectAnswer, error) {
	if id == uuid.Nil {
		return domain.ProjectAnswer{}, domain.NewValidationError("id", "required")
	}
	answer, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return domain.ProjectAnswer{}, fmt.Errorf("get answer: %w", err)
	}
	return answer, nil
}

// ListProjectAnswers returns all answers of a project in creation order.
func (s *Service) ListProjectAnswers(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectAnswer, error) {
	if projectID == uuid.Nil {
		return nil, domain.NewValidationError("project_id", "required")
	}
	return s.answers.ListByProject(ctx, projectID)
}

// EditAnswer applies a human correction to the answer text. The first edit
// captures the AI answer into its shadow; editing back to the original keeps
// the shadow but the answer no longer counts as corrected.
func (s *Service) EditAnswer(ctx context.Context, id uuid.UUID, input EditAnswerInput, ident Identity) (domain.ProjectAnswer, error) {
	if id == uuid.Nil {
		return domain.ProjectAnswer{}, domain.NewValidationError("id", "required")
	}
	if err := input.Validate(); err != nil {
		return domain.ProjectAnswer{}, err
	}

	before, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return domain.ProjectAnswer{}, fmt.Errorf("get answer: %w", err)
	}
	if before.Status.Terminal() {
		return domain.ProjectAnswer{}, domain.NewTransitionError(string(before.Status), string(before.Status))
	}

	now := time.Now()
	after := before.ApplyEdit(input.Answer, now)

	changes := domain.DiffAnswers(before, after)
	if len(changes) == 0 {
		return before, nil
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.answers.UpdateAnswer(txCtx, after); err != nil {
			return fmt.Errorf("update answer: %w", err)
		}

		entry := auditEntry(domain.AuditActionUpdated, domain.EntityTypeAnswer, id, before.Question, ident)
		entry.Changes = changes
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.ProjectAnswer{}, err
	}

	s.log.InfoContext(ctx, "answer edited", slog.String("answer_id", id.String()))
	return after, nil
}

// ApproveAnswer accepts the answer as-is. Approving an already-APPROVED
// answer is an idempotent no-op.
func (s *Service) ApproveAnswer(ctx context.Context, id uuid.UUID, ident Identity) (domain.ProjectAnswer, error) {
	return s.transitionAnswer(ctx, id, domain.AnswerStatusApproved, domain.AuditActionApproved, ident)
}

// CorrectAnswer applies a correction and settles the answer as CORRECTED in
// one step.
func (s *Service) CorrectAnswer(ctx context.Context, id uuid.UUID, input EditAnswerInput, ident Identity) (domain.ProjectAnswer, error) {
	if id == uuid.Nil {
		return domain.ProjectAnswer{}, domain.NewValidationError("id", "required")
	}
	if err := input.Validate(); err != nil {
		return domain.ProjectAnswer{}, err
	}

	before, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return domain.ProjectAnswer{}, fmt.Errorf("get answer: %w", err)
	}
	if !before.Status.CanTransition(domain.AnswerStatusCorrected) {
		return domain.ProjectAnswer{}, domain.NewTransitionError(string(before.Status), string(domain.AnswerStatusCorrected))
	}

	now := time.Now()
	after := before.ApplyEdit(input.Answer, now)
	after.Status = domain.AnswerStatusCorrected
	after.ReviewedAt = &now

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.answers.UpdateAnswer(txCtx, after); err != nil {
			return fmt.Errorf("update answer: %w", err)
		}
		if before.Status != domain.AnswerStatusCorrected {
			if err := s.answers.UpdateStatusIf(txCtx, id, before.Status, domain.AnswerStatusCorrected, now); err != nil {
				return fmt.Errorf("update status: %w", err)
			}
		}

		entry := auditEntry(domain.AuditActionCorrected, domain.EntityTypeAnswer, id, before.Question, ident)
		entry.Changes = domain.DiffAnswers(before, after)
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.ProjectAnswer{}, err
	}

	s.log.InfoContext(ctx, "answer corrected", slog.String("answer_id", id.String()))
	return after, nil
}

// MarkClarificationUsed records that the reviewer consumed the model's
// clarification for this answer. The first side-interaction auto-flags an
// unflagged answer so it shows up for review. Marking twice is an idempotent
// no-op.
func (s *Service) MarkClarificationUsed(ctx context.Context, id uuid.UUID, ident Identity) error {
	if id == uuid.Nil {
		return domain.NewValidationError("id", "required")
	}

	answer, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get answer: %w", err)
	}
	if answer.ClarificationUsed {
		return nil
	}

	now := time.Now()
	flagged, autoFlag := autoFlagOnFirstInteraction(answer.Attention, "clarification used", ident.Actor.Label(), now)

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.answers.SetClarificationUsed(txCtx, id, now); err != nil {
			return fmt.Errorf("set clarification used: %w", err)
		}
		if autoFlag {
			if err := s.answers.UpdateAttention(txCtx, id, flagged, now); err != nil {
				return fmt.Errorf("auto-flag answer: %w", err)
			}
		}

		entry := auditEntry(domain.AuditActionClarifyUsed, domain.EntityTypeAnswer, id, answer.Question, ident)
		if autoFlag {
			entry.Changes = attentionChanges(answer.Attention, flagged)
		}
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
}

// transitionAnswer performs a settling status change with transition
// validation and an idempotent no-op for same-status requests.
func (s *Service) transitionAnswer(ctx context.Context, id uuid.UUID, to domain.AnswerStatus, action domain.AuditAction, ident Identity) (domain.ProjectAnswer, error) {
	if id == uuid.Nil {
		return domain.ProjectAnswer{}, domain.NewValidationError("id", "required")
	}

	answer, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return domain.ProjectAnswer{}, fmt.Errorf("get answer: %w", err)
	}

	if answer.Status == to {
		return answer, nil
	}
	if !answer.Status.CanTransition(to) {
		return domain.ProjectAnswer{}, domain.NewTransitionError(string(answer.Status), string(to))
	}

	now := time.Now()
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.answers.UpdateStatusIf(txCtx, id, answer.Status, to, now); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		entry := auditEntry(action, domain.EntityTypeAnswer, id, answer.Question, ident)
		entry.Changes = domain.ChangeSet{
			"status": {Before: string(answer.Status), After: string(to)},
		}
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.ProjectAnswer{}, err
	}

	s.log.InfoContext(ctx, "answer status changed",
		slog.String("answer_id", id.String()),
		slog.String("from", string(answer.Status)),
		slog.String("to", string(to)),
	)

	answer.Status = to
	answer.UpdatedAt = now
	if to.Terminal() {
		answer.ReviewedAt = &now
	}
	return answer, nil
}
