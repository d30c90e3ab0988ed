package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// RequestAnswerReview escalates a PENDING answer to a human reviewer. The
// answer moves to REQUESTED, any queue assignment is cleared, and reviewers
// are notified best-effort. The returned bool reports whether the
// notification was confirmed delivered; a failed or slow dispatch never
// fails the request itself.
func (s *Service) RequestAnswerReview(ctx context.Context, id uuid.UUID, input ReviewRequestInput, ident Identity) (domain.ProjectAnswer, bool, error) {
	if id == uuid.Nil {
		return domain.ProjectAnswer{}, false, domain.NewValidationError("id", "required")
	}

	answer, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return domain.ProjectAnswer{}, false, fmt.Errorf("get answer: %w", err)
	}

	if answer.Status == domain.AnswerStatusRequested {
		return answer, false, nil
	}
	if !answer.Status.CanTransition(domain.AnswerStatusRequested) {
		return domain.ProjectAnswer{}, false, domain.NewTransitionError(string(answer.Status), string(domain.AnswerStatusRequested))
	}

	now := time.Now()
	cleared := answer.Attention.ClearQueue()

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.answers.UpdateStatusIf(txCtx, id, answer.Status, domain.AnswerStatusRequested, now); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if answer.Attention.Queue.Queued {
			if err := s.answers.UpdateAttention(txCtx, id, cleared, now); err != nil {
				return fmt.Errorf("clear queue: %w", err)
			}
		}

		entry := auditEntry(domain.AuditActionReviewRequested, domain.EntityTypeAnswer, id, answer.Question, ident)
		entry.Changes = domain.ChangeSet{
			"status": {Before: string(answer.Status), After: string(domain.AnswerStatusRequested)},
		}
		if input.Note != nil || input.AssignedReviewer != nil {
			entry.Metadata = map[string]any{}
			if input.Note != nil {
				entry.Metadata["note"] = *input.Note
			}
			if input.AssignedReviewer != nil {
				entry.Metadata["assigned_reviewer"] = *input.AssignedReviewer
			}
		}
		if err := s.audit.Record(txCtx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.ProjectAnswer{}, false, err
	}

	s.log.InfoContext(ctx, "answer review requested", slog.String("answer_id", id.String()))

	event := domain.NotificationEvent{
		Type:        domain.NotificationReviewRequested,
		EntityType:  domain.EntityTypeAnswer,
		EntityID:    id,
		EntityLabel: answer.Question,
		Actor:       ident.Actor.Label(),
		OccurredAt:  now,
	}
	if input.Note != nil {
		event.Note = *input.Note
	}
	if input.AssignedReviewer != nil {
		event.Assignee = *input.AssignedReviewer
	}
	notified := s.dispatchNotification(ctx, event)

	answer.Status = domain.AnswerStatusRequested
	answer.Attention = cleared
	answer.UpdatedAt = now
	return answer, notified, nil
}

// dispatchNotification sends the event in the background and waits for the
// result only up to NotifyAwaitTimeout. The delivery itself runs detached
// from the request's cancellation so an impatient caller does not abort it.
// Returns true only when delivery was confirmed within the await window.
func (s *Service) dispatchNotification(ctx context.Context, event domain.NotificationEvent) bool {
	if !s.notify.Enabled() {
		return false
	}

	done := make(chan error, 1)
	go func() {
		done <- s.notify.Notify(context.WithoutCancel(ctx), event)
	}()

	select {
	case err := <-done:
		if err != nil {
			s.log.WarnContext(ctx, "notification dispatch failed",
				slog.String("type", event.Type),
				slog.String("entity_id", event.EntityID.String()),
				slog.Any("error", err),
			)
			return false
		}
		return true
	case <-time.After(s.cfg.NotifyAwaitTimeout):
		s.log.InfoContext(ctx, "notification dispatch still running, detaching",
			slog.String("type", event.Type),
			slog.String("entity_id", event.EntityID.String()),
		)
		return false
	}
}
