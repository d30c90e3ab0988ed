// Package answer implements the project answer repository using PostgreSQL.
package answer

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/adapter/postgres"
	"github.com/verityhq/dealdesk-backend/internal/domain"
)

const answersTable = "project_answers"

var answerColumns = append(
	[]string{
		"id", "project_id", "question", "answer", "confidence", "status",
		"user_edited_answer", "original_answer", "clarification_used",
	},
	append(postgres.AttentionColumns(),
		"created_at", "reviewed_at", "updated_at")...,
)

// Repo provides project answer persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new project answer repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

func (r *Repo) q(ctx context.Context) postgres.Querier {
	return postgres.QuerierFromCtx(ctx, r.db)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new project answer row.
func (r *Repo) Create(ctx context.Context, a domain.ProjectAnswer) error {
	setMap := map[string]any{
		"id":                 a.ID,
		"project_id":         a.ProjectID,
		"question":           a.Question,
		"answer":             a.Answer,
		"confidence":         a.Confidence,
		"status":             string(a.Status),
		"user_edited_answer": a.UserEditedAnswer,
		"original_answer":    a.OriginalAnswer,
		"clarification_used": a.ClarificationUsed,
		"created_at":         a.CreatedAt,
		"reviewed_at":        a.ReviewedAt,
		"updated_at":         a.UpdatedAt,
	}
	for col, val := range postgres.AttentionSetMap(a.Attention) {
		setMap[col] = val
	}

	sql, args, err := postgres.Builder().
		Insert(answersTable).
		SetMap(setMap).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert answer: %w", err)
	}

	if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "answer", a.ID)
	}
	return nil
}

// UpdateAnswer persists a human edit: the edited text and the capture-once
// original already decided by the domain layer.
func (r *Repo) UpdateAnswer(ctx context.Context, a domain.ProjectAnswer) error {
	sql, args, err := postgres.Builder().
		Update(answersTable).
		Set("user_edited_answer", a.UserEditedAnswer).
		Set("original_answer", a.OriginalAnswer).
		Set("updated_at", a.UpdatedAt).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update answer: %w", err)
	}

	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "answer", a.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("answer %s: %w", a.ID, domain.ErrNotFound)
	}
	return nil
}

// UpdateStatusIf moves the answer from one status to another only when the
// current status matches. Terminal statuses stamp reviewed_at.
// Returns domain.ErrConflict when the row exists in a different status,
// domain.ErrNotFound when it does not exist.
func (r *Repo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to domain.AnswerStatus, now time.Time) error {
	update := postgres.Builder().
		Update(answersTable).
		Set("status", string(to)).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": string(from)})
	if to.Terminal() {
		update = update.Set("reviewed_at", now)
	}

	sql, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build update answer status: %w", err)
	}

	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "answer", id)
	}
	if tag.RowsAffected() == 0 {
		return r.statusMismatch(ctx, id, from)
	}
	return nil
}

func (r *Repo) statusMismatch(ctx context.Context, id uuid.UUID, from domain.AnswerStatus) error {
	var current string
	err := pgxscan.Get(ctx, r.q(ctx), &current,
		"SELECT status FROM "+answersTable+" WHERE id = $1", id)
	if err != nil {
		return postgres.MapError(err, "answer", id)
	}
	return fmt.Errorf("answer %s is %s, not %s: %w", id, current, from, domain.ErrConflict)
}

// UpdateAttention overwrites the full flag/queue sub-state of an answer.
// Last writer wins at the row level.
func (r *Repo) UpdateAttention(ctx context.Context, id uuid.UUID, att domain.Attention, now time.Time) error {
	sql, args, err := postgres.Builder().
		Update(answersTable).
		SetMap(postgres.AttentionSetMap(att)).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update answer attention: %w", err)
	}

	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "answer", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("answer %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetClarificationUsed marks the answer's clarification as consumed.
func (r *Repo) SetClarificationUsed(ctx context.Context, id uuid.UUID, now time.Time) error {
	sql, args, err := postgres.Builder().
		Update(answersTable).
		Set("clarification_used", true).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set clarification used: %w", err)
	}

	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "answer", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("answer %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a single answer by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.ProjectAnswer, error) {
	sql, args, err := postgres.Builder().
		Select(answerColumns...).
		From(answersTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.ProjectAnswer{}, fmt.Errorf("build get answer: %w", err)
	}

	var row answerRow
	if err := pgxscan.Get(ctx, r.q(ctx), &row, sql, args...); err != nil {
		return domain.ProjectAnswer{}, postgres.MapError(err, "answer", id)
	}
	return row.toDomain(), nil
}

// ListByProject returns all answers of a project in creation order.
func (r *Repo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectAnswer, error) {
	sql, args, err := postgres.Builder().
		Select(answerColumns...).
		From(answersTable).
		Where(squirrel.Eq{"project_id": projectID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list answers: %w", err)
	}

	var rows []answerRow
	if err := pgxscan.Select(ctx, r.q(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list answers for project %s: %w", projectID, err)
	}

	answers := make([]domain.ProjectAnswer, len(rows))
	for i, row := range rows {
		answers[i] = row.toDomain()
	}
	return answers, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers: rows -> domain
// ---------------------------------------------------------------------------

type answerRow struct {
	ID               uuid.UUID `db:"id"`
	ProjectID        uuid.UUID `db:"project_id"`
	Question         string    `db:"question"`
	Answer           string    `db:"answer"`
	Confidence       *float64  `db:"confidence"`
	Status           string    `db:"status"`
	UserEditedAnswer *string   `db:"user_edited_answer"`
	OriginalAnswer   *string   `db:"original_answer"`
	Clarification    bool      `db:"clarification_used"`

	postgres.AttentionRow

	CreatedAt  time.Time  `db:"created_at"`
	ReviewedAt *time.Time `db:"reviewed_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func (r answerRow) toDomain() domain.ProjectAnswer {
	return domain.ProjectAnswer{
		ID:                r.ID,
		ProjectID:         r.ProjectID,
		Question:          r.Question,
		Answer:            r.Answer,
		Confidence:        r.Confidence,
		Status:            domain.AnswerStatus(r.Status),
		Attention:         r.AttentionRow.ToDomain(),
		UserEditedAnswer:  r.UserEditedAnswer,
		OriginalAnswer:    r.OriginalAnswer,
		ClarificationUsed: r.Clarification,
		CreatedAt:         r.CreatedAt,
		ReviewedAt:        r.ReviewedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
