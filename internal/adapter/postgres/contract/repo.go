// Package contract implements the contract review repository using PostgreSQL.
package contract

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

const (
	contractsTable = "contract_reviews"
	findingsTable  = "findings"
)

var contractColumns = append(
	[]string{"id", "title", "content", "status", "summary", "risk_rating"},
	append(postgres.AttentionColumns(),
		"created_at", "analyzed_at", "reviewed_at", "updated_at")...,
)

var findingColumns = []string{
	"id", "contract_id", "category", "clause_text", "rating", "rationale",
	"suggested_response", "is_manually_added",
	"original_rating", "original_rationale", "original_suggested_response",
	"created_at", "updated_at",
}

// Repo provides contract review persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new contract review repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

func (r *Repo) q(ctx context.Context) postgres.Querier {
	return postgres.QuerierFromCtx(ctx, r.db)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new contract review row. Findings are not inserted here;
// they appear only after analysis or a manual add.
func (r *Repo) Create(ctx context.Context, review domain.ContractReview) error {
	setMap := map[string]any{
		"id":          review.ID,
		"title":       review.Title,
		"content":     review.Content,
		"status":      string(review.Status),
		"summary":     review.Summary,
		"risk_rating": ratingPtrToString(review.Rating),
		"created_at":  review.CreatedAt,
		"analyzed_at": review.AnalyzedAt,
		"reviewed_at": review.ReviewedAt,
		"updated_at":  review.UpdatedAt,
	}
	for col, val := range postgres.AttentionSetMap(review.Attention) {
		setMap[col] = val
	}

	sql, args, err := postgres.Builder().
		Insert(contractsTable).
		SetMap(setMap).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert contract: %w", err)
	}

	if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "contract", review.ID)
	}
	return nil
}

// UpdateStatusIf moves the review from one status to another only when the
// current status matches. Returns domain.ErrConflict when the row exists but
// is in a different status, domain.ErrNotFound when it does not exist.
func (r *Repo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to domain.ReviewStatus, now time.Time) error {
	sql, args, err := postgres.Builder().
		Update(contractsTable).
		Set("status", string(to)).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update status: %w", err)
	}

	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "contract", id)
	}
	if tag.RowsAffected() == 0 {
		return r.statusMismatch(ctx, id, from, to)
	}
	return nil
}

// statusMismatch distinguishes a missing row from a concurrent status change.
func (r *Repo) statusMismatch(ctx context.Context, id uuid.UUID, from, to domain.ReviewStatus) error {
	var current string
	err := pgxscan.Get(ctx, r.q(ctx), &current,
		"SELECT status FROM "+contractsTable+" WHERE id = $1", id)
	if err != nil {
		return postgres.MapError(err, "contract", id)
	}
	return fmt.Errorf("contract %s is %s, not %s: %w", id, current, from, domain.ErrConflict)
}

// SaveAnalysis persists a completed generation: summary, rating, the
// ANALYZING -> ANALYZED move, and the new AI findings. Manually added
// findings survive; prior AI findings are replaced.
// Callers run this inside a transaction.
func (r *Repo) SaveAnalysis(ctx context.Context, id uuid.UUID, summary string, rating domain.RiskRating, findings []domain.Finding, now time.Time) error {
	sql, args, err := postgres.Builder().
		Update(contractsTable).
		Set("summary", summary).
		Set("risk_rating", string(rating)).
		Set("status", string(domain.ReviewStatusAnalyzed)).
		Set("analyzed_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": string(domain.ReviewStatusAnalyzing)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save analysis: %w", err)
	}

	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "contract", id)
	}
	if tag.RowsAffected() == 0 {
		return r.statusMismatch(ctx, id, domain.ReviewStatusAnalyzing, domain.ReviewStatusAnalyzed)
	}

	delSQL, delArgs, err := postgres.Builder().
		Delete(findingsTable).
		Where(squirrel.Eq{"contract_id": id, "is_manually_added": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete stale findings: %w", err)
	}
	if _, err := r.q(ctx).Exec(ctx, delSQL, delArgs...); err != nil {
		return postgres.MapError(err, "contract", id)
	}

	for _, f := range findings {
		if err := r.InsertFinding(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// InsertFinding inserts a single finding row.
func (r *Repo) InsertFinding(ctx context.Context, f domain.Finding) error {
	sql, args, err := postgres.Builder().
		Insert(findingsTable).
		Columns(findingColumns...).
		Values(
			f.ID, f.ContractID, f.Category, f.ClauseText, string(f.Rating),
			f.Rationale, f.SuggestedResponse, f.IsManuallyAdded,
			ratingPtrToString(f.OriginalRating), f.OriginalRationale, f.OriginalSuggestedResponse,
			f.CreatedAt, f.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert finding: %w", err)
	}

	if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "finding", f.ID)
	}
	return nil
}

// UpdateFinding overwrites the editable fields of a finding, including the
// capture-once shadow values already decided by the domain layer.
func (r *Repo) UpdateFinding(ctx context.Context, f domain.Finding) error {
	sql, args, err := postgres.Builder().
		Update(findingsTable).
		Set("rating", string(f.Rating)).
		Set("rationale", f.Rationale).
		Set("suggested_response", f.SuggestedResponse).
		Set("original_rating", ratingPtrToString(f.OriginalRating)).
		Set("original_rationale", f.OriginalRationale).
		Set("original_suggested_response", f.OriginalSuggestedResponse).
		Set("updated_at", f.UpdatedAt).
		Where(squirrel.Eq{"id": f.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update finding: %w", err)
	}

	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "finding", f.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finding %s: %w", f.ID, domain.ErrNotFound)
	}
	return nil
}

// UpdateAttention overwrites the full flag/queue sub-state of a review.
// Last writer wins at the row level.
func (r *Repo) UpdateAttention(ctx context.Context, id uuid.UUID, att domain.Attention, now time.Time) error {
	sql, args, err := postgres.Builder().
		Update(contractsTable).
		SetMap(postgres.AttentionSetMap(att)).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update attention: %w", err)
	}

	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "contract", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("contract %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetReviewed moves an ANALYZED review to REVIEWED and stamps reviewed_at.
func (r *Repo) SetReviewed(ctx context.Context, id uuid.UUID, now time.Time) error {
	sql, args, err := postgres.Builder().
		Update(contractsTable).
		Set("status", string(domain.ReviewStatusReviewed)).
		Set("reviewed_at", now).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": string(domain.ReviewStatusAnalyzed)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set reviewed: %w", err)
	}

	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "contract", id)
	}
	if tag.RowsAffected() == 0 {
		return r.statusMismatch(ctx, id, domain.ReviewStatusAnalyzed, domain.ReviewStatusReviewed)
	}
	return nil
}

// Delete removes a review. Findings cascade at the database level.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := postgres.Builder().
		Delete(contractsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete contract: %w", err)
	}

	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "contract", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("contract %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ResetStuckAnalyses returns reviews stuck in ANALYZING since before cutoff
// back to PENDING, and reports which were reset.
func (r *Repo) ResetStuckAnalyses(ctx context.Context, cutoff, now time.Time) ([]uuid.UUID, error) {
	sql, args, err := postgres.Builder().
		Update(contractsTable).
		Set("status", string(domain.ReviewStatusPending)).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": string(domain.ReviewStatusAnalyzing)}).
		Where(squirrel.Lt{"updated_at": cutoff}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reset stuck analyses: %w", err)
	}

	var ids []uuid.UUID
	if err := pgxscan.Select(ctx, r.q(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("reset stuck analyses: %w", err)
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a review with its findings, ordered by creation time.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.ContractReview, error) {
	sql, args, err := postgres.Builder().
		Select(contractColumns...).
		From(contractsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.ContractReview{}, fmt.Errorf("build get contract: %w", err)
	}

	var row contractRow
	if err := pgxscan.Get(ctx, r.q(ctx), &row, sql, args...); err != nil {
		return domain.ContractReview{}, postgres.MapError(err, "contract", id)
	}

	findings, err := r.ListFindings(ctx, id)
	if err != nil {
		return domain.ContractReview{}, err
	}

	review := row.toDomain()
	review.Findings = findings
	return review, nil
}

// List returns all reviews without findings, most recently updated first.
func (r *Repo) List(ctx context.Context) ([]domain.ContractReview, error) {
	sql, args, err := postgres.Builder().
		Select(contractColumns...).
		From(contractsTable).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list contracts: %w", err)
	}

	var rows []contractRow
	if err := pgxscan.Select(ctx, r.q(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}

	reviews := make([]domain.ContractReview, len(rows))
	for i, row := range rows {
		reviews[i] = row.toDomain()
	}
	return reviews, nil
}

// ListFindings returns the findings of a review, oldest first.
func (r *Repo) ListFindings(ctx context.Context, contractID uuid.UUID) ([]domain.Finding, error) {
	sql, args, err := postgres.Builder().
		Select(findingColumns...).
		From(findingsTable).
		Where(squirrel.Eq{"contract_id": contractID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list findings: %w", err)
	}

	var rows []findingRow
	if err := pgxscan.Select(ctx, r.q(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list findings for contract %s: %w", contractID, err)
	}

	findings := make([]domain.Finding, len(rows))
	for i, row := range rows {
		findings[i] = row.toDomain()
	}
	return findings, nil
}

// GetFinding returns a single finding by ID.
func (r *Repo) GetFinding(ctx context.Context, id uuid.UUID) (domain.Finding, error) {
	sql, args, err := postgres.Builder().
		Select(findingColumns...).
		From(findingsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Finding{}, fmt.Errorf("build get finding: %w", err)
	}

	var row findingRow
	if err := pgxscan.Get(ctx, r.q(ctx), &row, sql, args...); err != nil {
		return domain.Finding{}, postgres.MapError(err, "finding", id)
	}
	return row.toDomain(), nil
}

// ---------------------------------------------------------------------------
// Mapping helpers: rows -> domain
// ---------------------------------------------------------------------------

type contractRow struct {
	ID         uuid.UUID `db:"id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	Status     string    `db:"status"`
	Summary    *string   `db:"summary"`
	RiskRating *string   `db:"risk_rating"`

	postgres.AttentionRow

	CreatedAt  time.Time  `db:"created_at"`
	AnalyzedAt *time.Time `db:"analyzed_at"`
	ReviewedAt *time.Time `db:"reviewed_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func (r contractRow) toDomain() domain.ContractReview {
	return domain.ContractReview{
		ID:         r.ID,
		Title:      r.Title,
		Content:    r.Content,
		Status:     domain.ReviewStatus(r.Status),
		Summary:    r.Summary,
		Rating:     stringToRatingPtr(r.RiskRating),
		Attention:  r.AttentionRow.ToDomain(),
		CreatedAt:  r.CreatedAt,
		AnalyzedAt: r.AnalyzedAt,
		ReviewedAt: r.ReviewedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type findingRow struct {
	ID                uuid.UUID `db:"id"`
	ContractID        uuid.UUID `db:"contract_id"`
	Category          string    `db:"category"`
	ClauseText        string    `db:"clause_text"`
	Rating            string    `db:"rating"`
	Rationale         string    `db:"rationale"`
	SuggestedResponse string    `db:"suggested_response"`
	IsManuallyAdded   bool      `db:"is_manually_added"`

	OriginalRating            *string `db:"original_rating"`
	OriginalRationale         *string `db:"original_rationale"`
	OriginalSuggestedResponse *string `db:"original_suggested_response"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r findingRow) toDomain() domain.Finding {
	return domain.Finding{
		ID:                        r.ID,
		ContractID:                r.ContractID,
		Category:                  r.Category,
		ClauseText:                r.ClauseText,
		Rating:                    domain.RiskRating(r.Rating),
		Rationale:                 r.Rationale,
		SuggestedResponse:         r.SuggestedResponse,
		IsManuallyAdded:           r.IsManuallyAdded,
		OriginalRating:            stringToRatingPtr(r.OriginalRating),
		OriginalRationale:         r.OriginalRationale,
		OriginalSuggestedResponse: r.OriginalSuggestedResponse,
		CreatedAt:                 r.CreatedAt,
		UpdatedAt:                 r.UpdatedAt,
	}
}

func ratingPtrToString(r *domain.RiskRating) *string {
	if r == nil {
		return nil
	}
	s := string(*r)
	return &s
}

func stringToRatingPtr(s *string) *domain.RiskRating {
	if s == nil {
		return nil
	}
	r := domain.RiskRating(*s)
	return &r
}
