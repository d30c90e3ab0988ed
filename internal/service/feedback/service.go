// Package feedback reconstructs what AI output was overridden by humans, for
// prompt-improvement consumption downstream.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// Feedback record categories.
const (
	CategoryAIMissed         = "ai_missed"
	CategoryResponseEdited   = "response_edited"
	CategoryRatingChanged    = "rating_changed"
	CategoryRationaleChanged = "rationale_changed"
)

// defaultClauseLimit caps the clause text carried per record; longer clauses
// are truncated with an ellipsis marker.
const defaultClauseLimit = 200

// Record is one piece of human-override feedback extracted from a finding.
// A finding may produce several records, one per category it matches.
type Record struct {
	FindingID  uuid.UUID `json:"finding_id"`
	Category   string    `json:"category"`
	FindingTag string    `json:"finding_category"`
	ClauseText string    `json:"clause_text"`
	Original   string    `json:"original,omitempty"`
	Corrected  string    `json:"corrected,omitempty"`
	Rationale  string    `json:"rationale,omitempty"`
}

// Stats aggregates the override counts across all findings of one contract.
type Stats struct {
	TotalFindings     int `json:"total_findings"`
	AIGenerated       int `json:"ai_generated"`
	ManuallyAdded     int `json:"manually_added"`
	ResponsesEdited   int `json:"responses_edited"`
	RatingsChanged    int `json:"ratings_changed"`
	RationalesChanged int `json:"rationales_changed"`
}

// Report is the full feedback export for one contract review.
type Report struct {
	ContractID  uuid.UUID `json:"contract_id"`
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Stats       Stats     `json:"stats"`
	Records     []Record  `json:"records"`
}

type contractGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.ContractReview, error)
}

// Service builds feedback export reports.
type Service struct {
	contracts   contractGetter
	clauseLimit int
	log         *slog.Logger
}

// NewService creates a new feedback service. A non-positive clauseLimit
// falls back to the default.
func NewService(log *slog.Logger, contracts contractGetter, clauseLimit int) *Service {
	if clauseLimit <= 0 {
		clauseLimit = defaultClauseLimit
	}
	return &Service{
		contracts:   contracts,
		clauseLimit: clauseLimit,
		log:         log.With("service", "feedback"),
	}
}

// ExportFeedback walks the findings of one contract and classifies each into
// its feedback categories. A finding with no human divergence and no manual
// origin produces zero records: clean AI output is not noise in the report.
func (s *Service) ExportFeedback(ctx context.Context, contractID uuid.UUID) (Report, error) {
	if contractID == uuid.Nil {
		return Report{}, domain.NewValidationError("contract_id", "required")
	}

	review, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return Report{}, fmt.Errorf("get contract: %w", err)
	}

	report := Report{
		ContractID:  review.ID,
		Title:       review.Title,
		GeneratedAt: time.Now(),
		Records:     []Record{},
	}

	for _, f := range review.Findings {
		report.Stats.TotalFindings++
		if f.IsManuallyAdded {
			report.Stats.ManuallyAdded++
		} else {
			report.Stats.AIGenerated++
		}
		report.Records = append(report.Records, s.classify(f, &report.Stats)...)
	}

	s.log.InfoContext(ctx, "feedback exported",
		slog.String("contract_id", contractID.String()),
		slog.Int("findings", report.Stats.TotalFindings),
		slog.Int("records", len(report.Records)),
	)
	return report, nil
}

func (s *Service) classify(f domain.Finding, stats *Stats) []Record {
	base := Record{
		FindingID:  f.ID,
		FindingTag: f.Category,
		ClauseText: truncateClause(f.ClauseText, s.clauseLimit),
	}

	if f.IsManuallyAdded {
		r := base
		r.Category = CategoryAIMissed
		r.Corrected = f.SuggestedResponse
		r.Rationale = f.Rationale
		return []Record{r}
	}

	// A captured original only counts as an override while it still differs
	// from the live value; an edit that was later reverted is not feedback.
	var records []Record
	if f.OriginalSuggestedResponse != nil && *f.OriginalSuggestedResponse != f.SuggestedResponse {
		stats.ResponsesEdited++
		r := base
		r.Category = CategoryResponseEdited
		r.Original = *f.OriginalSuggestedResponse
		r.Corrected = f.SuggestedResponse
		r.Rationale = f.Rationale
		records = append(records, r)
	}
	if f.OriginalRating != nil && *f.OriginalRating != f.Rating {
		stats.RatingsChanged++
		r := base
		r.Category = CategoryRatingChanged
		r.Original = string(*f.OriginalRating)
		r.Corrected = string(f.Rating)
		r.Rationale = f.Rationale
		records = append(records, r)
	}
	if f.OriginalRationale != nil && *f.OriginalRationale != f.Rationale {
		stats.RationalesChanged++
		r := base
		r.Category = CategoryRationaleChanged
		r.Original = *f.OriginalRationale
		r.Corrected = f.Rationale
		records = append(records, r)
	}
	return records
}

// truncateClause caps the clause at limit characters, not bytes, so
// multi-byte text is never cut mid-rune.
func truncateClause(clause string, limit int) string {
	runes := []rune(clause)
	if len(runes) <= limit {
		return clause
	}
	return string(runes[:limit]) + "..."
}
