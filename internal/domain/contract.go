package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContractReview is a reviewable contract analysis: uploaded document,
// AI-generated summary/rating/findings, and the human review lifecycle.
type ContractReview struct {
	ID        uuid.UUID
	Title     string
	Content   string
	Status    ReviewStatus
	Summary   *string
	Rating    *RiskRating
	Findings  []Finding
	Attention Attention

	CreatedAt  time.Time
	AnalyzedAt *time.Time
	ReviewedAt *time.Time
	UpdatedAt  time.Time
}

// Finding is a single extracted, rated observation attached to a contract
// review. The Original* shadow fields capture the AI-generated value at the
// first human edit and are never overwritten afterwards.
type Finding struct {
	ID                uuid.UUID
	ContractID        uuid.UUID
	Category          string
	ClauseText        string
	Rating            RiskRating
	Rationale         string
	SuggestedResponse string
	IsManuallyAdded   bool

	OriginalRating            *RiskRating
	OriginalRationale         *string
	OriginalSuggestedResponse *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FindingEdit holds the fields a human may change on a finding.
// nil means "leave unchanged".
type FindingEdit struct {
	Rating            *RiskRating
	Rationale         *string
	SuggestedResponse *string
}

// Apply returns the finding after a human edit, enforcing the capture-once
// rule: a shadow field is set exactly when the live field first diverges from
// its AI value, and is never overwritten on later edits.
func (f Finding) Apply(edit FindingEdit, now time.Time) Finding {
	if edit.Rating != nil && *edit.Rating != f.Rating {
		if f.OriginalRating == nil {
			orig := f.Rating
			f.OriginalRating = &orig
		}
		f.Rating = *edit.Rating
	}
	if edit.Rationale != nil && *edit.Rationale != f.Rationale {
		if f.OriginalRationale == nil {
			orig := f.Rationale
			f.OriginalRationale = &orig
		}
		f.Rationale = *edit.Rationale
	}
	if edit.SuggestedResponse != nil && *edit.SuggestedResponse != f.SuggestedResponse {
		if f.OriginalSuggestedResponse == nil {
			orig := f.SuggestedResponse
			f.OriginalSuggestedResponse = &orig
		}
		f.SuggestedResponse = *edit.SuggestedResponse
	}
	f.UpdatedAt = now
	return f
}

// Edited reports whether any live field of the finding has ever diverged
// from its AI-generated value.
func (f Finding) Edited() bool {
	return f.OriginalRating != nil || f.OriginalRationale != nil || f.OriginalSuggestedResponse != nil
}

// findingTrackedFields are the fields compared when auditing a finding edit.
var findingTrackedFields = []string{"rating", "rationale", "suggested_response"}

// FindingSnapshot converts a finding into a diffable snapshot of its
// human-editable fields.
func FindingSnapshot(f Finding) Snapshot {
	return Snapshot{
		"rating":             string(f.Rating),
		"rationale":          f.Rationale,
		"suggested_response": f.SuggestedResponse,
	}
}

// DiffFindings returns the change set between two versions of a finding.
func DiffFindings(before, after Finding) ChangeSet {
	return Diff(FindingSnapshot(before), FindingSnapshot(after), findingTrackedFields)
}

// AnalysisResult is the parsed output of a generation call for a contract.
type AnalysisResult struct {
	Summary  string
	Rating   RiskRating
	Findings []AnalysisFinding
}

// AnalysisFinding is one finding as produced by the generation service,
// before it is persisted with an ID.
type AnalysisFinding struct {
	Category          string
	ClauseText        string
	Rating            RiskRating
	Rationale         string
	SuggestedResponse string
}
