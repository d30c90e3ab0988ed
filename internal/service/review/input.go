package review

import (
	"strings"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// CreateContractInput holds the parameters for registering a contract for
// review.
type CreateContractInput struct {
	Title   string
	Content string
}

// Validate checks all fields and collects all errors.
func (i *CreateContractInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Title) == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if strings.TrimSpace(i.Content) == "" {
		errs = append(errs, domain.FieldError{Field: "content", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// FindingEditInput holds the fields a reviewer may change on a finding.
// nil means "leave unchanged".
type FindingEditInput struct {
	Rating            *domain.RiskRating
	Rationale         *string
	SuggestedResponse *string
}

// Validate checks all fields and collects all errors.
func (i *FindingEditInput) Validate() error {
	var errs []domain.FieldError

	if i.Rating == nil && i.Rationale == nil && i.SuggestedResponse == nil {
		errs = append(errs, domain.FieldError{Field: "edit", Message: "at least one field required"})
	}
	if i.Rating != nil && !i.Rating.IsValid() {
		errs = append(errs, domain.FieldError{Field: "rating", Message: "must be LOW, MEDIUM, HIGH, or CRITICAL"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// AddFindingInput holds the parameters for manually adding a finding the
// model missed.
type AddFindingInput struct {
	Category          string
	ClauseText        string
	Rating            domain.RiskRating
	Rationale         string
	SuggestedResponse string
}

// Validate checks all fields and collects all errors.
func (i *AddFindingInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.ClauseText) == "" {
		errs = append(errs, domain.FieldError{Field: "clause_text", Message: "required"})
	}
	if !i.Rating.IsValid() {
		errs = append(errs, domain.FieldError{Field: "rating", Message: "must be LOW, MEDIUM, HIGH, or CRITICAL"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// FlagInput holds the parameters for setting or clearing a flag.
type FlagInput struct {
	Flagged bool
	Note    *string
}

// ResolveFlagInput holds the parameters for resolving or reopening a flag.
type ResolveFlagInput struct {
	Resolved bool
	Note     *string
}

// QueueInput holds the parameters for queueing or dequeueing an item.
type QueueInput struct {
	Queued       bool
	Note         *string
	ReviewerID   *string
	ReviewerName *string
}

// ReviewRequestInput holds the optional parameters of a formal review
// request.
type ReviewRequestInput struct {
	Note             *string
	AssignedReviewer *string
}

// CreateAnswerInput holds the parameters for adding a generated answer row
// to a questionnaire project.
type CreateAnswerInput struct {
	ProjectID  uuid.UUID
	Question   string
	Answer     string
	Confidence *float64
}

// Validate checks all fields and collects all errors.
func (i *CreateAnswerInput) Validate() error {
	var errs []domain.FieldError

	if i.ProjectID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "project_id", Message: "required"})
	}
	if strings.TrimSpace(i.Question) == "" {
		errs = append(errs, domain.FieldError{Field: "question", Message: "required"})
	}
	if strings.TrimSpace(i.Answer) == "" {
		errs = append(errs, domain.FieldError{Field: "answer", Message: "required"})
	}
	if i.Confidence != nil && (*i.Confidence < 0 || *i.Confidence > 1) {
		errs = append(errs, domain.FieldError{Field: "confidence", Message: "must be between 0 and 1"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// EditAnswerInput holds the parameters for a human correction of an answer.
type EditAnswerInput struct {
	Answer string
}

// Validate checks all fields and collects all errors.
func (i *EditAnswerInput) Validate() error {
	if strings.TrimSpace(i.Answer) == "" {
		return domain.NewValidationError("answer", "required")
	}
	return nil
}
