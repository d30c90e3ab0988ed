package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectAnswer is a single row of a bulk questionnaire project: the
// question, the AI-generated answer, and the human review lifecycle.
type ProjectAnswer struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	Question   string
	Answer     string
	Confidence *float64
	Status     AnswerStatus
	Attention  Attention

	// UserEditedAnswer is the human-corrected answer, nil until first edit.
	// OriginalAnswer captures the AI answer once, at the first edit, and is
	// never overwritten afterwards.
	UserEditedAnswer *string
	OriginalAnswer   *string

	ClarificationUsed bool

	CreatedAt  time.Time
	ReviewedAt *time.Time
	UpdatedAt  time.Time
}

// ApplyEdit returns the answer after a human edit, enforcing the
// capture-once rule for OriginalAnswer.
func (a ProjectAnswer) ApplyEdit(edited string, now time.Time) ProjectAnswer {
	if a.OriginalAnswer == nil {
		orig := a.Answer
		a.OriginalAnswer = &orig
	}
	a.UserEditedAnswer = &edited
	a.UpdatedAt = now
	return a
}

// EffectiveAnswer returns the human-edited answer when present, otherwise
// the AI-generated answer.
func (a ProjectAnswer) EffectiveAnswer() string {
	if a.UserEditedAnswer != nil {
		return *a.UserEditedAnswer
	}
	return a.Answer
}

// Corrected reports whether the effective answer diverges from the
// AI-generated original.
func (a ProjectAnswer) Corrected() bool {
	if a.UserEditedAnswer == nil {
		return false
	}
	original := a.Answer
	if a.OriginalAnswer != nil {
		original = *a.OriginalAnswer
	}
	return *a.UserEditedAnswer != original
}

// answerTrackedFields are the fields compared when auditing an answer edit.
var answerTrackedFields = []string{"answer", "status"}

// AnswerSnapshot converts an answer into a diffable snapshot of its
// reviewable fields.
func AnswerSnapshot(a ProjectAnswer) Snapshot {
	return Snapshot{
		"answer": a.EffectiveAnswer(),
		"status": string(a.Status),
	}
}

// DiffAnswers returns the change set between two versions of an answer.
func DiffAnswers(before, after ProjectAnswer) ChangeSet {
	return Diff(AnswerSnapshot(before), AnswerSnapshot(after), answerTrackedFields)
}
