package domain

// ReviewStatus represents the primary lifecycle state of a contract review.
type ReviewStatus string

const (
	ReviewStatusPending   ReviewStatus = "PENDING"
	ReviewStatusAnalyzing ReviewStatus = "ANALYZING"
	ReviewStatusAnalyzed  ReviewStatus = "ANALYZED"
	ReviewStatusReviewed  ReviewStatus = "REVIEWED"
)

func (s ReviewStatus) String() string { return string(s) }

func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusAnalyzing, ReviewStatusAnalyzed, ReviewStatusReviewed:
		return true
	}
	return false
}

// reviewStatusGraph lists the statuses reachable from each review status.
// A forced revert to PENDING on generation failure is handled by the guard,
// not by this graph.
var reviewStatusGraph = map[ReviewStatus][]ReviewStatus{
	ReviewStatusPending:   {ReviewStatusAnalyzing},
	ReviewStatusAnalyzing: {ReviewStatusAnalyzed, ReviewStatusPending},
	ReviewStatusAnalyzed:  {ReviewStatusReviewed, ReviewStatusPending},
	ReviewStatusReviewed:  {},
}

// CanTransition reports whether the target status is reachable from s.
// A transition to the same status is always allowed (idempotent no-op).
func (s ReviewStatus) CanTransition(to ReviewStatus) bool {
	if s == to {
		return true
	}
	for _, next := range reviewStatusGraph[s] {
		if next == to {
			return true
		}
	}
	return false
}

// AnswerStatus represents the lifecycle state of a project answer row.
type AnswerStatus string

const (
	AnswerStatusPending   AnswerStatus = "PENDING"
	AnswerStatusRequested AnswerStatus = "REQUESTED"
	AnswerStatusApproved  AnswerStatus = "APPROVED"
	AnswerStatusCorrected AnswerStatus = "CORRECTED"
)

func (s AnswerStatus) String() string { return string(s) }

func (s AnswerStatus) IsValid() bool {
	switch s {
	case AnswerStatusPending, AnswerStatusRequested, AnswerStatusApproved, AnswerStatusCorrected:
		return true
	}
	return false
}

var answerStatusGraph = map[AnswerStatus][]AnswerStatus{
	AnswerStatusPending:   {AnswerStatusRequested, AnswerStatusApproved, AnswerStatusCorrected},
	AnswerStatusRequested: {AnswerStatusApproved, AnswerStatusCorrected},
	AnswerStatusApproved:  {},
	AnswerStatusCorrected: {},
}

// CanTransition reports whether the target status is reachable from s.
// A transition to the same status is always allowed (idempotent no-op).
func (s AnswerStatus) CanTransition(to AnswerStatus) bool {
	if s == to {
		return true
	}
	for _, next := range answerStatusGraph[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition other than the idempotent no-op is
// possible from s.
func (s AnswerStatus) Terminal() bool {
	return len(answerStatusGraph[s]) == 0
}

// RiskRating grades a contract or an individual finding.
type RiskRating string

const (
	RiskRatingLow      RiskRating = "LOW"
	RiskRatingMedium   RiskRating = "MEDIUM"
	RiskRatingHigh     RiskRating = "HIGH"
	RiskRatingCritical RiskRating = "CRITICAL"
)

func (r RiskRating) String() string { return string(r) }

func (r RiskRating) IsValid() bool {
	switch r {
	case RiskRatingLow, RiskRatingMedium, RiskRatingHigh, RiskRatingCritical:
		return true
	}
	return false
}

// EntityType identifies the kind of domain entity (used in audit logs).
type EntityType string

const (
	EntityTypeContract EntityType = "CONTRACT"
	EntityTypeFinding  EntityType = "FINDING"
	EntityTypeAnswer   EntityType = "ANSWER"
	EntityTypeProject  EntityType = "PROJECT"
)

func (e EntityType) String() string { return string(e) }

func (e EntityType) IsValid() bool {
	switch e {
	case EntityTypeContract, EntityTypeFinding, EntityTypeAnswer, EntityTypeProject:
		return true
	}
	return false
}

// AuditAction represents the kind of action recorded in the audit log.
// The set is extendable; consumers must tolerate unknown values.
type AuditAction string

const (
	AuditActionCreated         AuditAction = "CREATED"
	AuditActionUpdated         AuditAction = "UPDATED"
	AuditActionStatusChanged   AuditAction = "STATUS_CHANGED"
	AuditActionCorrected       AuditAction = "CORRECTED"
	AuditActionApproved        AuditAction = "APPROVED"
	AuditActionFlagResolved    AuditAction = "FLAG_RESOLVED"
	AuditActionReviewRequested AuditAction = "REVIEW_REQUESTED"
	AuditActionClarifyUsed     AuditAction = "CLARIFY_USED"
	AuditActionRefreshed       AuditAction = "REFRESHED"
	AuditActionDeleted         AuditAction = "DELETED"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreated, AuditActionUpdated, AuditActionStatusChanged,
		AuditActionCorrected, AuditActionApproved, AuditActionFlagResolved,
		AuditActionReviewRequested, AuditActionClarifyUsed, AuditActionRefreshed,
		AuditActionDeleted:
		return true
	}
	return false
}

// FeedbackCategory classifies a human override in the feedback export report.
type FeedbackCategory string

const (
	FeedbackAIMissed         FeedbackCategory = "ai_missed"
	FeedbackResponseEdited   FeedbackCategory = "response_edited"
	FeedbackRatingChanged    FeedbackCategory = "rating_changed"
	FeedbackRationaleChanged FeedbackCategory = "rationale_changed"
)

func (c FeedbackCategory) String() string { return string(c) }
