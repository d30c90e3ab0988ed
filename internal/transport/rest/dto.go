package rest

import (
	"time"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

type contractResponse struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Status     string             `json:"status"`
	Summary    *string            `json:"summary,omitempty"`
	RiskRating *string            `json:"riskRating,omitempty"`
	Findings   []findingResponse  `json:"findings,omitempty"`
	Attention  *attentionResponse `json:"attention,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	AnalyzedAt *time.Time         `json:"analyzedAt,omitempty"`
	ReviewedAt *time.Time         `json:"reviewedAt,omitempty"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

type findingResponse struct {
	ID                string  `json:"id"`
	Category          string  `json:"category"`
	ClauseText        string  `json:"clauseText"`
	Rating            string  `json:"rating"`
	Rationale         string  `json:"rationale"`
	SuggestedResponse string  `json:"suggestedResponse"`
	IsManuallyAdded   bool    `json:"isManuallyAdded"`
	IsEdited          bool    `json:"isEdited"`
	OriginalRating    *string `json:"originalRating,omitempty"`
	OriginalRationale *string `json:"originalRationale,omitempty"`

	OriginalSuggestedResponse *string `json:"originalSuggestedResponse,omitempty"`
}

type attentionResponse struct {
	Flagged            bool       `json:"flagged"`
	FlagNote           *string    `json:"flagNote,omitempty"`
	FlaggedAt          *time.Time `json:"flaggedAt,omitempty"`
	FlaggedBy          *string    `json:"flaggedBy,omitempty"`
	FlagResolved       bool       `json:"flagResolved"`
	FlagResolvedAt     *time.Time `json:"flagResolvedAt,omitempty"`
	FlagResolvedBy     *string    `json:"flagResolvedBy,omitempty"`
	FlagResolutionNote *string    `json:"flagResolutionNote,omitempty"`
	Queued             bool       `json:"queued"`
	QueuedAt           *time.Time `json:"queuedAt,omitempty"`
	QueuedBy           *string    `json:"queuedBy,omitempty"`
	QueuedNote         *string    `json:"queuedNote,omitempty"`
	ReviewerID         *string    `json:"reviewerId,omitempty"`
	ReviewerName       *string    `json:"reviewerName,omitempty"`
}

type answerResponse struct {
	ID                string             `json:"id"`
	ProjectID         string             `json:"projectId"`
	Question          string             `json:"question"`
	Answer            string             `json:"answer"`
	EffectiveAnswer   string             `json:"effectiveAnswer"`
	Confidence        *float64           `json:"confidence,omitempty"`
	Status            string             `json:"status"`
	UserEditedAnswer  *string            `json:"userEditedAnswer,omitempty"`
	OriginalAnswer    *string            `json:"originalAnswer,omitempty"`
	Corrected         bool               `json:"corrected"`
	ClarificationUsed bool               `json:"clarificationUsed"`
	Attention         *attentionResponse `json:"attention,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	ReviewedAt        *time.Time         `json:"reviewedAt,omitempty"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

type auditEntryResponse struct {
	ID          string                        `json:"id"`
	Action      string                        `json:"action"`
	EntityType  string                        `json:"entityType"`
	EntityID    string                        `json:"entityId"`
	EntityLabel string                        `json:"entityLabel,omitempty"`
	ActorName   *string                       `json:"actorName,omitempty"`
	ActorEmail  *string                       `json:"actorEmail,omitempty"`
	Changes     map[string]fieldChangeDTO     `json:"changes,omitempty"`
	Metadata    map[string]any                `json:"metadata,omitempty"`
	CreatedAt   time.Time                     `json:"createdAt"`
}

type fieldChangeDTO struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

func toContractResponse(c domain.ContractReview) contractResponse {
	resp := contractResponse{
		ID:         c.ID.String(),
		Title:      c.Title,
		Status:     string(c.Status),
		Summary:    c.Summary,
		CreatedAt:  c.CreatedAt,
		AnalyzedAt: c.AnalyzedAt,
		ReviewedAt: c.ReviewedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.Rating != nil {
		s := string(*c.Rating)
		resp.RiskRating = &s
	}
	for _, f := range c.Findings {
		resp.Findings = append(resp.Findings, toFindingResponse(f))
	}
	if att := toAttentionResponse(c.Attention); att != (attentionResponse{}) {
		resp.Attention = &att
	}
	return resp
}

func toFindingResponse(f domain.Finding) findingResponse {
	resp := findingResponse{
		ID:                        f.ID.String(),
		Category:                  f.Category,
		ClauseText:                f.ClauseText,
		Rating:                    string(f.Rating),
		Rationale:                 f.Rationale,
		SuggestedResponse:         f.SuggestedResponse,
		IsManuallyAdded:           f.IsManuallyAdded,
		IsEdited:                  f.Edited(),
		OriginalRationale:         f.OriginalRationale,
		OriginalSuggestedResponse: f.OriginalSuggestedResponse,
	}
	if f.OriginalRating != nil {
		s := string(*f.OriginalRating)
		resp.OriginalRating = &s
	}
	return resp
}

func toAttentionResponse(a domain.Attention) attentionResponse {
	return attentionResponse{
		Flagged:            a.Flag.Flagged,
		FlagNote:           a.Flag.FlagNote,
		FlaggedAt:          a.Flag.FlaggedAt,
		FlaggedBy:          a.Flag.FlaggedBy,
		FlagResolved:       a.Flag.FlagResolved,
		FlagResolvedAt:     a.Flag.FlagResolvedAt,
		FlagResolvedBy:     a.Flag.FlagResolvedBy,
		FlagResolutionNote: a.Flag.FlagResolutionNote,
		Queued:             a.Queue.Queued,
		QueuedAt:           a.Queue.QueuedAt,
		QueuedBy:           a.Queue.QueuedBy,
		QueuedNote:         a.Queue.QueuedNote,
		ReviewerID:         a.Queue.ReviewerID,
		ReviewerName:       a.Queue.ReviewerName,
	}
}

func toAnswerResponse(a domain.ProjectAnswer) answerResponse {
	resp := answerResponse{
		ID:                a.ID.String(),
		ProjectID:         a.ProjectID.String(),
		Question:          a.Question,
		Answer:            a.Answer,
		EffectiveAnswer:   a.EffectiveAnswer(),
		Confidence:        a.Confidence,
		Status:            string(a.Status),
		UserEditedAnswer:  a.UserEditedAnswer,
		OriginalAnswer:    a.OriginalAnswer,
		Corrected:         a.Corrected(),
		ClarificationUsed: a.ClarificationUsed,
		CreatedAt:         a.CreatedAt,
		ReviewedAt:        a.ReviewedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if att := toAttentionResponse(a.Attention); att != (attentionResponse{}) {
		resp.Attention = &att
	}
	return resp
}

func toAuditEntryResponse(e domain.AuditEntry) auditEntryResponse {
	resp := auditEntryResponse{
		ID:          e.ID.String(),
		Action:      string(e.Action),
		EntityType:  string(e.EntityType),
		EntityID:    e.EntityID.String(),
		EntityLabel: e.EntityLabel,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt,
	}
	if e.Actor != nil {
		resp.ActorName = &e.Actor.Name
		resp.ActorEmail = &e.Actor.Email
	}
	if len(e.Changes) > 0 {
		resp.Changes = make(map[string]fieldChangeDTO, len(e.Changes))
		for field, ch := range e.Changes {
			resp.Changes[field] = fieldChangeDTO{Before: ch.Before, After: ch.After}
		}
	}
	return resp
}
