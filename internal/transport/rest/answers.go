package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/domain"
	"github.com/verityhq/dealdesk-backend/internal/service/review"
)

// answerService defines the minimal interface needed by AnswerHandler.
type answerService interface {
	CreateAnswer(ctx context.Context, input review.CreateAnswerInput, ident review.Identity) (domain.ProjectAnswer, error)
	GetAnswer(ctx context.Context, id uuid.UUID) (domain.ProjectAnswer, error)
	ListProjectAnswers(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectAnswer, error)
	EditAnswer(ctx context.Context, id uuid.UUID, input review.EditAnswerInput, ident review.Identity) (domain.ProjectAnswer, error)
	ApproveAnswer(ctx context.Context, id uuid.UUID, ident review.Identity) (domain.ProjectAnswer, error)
	CorrectAnswer(ctx context.Context, id uuid.UUID, input review.EditAnswerInput, ident review.Identity) (domain.ProjectAnswer, error)
	RequestAnswerReview(ctx context.Context, id uuid.UUID, input review.ReviewRequestInput, ident review.Identity) (domain.ProjectAnswer, bool, error)
	MarkClarificationUsed(ctx context.Context, id uuid.UUID, ident review.Identity) error
	SetAnswerFlag(ctx context.Context, id uuid.UUID, input review.FlagInput, ident review.Identity) (domain.Attention, error)
	ResolveAnswerFlag(ctx context.Context, id uuid.UUID, input review.ResolveFlagInput, ident review.Identity) (domain.Attention, error)
	SetAnswerQueue(ctx context.Context, id uuid.UUID, input review.QueueInput, ident review.Identity) (domain.Attention, error)
}

// AnswerHandler serves the questionnaire answer REST endpoints.
type AnswerHandler struct {
	svc answerService
	log *slog.Logger
}

// NewAnswerHandler creates an AnswerHandler.
func NewAnswerHandler(svc answerService, logger *slog.Logger) *AnswerHandler {
	return &AnswerHandler{svc: svc, log: logger.With("handler", "answers")}
}

type createAnswerRequest struct {
	ProjectID  string   `json:"projectId"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Confidence *float64 `json:"confidence"`
}

type editAnswerRequest struct {
	Answer string `json:"answer"`
}

type requestReviewRequest struct {
	Note             *string `json:"note"`
	AssignedReviewer *string `json:"assignedReviewer"`
}

type requestReviewResponse struct {
	Answer   answerResponse `json:"answer"`
	Notified bool           `json:"notified"`
}

// Create handles POST /answers.
func (h *AnswerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid projectId")
		return
	}

	answer, err := h.svc.CreateAnswer(r.Context(), review.CreateAnswerInput{
		ProjectID:  projectID,
		Question:   req.Question,
		Answer:     req.Answer,
		Confidence: req.Confidence,
	}, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAnswerResponse(answer))
}

// Get handles GET /answers/{id}.
func (h *AnswerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	answer, err := h.svc.GetAnswer(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnswerResponse(answer))
}

// ListByProject handles GET /projects/{id}/answers.
func (h *AnswerHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	answers, err := h.svc.ListProjectAnswers(r.Context(), projectID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]answerResponse, 0, len(answers))
	for _, a := range answers {
		out = append(out, toAnswerResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// Edit handles PATCH /answers/{id}.
func (h *AnswerHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req editAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.svc.EditAnswer(r.Context(), id, review.EditAnswerInput{Answer: req.Answer}, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnswerResponse(answer))
}

// Approve handles POST /answers/{id}/approve.
func (h *AnswerHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	answer, err := h.svc.ApproveAnswer(r.Context(), id, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnswerResponse(answer))
}

// Correct handles POST /answers/{id}/correct.
func (h *AnswerHandler) Correct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req editAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.svc.CorrectAnswer(r.Context(), id, review.EditAnswerInput{Answer: req.Answer}, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnswerResponse(answer))
}

// RequestReview handles POST /answers/{id}/request-review.
func (h *AnswerHandler) RequestReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req requestReviewRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	input := review.ReviewRequestInput{Note: req.Note, AssignedReviewer: req.AssignedReviewer}
	answer, notified, err := h.svc.RequestAnswerReview(r.Context(), id, input, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, requestReviewResponse{
		Answer:   toAnswerResponse(answer),
		Notified: notified,
	})
}

// ClarificationUsed handles POST /answers/{id}/clarification-used.
func (h *AnswerHandler) ClarificationUsed(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.MarkClarificationUsed(r.Context(), id, identityFrom(r)); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Flag handles POST /answers/{id}/flag.
func (h *AnswerHandler) Flag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req flagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	att, err := h.svc.SetAnswerFlag(r.Context(), id, review.FlagInput{
		Flagged: req.Flagged,
		Note:    req.Note,
	}, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttentionResponse(att))
}

// ResolveFlag handles POST /answers/{id}/flag/resolve.
func (h *AnswerHandler) ResolveFlag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req resolveFlagRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	att, err := h.svc.ResolveAnswerFlag(r.Context(), id, req.toInput(), identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttentionResponse(att))
}

// Queue handles POST /answers/{id}/queue.
func (h *AnswerHandler) Queue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req queueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	att, err := h.svc.SetAnswerQueue(r.Context(), id, review.QueueInput{
		Queued:       req.Queued,
		Note:         req.Note,
		ReviewerID:   req.ReviewerID,
		ReviewerName: req.ReviewerName,
	}, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttentionResponse(att))
}
