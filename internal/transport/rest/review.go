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

// contractService defines the minimal interface needed by ReviewHandler.
type contractService interface {
	CreateContract(ctx context.Context, input review.CreateContractInput, ident review.Identity) (domain.ContractReview, error)
	GetContract(ctx context.Context, id uuid.UUID) (domain.ContractReview, error)
	ListContracts(ctx context.Context) ([]domain.ContractReview, error)
	Analyze(ctx context.Context, id uuid.UUID, ident review.Identity) (domain.ContractReview, error)
	CompleteReview(ctx context.Context, id uuid.UUID, ident review.Identity) (domain.ContractReview, error)
	RequestReanalysis(ctx context.Context, id uuid.UUID, ident review.Identity) (domain.ContractReview, error)
	DeleteContract(ctx context.Context, id uuid.UUID, ident review.Identity) error
	EditFinding(ctx context.Context, findingID uuid.UUID, input review.FindingEditInput, ident review.Identity) (domain.Finding, error)
	AddFinding(ctx context.Context, contractID uuid.UUID, input review.AddFindingInput, ident review.Identity) (domain.Finding, error)
	SetContractFlag(ctx context.Context, id uuid.UUID, input review.FlagInput, ident review.Identity) (domain.Attention, error)
	ResolveContractFlag(ctx context.Context, id uuid.UUID, input review.ResolveFlagInput, ident review.Identity) (domain.Attention, error)
	SetContractQueue(ctx context.Context, id uuid.UUID, input review.QueueInput, ident review.Identity) (domain.Attention, error)
	ResetStuckAnalyses(ctx context.Context) (int, error)
}

// ReviewHandler serves the contract review REST endpoints.
type ReviewHandler struct {
	svc contractService
	log *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(svc contractService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, log: logger.With("handler", "review")}
}

type createContractRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type editFindingRequest struct {
	Rating            *string `json:"rating"`
	Rationale         *string `json:"rationale"`
	SuggestedResponse *string `json:"suggestedResponse"`
}

type addFindingRequest struct {
	Category          string `json:"category"`
	ClauseText        string `json:"clauseText"`
	Rating            string `json:"rating"`
	Rationale         string `json:"rationale"`
	SuggestedResponse string `json:"suggestedResponse"`
}

type flagRequest struct {
	Flagged bool    `json:"flagged"`
	Note    *string `json:"note"`
}

type resolveFlagRequest struct {
	// Resolved defaults to true; false reopens a prior resolution.
	Resolved *bool   `json:"resolved"`
	Note     *string `json:"note"`
}

func (r resolveFlagRequest) toInput() review.ResolveFlagInput {
	input := review.ResolveFlagInput{Resolved: true, Note: r.Note}
	if r.Resolved != nil {
		input.Resolved = *r.Resolved
	}
	return input
}

type queueRequest struct {
	Queued       bool    `json:"queued"`
	Note         *string `json:"note"`
	ReviewerID   *string `json:"reviewerId"`
	ReviewerName *string `json:"reviewerName"`
}

// Create handles POST /contracts.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contract, err := h.svc.CreateContract(r.Context(), review.CreateContractInput{
		Title:   req.Title,
		Content: req.Content,
	}, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toContractResponse(contract))
}

// Get handles GET /contracts/{id}.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	contract, err := h.svc.GetContract(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponse(contract))
}

// List handles GET /contracts.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.svc.ListContracts(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]contractResponse, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, toContractResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// Analyze handles POST /contracts/{id}/analyze.
func (h *ReviewHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	contract, err := h.svc.Analyze(r.Context(), id, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponse(contract))
}

// Complete handles POST /contracts/{id}/complete.
func (h *ReviewHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	contract, err := h.svc.CompleteReview(r.Context(), id, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponse(contract))
}

// Reanalyze handles POST /contracts/{id}/reanalyze.
func (h *ReviewHandler) Reanalyze(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	contract, err := h.svc.RequestReanalysis(r.Context(), id, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toContractResponse(contract))
}

// Delete handles DELETE /contracts/{id}.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteContract(r.Context(), id, identityFrom(r)); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EditFinding handles PATCH /findings/{id}.
func (h *ReviewHandler) EditFinding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req editFindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := review.FindingEditInput{
		Rationale:         req.Rationale,
		SuggestedResponse: req.SuggestedResponse,
	}
	if req.Rating != nil {
		rating := domain.RiskRating(*req.Rating)
		input.Rating = &rating
	}

	finding, err := h.svc.EditFinding(r.Context(), id, input, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toFindingResponse(finding))
}

// AddFinding handles POST /contracts/{id}/findings.
func (h *ReviewHandler) AddFinding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req addFindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	finding, err := h.svc.AddFinding(r.Context(), id, review.AddFindingInput{
		Category:          req.Category,
		ClauseText:        req.ClauseText,
		Rating:            domain.RiskRating(req.Rating),
		Rationale:         req.Rationale,
		SuggestedResponse: req.SuggestedResponse,
	}, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFindingResponse(finding))
}

// Flag handles POST /contracts/{id}/flag.
func (h *ReviewHandler) Flag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req flagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	att, err := h.svc.SetContractFlag(r.Context(), id, review.FlagInput{
		Flagged: req.Flagged,
		Note:    req.Note,
	}, identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttentionResponse(att))
}

// ResolveFlag handles POST /contracts/{id}/flag/resolve.
func (h *ReviewHandler) ResolveFlag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req resolveFlagRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	att, err := h.svc.ResolveContractFlag(r.Context(), id, req.toInput(), identityFrom(r))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttentionResponse(att))
}

// Queue handles POST /contracts/{id}/queue.
func (h *ReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req queueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	att, err := h.svc.SetContractQueue(r.Context(), id, review.QueueInput{
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

// ResetStuck handles POST /admin/analyses/reset-stuck. Explicit admin
// operation, never run on a timer.
func (h *ReviewHandler) ResetStuck(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.ResetStuckAnalyses(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"reset": count})
}

// pathID parses the named path segment as a UUID, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
