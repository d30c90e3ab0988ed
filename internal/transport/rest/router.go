package rest

import "net/http"

// Handlers bundles everything the router mounts.
type Handlers struct {
	Health   *HealthHandler
	Review   *ReviewHandler
	Answers  *AnswerHandler
	Audit    *AuditHandler
	Feedback *FeedbackHandler
}

// NewRouter mounts all REST routes on a ServeMux.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.HandleFunc("POST /contracts", h.Review.Create)
	mux.HandleFunc("GET /contracts", h.Review.List)
	mux.HandleFunc("GET /contracts/{id}", h.Review.Get)
	mux.HandleFunc("DELETE /contracts/{id}", h.Review.Delete)
	mux.HandleFunc("POST /contracts/{id}/analyze", h.Review.Analyze)
	mux.HandleFunc("POST /contracts/{id}/complete", h.Review.Complete)
	mux.HandleFunc("POST /contracts/{id}/reanalyze", h.Review.Reanalyze)
	mux.HandleFunc("POST /contracts/{id}/findings", h.Review.AddFinding)
	mux.HandleFunc("POST /contracts/{id}/flag", h.Review.Flag)
	mux.HandleFunc("POST /contracts/{id}/flag/resolve", h.Review.ResolveFlag)
	mux.HandleFunc("POST /contracts/{id}/queue", h.Review.Queue)
	mux.HandleFunc("GET /contracts/{id}/feedback", h.Feedback.Export)

	mux.HandleFunc("PATCH /findings/{id}", h.Review.EditFinding)

	mux.HandleFunc("POST /answers", h.Answers.Create)
	mux.HandleFunc("GET /answers/{id}", h.Answers.Get)
	mux.HandleFunc("PATCH /answers/{id}", h.Answers.Edit)
	mux.HandleFunc("POST /answers/{id}/approve", h.Answers.Approve)
	mux.HandleFunc("POST /answers/{id}/correct", h.Answers.Correct)
	mux.HandleFunc("POST /answers/{id}/request-review", h.Answers.RequestReview)
	mux.HandleFunc("POST /answers/{id}/clarification-used", h.Answers.ClarificationUsed)
	mux.HandleFunc("POST /answers/{id}/flag", h.Answers.Flag)
	mux.HandleFunc("POST /answers/{id}/flag/resolve", h.Answers.ResolveFlag)
	mux.HandleFunc("POST /answers/{id}/queue", h.Answers.Queue)
	mux.HandleFunc("GET /projects/{id}/answers", h.Answers.ListByProject)

	mux.HandleFunc("GET /audit", h.Audit.Recent)
	mux.HandleFunc("GET /audit/{entityType}/{id}", h.Audit.History)

	mux.HandleFunc("POST /admin/analyses/reset-stuck", h.Review.ResetStuck)

	return mux
}
