// Package review implements the contract and answer review workflow:
// status transitions, generation lifecycle, flag/queue sub-states, and the
// audit trail around them.
package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type contractRepo interface {
	Create(ctx context.Context, review domain.ContractReview) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.ContractReview, error)
	List(ctx context.Context) ([]domain.ContractReview, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to domain.ReviewStatus, now time.Time) error
	SaveAnalysis(ctx context.Context, id uuid.UUID, summary string, rating domain.RiskRating, findings []domain.Finding, now time.Time) error
	GetFinding(ctx context.Context, id uuid.UUID) (domain.Finding, error)
	InsertFinding(ctx context.Context, f domain.Finding) error
	UpdateFinding(ctx context.Context, f domain.Finding) error
	UpdateAttention(ctx context.Context, id uuid.UUID, att domain.Attention, now time.Time) error
	SetReviewed(ctx context.Context, id uuid.UUID, now time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	ResetStuckAnalyses(ctx context.Context, cutoff, now time.Time) ([]uuid.UUID, error)
}

type answerRepo interface {
	Create(ctx context.Context, a domain.ProjectAnswer) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.ProjectAnswer, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectAnswer, error)
	UpdateAnswer(ctx context.Context, a domain.ProjectAnswer) error
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to domain.AnswerStatus, now time.Time) error
	UpdateAttention(ctx context.Context, id uuid.UUID, att domain.Attention, now time.Time) error
	SetClarificationUsed(ctx context.Context, id uuid.UUID, now time.Time) error
}

type auditRecorder interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
	RecordBestEffort(ctx context.Context, entry domain.AuditEntry)
}

type analyzer interface {
	Analyze(ctx context.Context, title, content string) (*domain.AnalysisResult, error)
}

type notifier interface {
	Enabled() bool
	Notify(ctx context.Context, event domain.NotificationEvent) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config holds the tunables of the review service.
type Config struct {
	// StuckAnalysisAge is how long a review may stay ANALYZING before the
	// sweep returns it to PENDING.
	StuckAnalysisAge time.Duration
	// MaxFindings caps the findings accepted from one analysis.
	MaxFindings int
	// NotifyAwaitTimeout bounds how long a request waits for the
	// notification dispatch result before detaching.
	NotifyAwaitTimeout time.Duration
}

// Identity names who performs an operation and from which request.
// A zero Actor means the operation was taken by the system.
type Identity struct {
	Actor   domain.Actor
	Request *domain.RequestContext
}

func (i Identity) actorPtr() *domain.Actor {
	if i.Actor == (domain.Actor{}) {
		return nil
	}
	a := i.Actor
	return &a
}

// Service implements the review workflow business logic.
type Service struct {
	contracts contractRepo
	answers   answerRepo
	audit     auditRecorder
	analyzer  analyzer
	notify    notifier
	tx        txManager
	guard     *generationGuard
	cfg       Config
	log       *slog.Logger
}

// NewService creates a new review service.
func NewService(
	log *slog.Logger,
	contracts contractRepo,
	answers answerRepo,
	audit auditRecorder,
	analyzer analyzer,
	notify notifier,
	tx txManager,
	cfg Config,
) *Service {
	return &Service{
		contracts: contracts,
		answers:   answers,
		audit:     audit,
		analyzer:  analyzer,
		notify:    notify,
		tx:        tx,
		guard:     newGenerationGuard(),
		cfg:       cfg,
		log:       log.With("service", "review"),
	}
}

// auditEntry assembles an audit entry with the identity attached.
func auditEntry(action domain.AuditAction, entityType domain.EntityType, entityID uuid.UUID, label string, ident Identity) domain.AuditEntry {
	return domain.AuditEntry{
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		EntityLabel: label,
		Actor:       ident.actorPtr(),
		Request:     ident.Request,
	}
}
