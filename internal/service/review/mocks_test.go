package review

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Hand-rolled mocks
// ---------------------------------------------------------------------------

type mockContractRepo struct {
	CreateFunc             func(ctx context.Context, review domain.ContractReview) error
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (domain.ContractReview, error)
	ListFunc               func(ctx context.Context) ([]domain.ContractReview, error)
	UpdateStatusIfFunc     func(ctx context.Context, id uuid.UUID, from, to domain.ReviewStatus, now time.Time) error
	SaveAnalysisFunc       func(ctx context.Context, id uuid.UUID, summary string, rating domain.RiskRating, findings []domain.Finding, now time.Time) error
	GetFindingFunc         func(ctx context.Context, id uuid.UUID) (domain.Finding, error)
	InsertFindingFunc      func(ctx context.Context, f domain.Finding) error
	UpdateFindingFunc      func(ctx context.Context, f domain.Finding) error
	UpdateAttentionFunc    func(ctx context.Context, id uuid.UUID, att domain.Attention, now time.Time) error
	SetReviewedFunc        func(ctx context.Context, id uuid.UUID, now time.Time) error
	DeleteFunc             func(ctx context.Context, id uuid.UUID) error
	ResetStuckAnalysesFunc func(ctx context.Context, cutoff, now time.Time) ([]uuid.UUID, error)
}

func (m *mockContractRepo) Create(ctx context.Context, review domain.ContractReview) error {
	return m.CreateFunc(ctx, review)
}

func (m *mockContractRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ContractReview, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockContractRepo) List(ctx context.Context) ([]domain.ContractReview, error) {
	return m.ListFunc(ctx)
}

func (m *mockContractRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to domain.ReviewStatus, now time.Time) error {
	return m.UpdateStatusIfFunc(ctx, id, from, to, now)
}

func (m *mockContractRepo) SaveAnalysis(ctx context.Context, id uuid.UUID, summary string, rating domain.RiskRating, findings []domain.Finding, now time.Time) error {
	return m.SaveAnalysisFunc(ctx, id, summary, rating, findings, now)
}

func (m *mockContractRepo) GetFinding(ctx context.Context, id uuid.UUID) (domain.Finding, error) {
	return m.GetFindingFunc(ctx, id)
}

func (m *mockContractRepo) InsertFinding(ctx context.Context, f domain.Finding) error {
	return m.InsertFindingFunc(ctx, f)
}

func (m *mockContractRepo) UpdateFinding(ctx context.Context, f domain.Finding) error {
	return m.UpdateFindingFunc(ctx, f)
}

func (m *mockContractRepo) UpdateAttention(ctx context.Context, id uuid.UUID, att domain.Attention, now time.Time) error {
	return m.UpdateAttentionFunc(ctx, id, att, now)
}

func (m *mockContractRepo) SetReviewed(ctx context.Context, id uuid.UUID, now time.Time) error {
	return m.SetReviewedFunc(ctx, id, now)
}

func (m *mockContractRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockContractRepo) ResetStuckAnalyses(ctx context.Context, cutoff, now time.Time) ([]uuid.UUID, error) {
	return m.ResetStuckAnalysesFunc(ctx, cutoff, now)
}

type mockAnswerRepo struct {
	CreateFunc               func(ctx context.Context, a domain.ProjectAnswer) error
	GetByIDFunc              func(ctx context.Context, id uuid.UUID) (domain.ProjectAnswer, error)
	ListByProjectFunc        func(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectAnswer, error)
	UpdateAnswerFunc         func(ctx context.Context, a domain.ProjectAnswer) error
	UpdateStatusIfFunc       func(ctx context.Context, id uuid.UUID, from, to domain.AnswerStatus, now time.Time) error
	UpdateAttentionFunc      func(ctx context.Context, id uuid.UUID, att domain.Attention, now time.Time) error
	SetClarificationUsedFunc func(ctx context.Context, id uuid.UUID, now time.Time) error
}

func (m *mockAnswerRepo) Create(ctx context.Context, a domain.ProjectAnswer) error {
	return m.CreateFunc(ctx, a)
}

func (m *mockAnswerRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ProjectAnswer, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockAnswerRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectAnswer, error) {
	return m.ListByProjectFunc(ctx, projectID)
}

func (m *mockAnswerRepo) UpdateAnswer(ctx context.Context, a domain.ProjectAnswer) error {
	return m.UpdateAnswerFunc(ctx, a)
}

func (m *mockAnswerRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to domain.AnswerStatus, now time.Time) error {
	return m.UpdateStatusIfFunc(ctx, id, from, to, now)
}

func (m *mockAnswerRepo) UpdateAttention(ctx context.Context, id uuid.UUID, att domain.Attention, now time.Time) error {
	return m.UpdateAttentionFunc(ctx, id, att, now)
}

func (m *mockAnswerRepo) SetClarificationUsed(ctx context.Context, id uuid.UUID, now time.Time) error {
	return m.SetClarificationUsedFunc(ctx, id, now)
}

// mockAudit records every entry it receives so tests can assert on the trail.
type mockAudit struct {
	mu         sync.Mutex
	entries    []domain.AuditEntry
	RecordFunc func(ctx context.Context, entry domain.AuditEntry) error
}

func (m *mockAudit) Record(ctx context.Context, entry domain.AuditEntry) error {
	if m.RecordFunc != nil {
		if err := m.RecordFunc(ctx, entry); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	return nil
}

func (m *mockAudit) RecordBestEffort(ctx context.Context, entry domain.AuditEntry) {
	_ = m.Record(ctx, entry)
}

func (m *mockAudit) recorded() []domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

type mockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, title, content string) (*domain.AnalysisResult, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, title, content string) (*domain.AnalysisResult, error) {
	return m.AnalyzeFunc(ctx, title, content)
}

type mockNotifier struct {
	mu         sync.Mutex
	events     []domain.NotificationEvent
	enabled    bool
	NotifyFunc func(ctx context.Context, event domain.NotificationEvent) error
}

func (m *mockNotifier) Enabled() bool { return m.enabled }

func (m *mockNotifier) Notify(ctx context.Context, event domain.NotificationEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, event)
	}
	return nil
}

func (m *mockNotifier) sent() []domain.NotificationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.NotificationEvent, len(m.events))
	copy(out, m.events)
	return out
}

// mockTx runs the function directly with no transaction semantics.
type mockTx struct{}

func (mockTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type serviceMocks struct {
	contracts *mockContractRepo
	answers   *mockAnswerRepo
	audit     *mockAudit
	analyzer  *mockAnalyzer
	notify    *mockNotifier
}

func newTestService() (*Service, *serviceMocks) {
	m := &serviceMocks{
		contracts: &mockContractRepo{},
		answers:   &mockAnswerRepo{},
		audit:     &mockAudit{},
		analyzer:  &mockAnalyzer{},
		notify:    &mockNotifier{},
	}
	cfg := Config{
		StuckAnalysisAge:   10 * time.Minute,
		MaxFindings:        20,
		NotifyAwaitTimeout: 100 * time.Millisecond,
	}
	svc := NewService(
		slog.New(slog.DiscardHandler),
		m.contracts,
		m.answers,
		m.audit,
		m.analyzer,
		m.notify,
		mockTx{},
		cfg,
	)
	return svc, m
}

func testIdentity() Identity {
	return Identity{
		Actor: domain.Actor{Name: "Dana Reviewer", Email: "dana@example.com"},
		Request: &domain.RequestContext{
			IP:        "203.0.113.7",
			UserAgent: "test-agent/1.0",
		},
	}
}
