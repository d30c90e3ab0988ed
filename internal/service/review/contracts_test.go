package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

func ratingPtr(r domain.RiskRating) *domain.RiskRating { return &r }

func strPtr(s string) *string { return &s }

func aiFinding(contractID uuid.UUID) domain.Finding {
	now := time.Now()
	return domain.Finding{
		ID:                uuid.New(),
		ContractID:        contractID,
		Category:          "liability",
		ClauseText:        "Liability is unlimited.",
		Rating:            domain.RiskRatingMedium,
		Rationale:         "No cap on damages.",
		SuggestedResponse: "Negotiate a cap.",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestCreateContract(t *testing.T) {
	svc, m := newTestService()

	var created domain.ContractReview
	m.contracts.CreateFunc = func(_ context.Context, review domain.ContractReview) error {
		created = review
		return nil
	}

	got, err := svc.CreateContract(context.Background(), CreateContractInput{
		Title:   "NDA - Globex",
		Content: "The parties agree...",
	}, testIdentity())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, domain.ReviewStatusPending, got.Status)
	assert.Equal(t, created.ID, got.ID)

	entries := m.audit.recorded()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionCreated, entries[0].Action)
	assert.Equal(t, domain.EntityTypeContract, entries[0].EntityType)
	assert.Equal(t, "NDA - Globex", entries[0].EntityLabel)
	require.NotNil(t, entries[0].Actor)
	assert.Equal(t, "Dana Reviewer", entries[0].Actor.Name)
}

func TestCreateContract_Validation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateContract(context.Background(), CreateContractInput{Content: "body"}, testIdentity())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCompleteReview(t *testing.T) {
	svc, m := newTestService()
	id := uuid.New()

	contract := pendingContract(id)
	contract.Status = domain.ReviewStatusAnalyzed
	m.contracts.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (domain.ContractReview, error) {
		return contract, nil
	}
	reviewedSet := false
	m.contracts.SetReviewedFunc = func(_ context.Context, _ uuid.UUID, _ time.Time) error {
		reviewedSet = true
		return nil
	}
	m.notify.enabled = true

	got, err := svc.CompleteReview(context.Background(), id, testIdentity())
	require.NoError(t, err)

	assert.True(t, reviewedSet)
	assert.Equal(t, domain.ReviewStatusReviewed, got.Status)
	require.NotNil(t, got.ReviewedAt)

	entries := m.audit.recorded()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionApproved, entries[0].Action)
	assert.Equal(t, domain.FieldChange{Before: "ANALYZED", After: "REVIEWED"}, entries[0].Changes["status"])

	events := m.notify.sent()
	require.Len(t, events, 1)
	assert.Equal(t, domain.NotificationReviewCompleted, events[0].Type)
	assert.Equal(t, id, events[0].EntityID)
}

func TestCompleteReview_SameStatusIsNoOp(t *testing.T) {
	svc, m := newTestService()
	id := uuid.New()

	contract := pendingContract(id)
	contract.Status = domain.ReviewStatusReviewed
	m.contracts.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (domain.ContractReview, error) {
		return contract, nil
	}

	got, err := svc.CompleteReview(context.Background(), id, testIdentity())
	require.NoError(t, err)

	assert.Equal(t, domain.ReviewStatusReviewed, got.Status)
	assert.Empty(t, m.audit.recorded(), "idempotent no-op must not write audit entries")
	assert.Empty(t, m.notify.sent())
}

func TestCompleteReview_RejectsPending(t *testing.T) {
	svc, m := newTestService()
	id := uuid.New()

	m.contracts.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (domain.ContractReview, error) {
		return pendingContract(id), nil
	}

	_, err := svc.CompleteReview(context.Background(), id, testIdentity())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	var transErr *domain.TransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, "PENDING", transErr.From)
	assert.Equal(t, "REVIEWED", transErr.To)
}

func TestRequestReanalysis(t *testing.T) {
	svc, m := newTestService()
	id := uuid.New()

	contract := pendingContract(id)
	contract.Status = domain.ReviewStatusAnalyzed
	m.contracts.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (domain.ContractReview, error) {
		return contract, nil
	}
	m.contracts.UpdateStatusIfFunc = func(_ context.Context, _ uuid.UUID, from, to domain.ReviewStatus, _ time.Time) error {
		assert.Equal(t, domain.ReviewStatusAnalyzed, from)
		assert.Equal(t, domain.ReviewStatusPending, to)
		return nil
	}

	got, err := svc.RequestReanalysis(context.Background(), id, testIdentity())
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusPending, got.Status)

	entries := m.audit.recorded()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionRefreshed, entries[0].Action)
}

func TestEditFinding_CapturesOriginalOnce(t *testing.T) {
	svc, m := newTestService()
	contractID := uuid.New()
	finding := aiFinding(contractID)

	stored := finding
	m.contracts.GetFindingFunc = func(_ context.Context, _ uuid.UUID) (domain.Finding, error) {
		return stored, nil
	}
	m.contracts.UpdateFindingFunc = func(_ context.Context, f domain.Finding) error {
		stored = f
		return nil
	}

	// First edit captures the AI rating into the shadow.
	got, err := svc.EditFinding(context.Background(), finding.ID, FindingEditInput{
		Rating: ratingPtr(domain.RiskRatingHigh),
	}, testIdentity())
	require.NoError(t, err)

	assert.Equal(t, domain.RiskRatingHigh, got.Rating)
	require.NotNil(t, got.OriginalRating)
	assert.Equal(t, domain.RiskRatingMedium, *got.OriginalRating)

	// Second edit moves the live value again but leaves the shadow alone.
	got, err = svc.EditFinding(context.Background(), finding.ID, FindingEditInput{
		Rating: ratingPtr(domain.RiskRatingCritical),
	}, testIdentity())
	require.NoError(t, err)

	assert.Equal(t, domain.RiskRatingCritical, got.Rating)
	require.NotNil(t, got.OriginalRating)
	assert.Equal(t, domain.RiskRatingMedium, *got.OriginalRating)

	entries := m.audit.recorded()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.FieldChange{Before: "MEDIUM", After: "HIGH"}, entries[0].Changes["rating"])
	assert.Equal(t, domain.FieldChange{Before: "HIGH", After: "CRITICAL"}, entries[1].Changes["rating"])
}

func TestEditFinding_NoChangeSkipsPersistence(t *testing.T) {
	svc, m := newTestService()
	finding := aiFinding(uuid.New())

	m.contracts.GetFindingFunc = func(_ context.Context, _ uuid.UUID) (domain.Finding, error) {
		return finding, nil
	}
	m.contracts.UpdateFindingFunc = func(_ context.Context, _ domain.Finding) error {
		t.Fatal("update must not be called for a no-op edit")
		return nil
	}

	got, err := svc.EditFinding(context.Background(), finding.ID, FindingEditInput{
		Rating: ratingPtr(finding.Rating),
	}, testIdentity())
	require.NoError(t, err)

	assert.Nil(t, got.OriginalRating)
	assert.Empty(t, m.audit.recorded())
}

func TestAddFinding(t *testing.T) {
	svc, m := newTestService()
	contractID := uuid.New()

	m.contracts.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (domain.ContractReview, error) {
		c := pendingContract(contractID)
		c.Status = domain.ReviewStatusAnalyzed
		return c, nil
	}
	var inserted domain.Finding
	m.contracts.InsertFindingFunc = func(_ context.Context, f domain.Finding) error {
		inserted = f
		return nil
	}

	got, err := svc.AddFinding(context.Background(), contractID, AddFindingInput{
		Category:   "termination",
		ClauseText: "Either party may terminate without notice.",
		Rating:     domain.RiskRatingHigh,
		Rationale:  "No cure period.",
	}, testIdentity())
	require.NoError(t, err)

	assert.True(t, got.IsManuallyAdded)
	assert.Equal(t, contractID, inserted.ContractID)

	entries := m.audit.recorded()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionCreated, entries[0].Action)
	assert.Equal(t, domain.EntityTypeFinding, entries[0].EntityType)
	assert.Equal(t, true, entries[0].Metadata["is_manually_added"])
}

func TestAddFinding_CapReached(t *testing.T) {
	svc, m := newTestService()
	svc.cfg.MaxFindings = 1
	contractID := uuid.New()

	m.contracts.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (domain.ContractReview, error) {
		c := pendingContract(contractID)
		c.Status = domain.ReviewStatusAnalyzed
		c.Findings = []domain.Finding{aiFinding(contractID)}
		return c, nil
	}

	_, err := svc.AddFinding(context.Background(), contractID, AddFindingInput{
		Category:   "termination",
		ClauseText: "Either party may terminate without notice.",
		Rating:     domain.RiskRatingHigh,
	}, testIdentity())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteContract(t *testing.T) {
	svc, m := newTestService()
	id := uuid.New()

	contract := pendingContract(id)
	contract.Findings = []domain.Finding{aiFinding(id), aiFinding(id)}
	m.contracts.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (domain.ContractReview, error) {
		return contract, nil
	}
	deleted := false
	m.contracts.DeleteFunc = func(_ context.Context, _ uuid.UUID) error {
		deleted = true
		return nil
	}

	err := svc.DeleteContract(context.Background(), id, testIdentity())
	require.NoError(t, err)
	assert.True(t, deleted)

	entries := m.audit.recorded()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionDeleted, entries[0].Action)
	assert.Equal(t, 2, entries[0].Metadata["findings"])
}

func TestGetContract_NotFound(t *testing.T) {
	svc, m := newTestService()

	m.contracts.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (domain.ContractReview, error) {
		return domain.ContractReview{}, domain.ErrNotFound
	}

	_, err := svc.GetContract(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransition_RepoFailureSurfaces(t *testing.T) {
	svc, m := newTestService()
	id := uuid.New()
	boom := errors.New("connection reset")

	contract := pendingContract(id)
	contract.Status = domain.ReviewStatusAnalyzed
	m.contracts.GetByIDFunc = func(_ context.Context, _ uuid.UUID) (domain.ContractReview, error) {
		return contract, nil
	}
	m.contracts.SetReviewedFunc = func(_ context.Context, _ uuid.UUID, _ time.Time) error {
		return boom
	}

	_, err := svc.CompleteReview(context.Background(), id, testIdentity())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, m.notify.sent())
}
