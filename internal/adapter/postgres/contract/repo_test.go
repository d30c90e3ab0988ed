package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/verityhq/dealdesk-backend/internal/adapter/postgres/testutil"
	"github.com/verityhq/dealdesk-backend/internal/domain"
)

func contractRowColumns() []string {
	return []string{
		"id", "title", "content", "status", "summary", "risk_rating",
		"flagged", "flag_note", "flagged_at", "flagged_by",
		"flag_resolved", "flag_resolved_at", "flag_resolved_by", "flag_resolution_note",
		"queued", "queued_at", "queued_by", "queued_note",
		"reviewer_id", "reviewer_name",
		"created_at", "analyzed_at", "reviewed_at", "updated_at",
	}
}

func addContractRow(rows *pgxmock.Rows, id uuid.UUID, title, status string, now time.Time) *pgxmock.Rows {
	return rows.AddRow(
		id, title, "", status, nil, nil,
		false, nil, nil, nil,
		false, nil, nil, nil,
		false, nil, nil, nil,
		nil, nil,
		now, nil, nil, now,
	)
}

func findingRowColumns() []string {
	return []string{
		"id", "contract_id", "category", "clause_text", "rating", "rationale",
		"suggested_response", "is_manually_added",
		"original_rating", "original_rationale", "original_suggested_response",
		"created_at", "updated_at",
	}
}

func errAs23505() error {
	return &pgconn.PgError{Code: "23505"}
}

func TestRepo_Create(t *testing.T) {
	contractID := uuid.New()
	now := time.Now()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr bool
	}{
		{
			name: "successful creation",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO contract_reviews`).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
			wantErr: false,
		},
		{
			name: "duplicate id becomes already exists",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO contract_reviews`).
					WillReturnError(errAs23505())
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier, mock := testutil.NewMockQuerier(t)
			repo := New(querier)
			tt.setup(mock)

			err := repo.Create(context.Background(), domain.ContractReview{
				ID:        contractID,
				Title:     "MSA Acme Corp",
				Status:    domain.ReviewStatusPending,
				CreatedAt: now,
				UpdatedAt: now,
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("Create() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.name == "duplicate id becomes already exists" && err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
				t.Errorf("Create() expected ErrAlreadyExists, got %v", err)
			}

			testutil.ExpectationsWereMet(t, mock)
		})
	}
}

func TestRepo_UpdateStatusIf(t *testing.T) {
	contractID := uuid.New()
	now := time.Now()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "successful transition",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE contract_reviews`).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			wantErr: nil,
		},
		{
			name: "status already changed returns conflict",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE contract_reviews`).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				mock.ExpectQuery(`SELECT status FROM contract_reviews`).
					WithArgs(contractID).
					WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("ANALYZING"))
			},
			wantErr: domain.ErrConflict,
		},
		{
			name: "missing row returns not found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE contract_reviews`).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				mock.ExpectQuery(`SELECT status FROM contract_reviews`).
					WithArgs(contractID).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier, mock := testutil.NewMockQuerier(t)
			repo := New(querier)
			tt.setup(mock)

			err := repo.UpdateStatusIf(context.Background(), contractID,
				domain.ReviewStatusPending, domain.ReviewStatusAnalyzing, now)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("UpdateStatusIf() error = %v, want nil", err)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Errorf("UpdateStatusIf() error = %v, want errors.Is %v", err, tt.wantErr)
			}

			testutil.ExpectationsWereMet(t, mock)
		})
	}
}

func TestRepo_SaveAnalysis(t *testing.T) {
	contractID := uuid.New()
	now := time.Now()

	finding := domain.Finding{
		ID:                uuid.New(),
		ContractID:        contractID,
		Category:          "liability",
		ClauseText:        "Supplier liability is unlimited.",
		Rating:            domain.RiskRatingHigh,
		Rationale:         "No cap on liability.",
		SuggestedResponse: "Negotiate a liability cap.",
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	t.Run("replaces AI findings and keeps manual ones", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		repo := New(querier)

		mock.ExpectExec(`UPDATE contract_reviews`).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(`DELETE FROM findings`).
			WithArgs(contractID, false).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		mock.ExpectExec(`INSERT INTO findings`).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.SaveAnalysis(context.Background(), contractID,
			"High risk MSA", domain.RiskRatingHigh, []domain.Finding{finding}, now)
		if err != nil {
			t.Fatalf("SaveAnalysis() error = %v", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("no longer analyzing returns conflict", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		repo := New(querier)

		mock.ExpectExec(`UPDATE contract_reviews`).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(`SELECT status FROM contract_reviews`).
			WithArgs(contractID).
			WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("PENDING"))

		err := repo.SaveAnalysis(context.Background(), contractID,
			"High risk MSA", domain.RiskRatingHigh, nil, now)
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("SaveAnalysis() error = %v, want ErrConflict", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})
}

func TestRepo_UpdateAttention(t *testing.T) {
	contractID := uuid.New()
	now := time.Now()
	note := "needs legal sign-off"

	att := domain.Attention{}.WithFlag(true, &note, "ana@verity.io", now)

	t.Run("successful update", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		repo := New(querier)

		mock.ExpectExec(`UPDATE contract_reviews`).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		if err := repo.UpdateAttention(context.Background(), contractID, att, now); err != nil {
			t.Fatalf("UpdateAttention() error = %v", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("missing row returns not found", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		repo := New(querier)

		mock.ExpectExec(`UPDATE contract_reviews`).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateAttention(context.Background(), contractID, att, now)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("UpdateAttention() error = %v, want ErrNotFound", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})
}

func TestRepo_GetByID(t *testing.T) {
	contractID := uuid.New()
	findingID := uuid.New()
	now := time.Now()

	t.Run("found with findings", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		repo := New(querier)

		contractRows := addContractRow(
			pgxmock.NewRows(contractRowColumns()), contractID, "MSA Acme Corp", "ANALYZED", now)
		mock.ExpectQuery(`SELECT .+ FROM contract_reviews`).
			WithArgs(contractID).
			WillReturnRows(contractRows)

		findingRows := pgxmock.NewRows(findingRowColumns()).
			AddRow(findingID, contractID, "liability", "Unlimited liability.", "HIGH",
				"No cap.", "Negotiate a cap.", false, nil, nil, nil, now, now)
		mock.ExpectQuery(`SELECT .+ FROM findings`).
			WithArgs(contractID).
			WillReturnRows(findingRows)

		review, err := repo.GetByID(context.Background(), contractID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if review.ID != contractID {
			t.Errorf("GetByID() id = %v, want %v", review.ID, contractID)
		}
		if review.Status != domain.ReviewStatusAnalyzed {
			t.Errorf("GetByID() status = %v, want ANALYZED", review.Status)
		}
		if len(review.Findings) != 1 || review.Findings[0].ID != findingID {
			t.Errorf("GetByID() findings = %+v, want one finding %v", review.Findings, findingID)
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("not found", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		repo := New(querier)

		mock.ExpectQuery(`SELECT .+ FROM contract_reviews`).
			WithArgs(contractID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(context.Background(), contractID)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})
}

func TestRepo_GetFinding(t *testing.T) {
	findingID := uuid.New()
	contractID := uuid.New()
	now := time.Now()
	origRationale := "Original rationale."

	querier, mock := testutil.NewMockQuerier(t)
	repo := New(querier)

	rows := pgxmock.NewRows(findingRowColumns()).
		AddRow(findingID, contractID, "data_privacy", "Data stored abroad.", "MEDIUM",
			"Edited rationale.", "Ask for EU residency.", false,
			nil, &origRationale, nil, now, now)
	mock.ExpectQuery(`SELECT .+ FROM findings`).
		WithArgs(findingID).
		WillReturnRows(rows)

	f, err := repo.GetFinding(context.Background(), findingID)
	if err != nil {
		t.Fatalf("GetFinding() error = %v", err)
	}
	if f.OriginalRationale == nil || *f.OriginalRationale != origRationale {
		t.Errorf("GetFinding() original_rationale = %v, want %q", f.OriginalRationale, origRationale)
	}
	if !f.Edited() {
		t.Error("GetFinding() Edited() = false, want true")
	}

	testutil.ExpectationsWereMet(t, mock)
}

func TestRepo_ResetStuckAnalyses(t *testing.T) {
	stuckID := uuid.New()
	now := time.Now()
	cutoff := now.Add(-30 * time.Minute)

	querier, mock := testutil.NewMockQuerier(t)
	repo := New(querier)

	rows := pgxmock.NewRows([]string{"id"}).AddRow(stuckID)
	mock.ExpectQuery(`UPDATE contract_reviews`).
		WillReturnRows(rows)

	ids, err := repo.ResetStuckAnalyses(context.Background(), cutoff, now)
	if err != nil {
		t.Fatalf("ResetStuckAnalyses() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != stuckID {
		t.Errorf("ResetStuckAnalyses() ids = %v, want [%v]", ids, stuckID)
	}

	testutil.ExpectationsWereMet(t, mock)
}

func TestRepo_Delete(t *testing.T) {
	contractID := uuid.New()

	t.Run("successful delete", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		repo := New(querier)

		mock.ExpectExec(`DELETE FROM contract_reviews`).
			WithArgs(contractID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		if err := repo.Delete(context.Background(), contractID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("not found", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		repo := New(querier)

		mock.ExpectExec(`DELETE FROM contract_reviews`).
			WithArgs(contractID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.Delete(context.Background(), contractID)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Delete() error = %v, want ErrNotFound", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})
}
