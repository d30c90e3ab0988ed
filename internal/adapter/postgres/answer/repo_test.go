package answer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/verityhq/dealdesk-backend/internal/adapter/postgres/testutil"
	"github.com/verityhq/dealdesk-backend/internal/domain"
)

func answerRowColumns() []string {
	return []string{
		"id", "project_id", "question", "answer", "confidence", "status",
		"user_edited_answer", "original_answer", "clarification_used",
		"flagged", "flag_note", "flagged_at", "flagged_by",
		"flag_resolved", "flag_resolved_at", "flag_resolved_by", "flag_resolution_note",
		"queued", "queued_at", "queued_by", "queued_note",
		"reviewer_id", "reviewer_name",
		"created_at", "reviewed_at", "updated_at",
	}
}

func addAnswerRow(rows *pgxmock.Rows, id, projectID uuid.UUID, status string, edited *string, now time.Time) *pgxmock.Rows {
	var original *string
	if edited != nil {
		orig := "AI answer"
		original = &orig
	}
	return rows.AddRow(
		id, projectID, "Do you encrypt data at rest?", "AI answer", nil, status,
		edited, original, false,
		false, nil, nil, nil,
		false, nil, nil, nil,
		false, nil, nil, nil,
		nil, nil,
		now, nil, now,
	)
}

func TestRepo_GetByID(t *testing.T) {
	answerID := uuid.New()
	projectID := uuid.New()
	now := time.Now()
	edited := "Yes, AES-256 at rest."

	t.Run("found with edit", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		repo := New(querier)

		rows := addAnswerRow(pgxmock.NewRows(answerRowColumns()), answerID, projectID, "REQUESTED", &edited, now)
		mock.ExpectQuery(`SELECT .+ FROM project_answers`).
			WithArgs(answerID).
			WillReturnRows(rows)

		a, err := repo.GetByID(context.Background(), answerID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if a.Status != domain.AnswerStatusRequested {
			t.Errorf("GetByID() status = %v, want REQUESTED", a.Status)
		}
		if a.EffectiveAnswer() != edited {
			t.Errorf("GetByID() effective answer = %q, want %q", a.EffectiveAnswer(), edited)
		}
		if !a.Corrected() {
			t.Error("GetByID() Corrected() = false, want true")
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("not found", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		repo := New(querier)

		mock.ExpectQuery(`SELECT .+ FROM project_answers`).
			WithArgs(answerID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(context.Background(), answerID)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})
}

func TestRepo_ListByProject(t *testing.T) {
	projectID := uuid.New()
	now := time.Now()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantLen int
	}{
		{
			name: "returns answers in creation order",
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(answerRowColumns())
				addAnswerRow(rows, uuid.New(), projectID, "PENDING", nil, now)
				addAnswerRow(rows, uuid.New(), projectID, "APPROVED", nil, now)
				mock.ExpectQuery(`SELECT .+ FROM project_answers`).
					WithArgs(projectID).
					WillReturnRows(rows)
			},
			wantLen: 2,
		},
		{
			name: "empty project returns empty slice",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .+ FROM project_answers`).
					WithArgs(projectID).
					WillReturnRows(pgxmock.NewRows(answerRowColumns()))
			},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier, mock := testutil.NewMockQuerier(t)
			repo := New(querier)
			tt.setup(mock)

			answers, err := repo.ListByProject(context.Background(), projectID)
			if err != nil {
				t.Fatalf("ListByProject() error = %v", err)
			}
			if len(answers) != tt.wantLen {
				t.Errorf("ListByProject() returned %d answers, want %d", len(answers), tt.wantLen)
			}

			testutil.ExpectationsWereMet(t, mock)
		})
	}
}

func TestRepo_UpdateStatusIf(t *testing.T) {
	answerID := uuid.New()
	now := time.Now()

	tests := []struct {
		name    string
		from    domain.AnswerStatus
		to      domain.AnswerStatus
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "request review",
			from: domain.AnswerStatusPending,
			to:   domain.AnswerStatusRequested,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE project_answers`).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "approve stamps reviewed_at",
			from: domain.AnswerStatusRequested,
			to:   domain.AnswerStatusApproved,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE project_answers SET .*reviewed_at`).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "concurrent change returns conflict",
			from: domain.AnswerStatusPending,
			to:   domain.AnswerStatusRequested,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE project_answers`).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				mock.ExpectQuery(`SELECT status FROM project_answers`).
					WithArgs(answerID).
					WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("APPROVED"))
			},
			wantErr: domain.ErrConflict,
		},
		{
			name: "missing row returns not found",
			from: domain.AnswerStatusPending,
			to:   domain.AnswerStatusRequested,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE project_answers`).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				mock.ExpectQuery(`SELECT status FROM project_answers`).
					WithArgs(answerID).
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

			err := repo.UpdateStatusIf(context.Background(), answerID, tt.from, tt.to, now)

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

func TestRepo_UpdateAnswer(t *testing.T) {
	answerID := uuid.New()
	now := time.Now()
	edited := "Corrected answer"
	original := "AI answer"

	t.Run("persists edit and original", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		repo := New(querier)

		mock.ExpectExec(`UPDATE project_answers`).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateAnswer(context.Background(), domain.ProjectAnswer{
			ID:               answerID,
			UserEditedAnswer: &edited,
			OriginalAnswer:   &original,
			UpdatedAt:        now,
		})
		if err != nil {
			t.Fatalf("UpdateAnswer() error = %v", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})

	t.Run("missing row returns not found", func(t *testing.T) {
		querier, mock := testutil.NewMockQuerier(t)
		repo := New(querier)

		mock.ExpectExec(`UPDATE project_answers`).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateAnswer(context.Background(), domain.ProjectAnswer{ID: answerID, UpdatedAt: now})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("UpdateAnswer() error = %v, want ErrNotFound", err)
		}

		testutil.ExpectationsWereMet(t, mock)
	})
}

func TestRepo_SetClarificationUsed(t *testing.T) {
	answerID := uuid.New()
	now := time.Now()

	querier, mock := testutil.NewMockQuerier(t)
	repo := New(querier)

	mock.ExpectExec(`UPDATE project_answers`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.SetClarificationUsed(context.Background(), answerID, now); err != nil {
		t.Fatalf("SetClarificationUsed() error = %v", err)
	}

	testutil.ExpectationsWereMet(t, mock)
}
