package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "nil error",
			err:     nil,
			wantErr: nil,
		},
		{
			name:    "no rows becomes not found",
			err:     pgx.ErrNoRows,
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "unique violation becomes already exists",
			err:     &pgconn.PgError{Code: "23505"},
			wantErr: domain.ErrAlreadyExists,
		},
		{
			name:    "foreign key violation becomes not found",
			err:     &pgconn.PgError{Code: "23503"},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "check violation becomes validation",
			err:     &pgconn.PgError{Code: "23514"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "deadline exceeded passes through",
			err:     context.DeadlineExceeded,
			wantErr: context.DeadlineExceeded,
		},
		{
			name:    "canceled passes through",
			err:     context.Canceled,
			wantErr: context.Canceled,
		},
		{
			name:    "unknown error is wrapped",
			err:     errors.New("connection refused"),
			wantErr: nil, // checked separately below
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MapError(tt.err, "contract", id)

			if tt.err == nil {
				if got != nil {
					t.Fatalf("MapError(nil) = %v, want nil", got)
				}
				return
			}
			if tt.wantErr != nil {
				if !errors.Is(got, tt.wantErr) {
					t.Fatalf("MapError(%v) = %v, want errors.Is %v", tt.err, got, tt.wantErr)
				}
				return
			}
			// unknown errors keep the original in the chain
			if !errors.Is(got, tt.err) {
				t.Fatalf("MapError(%v) = %v, want original error wrapped", tt.err, got)
			}
		})
	}
}

func TestMapError_IncludesEntityAndID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	got := MapError(pgx.ErrNoRows, "answer", id)

	if got == nil {
		t.Fatal("expected error, got nil")
	}
	want := "answer " + id.String()
	if msg := got.Error(); len(msg) < len(want) || msg[:len(want)] != want {
		t.Fatalf("error message %q does not start with %q", msg, want)
	}
}
