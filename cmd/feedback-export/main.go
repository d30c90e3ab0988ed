// Command feedback-export prints the AI feedback report for a contract
// review as JSON on stdout.
//
// Usage:
//
//	feedback-export <contract-id>
//
// Requires DATABASE_DSN environment variable to be set.
package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/adapter/postgres"
	contractrepo "github.com/verityhq/dealdesk-backend/internal/adapter/postgres/contract"
	"github.com/verityhq/dealdesk-backend/internal/config"
	"github.com/verityhq/dealdesk-backend/internal/service/feedback"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: feedback-export <contract-id>")
	}

	contractID, err := uuid.Parse(os.Args[1])
	if err != nil {
		log.Fatalf("invalid contract id %q: %v", os.Args[1], err)
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		log.Fatal("DATABASE_DSN environment variable is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, config.DatabaseConfig{
		DSN:      dsn,
		MaxConns: 2,
		MinConns: 1,
	})
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := feedback.NewService(logger, contractrepo.New(pool), 0)

	report, err := svc.ExportFeedback(ctx, contractID)
	if err != nil {
		log.Fatalf("export feedback: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("encode report: %v", err)
	}
}
