package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/verityhq/dealdesk-backend/internal/adapter/llm"
	"github.com/verityhq/dealdesk-backend/internal/adapter/notify"
	"github.com/verityhq/dealdesk-backend/internal/adapter/postgres"
	answerrepo "github.com/verityhq/dealdesk-backend/internal/adapter/postgres/answer"
	auditrepo "github.com/verityhq/dealdesk-backend/internal/adapter/postgres/audit"
	contractrepo "github.com/verityhq/dealdesk-backend/internal/adapter/postgres/contract"
	"github.com/verityhq/dealdesk-backend/internal/config"
	"github.com/verityhq/dealdesk-backend/internal/service/audit"
	"github.com/verityhq/dealdesk-backend/internal/service/feedback"
	"github.com/verityhq/dealdesk-backend/internal/service/review"
	"github.com/verityhq/dealdesk-backend/internal/transport/middleware"
	"github.com/verityhq/dealdesk-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, runs database
// migrations, wires adapters into services, and serves HTTP until the
// context is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	contracts := contractrepo.New(pool)
	answers := answerrepo.New(pool)
	auditEntries := auditrepo.New(pool)

	auditSvc := audit.NewService(logger, auditEntries)
	analyzer := llm.New(cfg.LLM, logger)
	notifier := notify.NewWebhook(cfg.Notify, logger)

	reviewSvc := review.NewService(
		logger,
		contracts,
		answers,
		auditSvc,
		analyzer,
		notifier,
		txManager,
		review.Config{
			StuckAnalysisAge:   cfg.Review.StuckAnalysisAge,
			MaxFindings:        cfg.Review.MaxFindingsPerContract,
			NotifyAwaitTimeout: cfg.Notify.AwaitTimeout,
		},
	)
	feedbackSvc := feedback.NewService(logger, contracts, cfg.Review.FeedbackClauseLimit)

	router := rest.NewRouter(rest.Handlers{
		Health:   rest.NewHealthHandler(pool, BuildVersion()),
		Review:   rest.NewReviewHandler(reviewSvc, logger),
		Answers:  rest.NewAnswerHandler(reviewSvc, logger),
		Audit:    rest.NewAuditHandler(auditSvc, logger),
		Feedback: rest.NewFeedbackHandler(feedbackSvc, logger),
	})

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.RequestMeta,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("stopped")
	return nil
}
