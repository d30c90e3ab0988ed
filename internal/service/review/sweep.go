package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// ResetStuckAnalyses returns contracts stuck in ANALYZING longer than
// StuckAnalysisAge to PENDING. Analyses get stuck when the process holding
// the in-flight guard dies before rolling back. Runs as a system action.
func (s *Service) ResetStuckAnalyses(ctx context.Context) (int, error) {
	now := time.Now()
	cutoff := now.Add(-s.cfg.StuckAnalysisAge)

	ids, err := s.contracts.ResetStuckAnalyses(ctx, cutoff, now)
	if err != nil {
		return 0, fmt.Errorf("reset stuck analyses: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	for _, id := range ids {
		entry := auditEntry(domain.AuditActionStatusChanged, domain.EntityTypeContract, id, "", Identity{})
		entry.Changes = domain.ChangeSet{
			"status": {Before: string(domain.ReviewStatusAnalyzing), After: string(domain.ReviewStatusPending)},
		}
		entry.Metadata = map[string]any{"reason": "stuck_analysis"}
		s.audit.RecordBestEffort(ctx, entry)
	}

	s.log.WarnContext(ctx, "reset stuck analyses",
		slog.Int("count", len(ids)),
		slog.Duration("older_than", s.cfg.StuckAnalysisAge),
	)
	return len(ids), nil
}
