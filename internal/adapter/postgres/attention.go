package postgres

import (
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// Builder returns a squirrel statement builder configured for PostgreSQL
// placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// AttentionRow holds the flattened flag/queue columns shared by every
// reviewable table. Embed it in a row struct to scan the attention sub-state.
type AttentionRow struct {
	Flagged            bool       `db:"flagged"`
	FlagNote           *string    `db:"flag_note"`
	FlaggedAt          *time.Time `db:"flagged_at"`
	FlaggedBy          *string    `db:"flagged_by"`
	FlagResolved       bool       `db:"flag_resolved"`
	FlagResolvedAt     *time.Time `db:"flag_resolved_at"`
	FlagResolvedBy     *string    `db:"flag_resolved_by"`
	FlagResolutionNote *string    `db:"flag_resolution_note"`

	Queued       bool       `db:"queued"`
	QueuedAt     *time.Time `db:"queued_at"`
	QueuedBy     *string    `db:"queued_by"`
	QueuedNote   *string    `db:"queued_note"`
	ReviewerID   *string    `db:"reviewer_id"`
	ReviewerName *string    `db:"reviewer_name"`
}

// AttentionColumns lists the attention column names in AttentionRow order.
func AttentionColumns() []string {
	return []string{
		"flagged", "flag_note", "flagged_at", "flagged_by",
		"flag_resolved", "flag_resolved_at", "flag_resolved_by", "flag_resolution_note",
		"queued", "queued_at", "queued_by", "queued_note",
		"reviewer_id", "reviewer_name",
	}
}

// ToDomain converts the flattened columns into a domain.Attention.
func (r AttentionRow) ToDomain() domain.Attention {
	return domain.Attention{
		Flag: domain.FlagState{
			Flagged:            r.Flagged,
			FlagNote:           r.FlagNote,
			FlaggedAt:          r.FlaggedAt,
			FlaggedBy:          r.FlaggedBy,
			FlagResolved:       r.FlagResolved,
			FlagResolvedAt:     r.FlagResolvedAt,
			FlagResolvedBy:     r.FlagResolvedBy,
			FlagResolutionNote: r.FlagResolutionNote,
		},
		Queue: domain.QueueState{
			Queued:       r.Queued,
			QueuedAt:     r.QueuedAt,
			QueuedBy:     r.QueuedBy,
			QueuedNote:   r.QueuedNote,
			ReviewerID:   r.ReviewerID,
			ReviewerName: r.ReviewerName,
		},
	}
}

// AttentionToRow flattens a domain.Attention into its column values.
func AttentionToRow(a domain.Attention) AttentionRow {
	return AttentionRow{
		Flagged:            a.Flag.Flagged,
		FlagNote:           a.Flag.FlagNote,
		FlaggedAt:          a.Flag.FlaggedAt,
		FlaggedBy:          a.Flag.FlaggedBy,
		FlagResolved:       a.Flag.FlagResolved,
		FlagResolvedAt:     a.Flag.FlagResolvedAt,
		FlagResolvedBy:     a.Flag.FlagResolvedBy,
		FlagResolutionNote: a.Flag.FlagResolutionNote,
		Queued:             a.Queue.Queued,
		QueuedAt:           a.Queue.QueuedAt,
		QueuedBy:           a.Queue.QueuedBy,
		QueuedNote:         a.Queue.QueuedNote,
		ReviewerID:         a.Queue.ReviewerID,
		ReviewerName:       a.Queue.ReviewerName,
	}
}

// AttentionSetMap returns the column-to-value map for a full attention
// overwrite. Sub-state updates are last-writer-wins at the row level.
func AttentionSetMap(a domain.Attention) map[string]any {
	row := AttentionToRow(a)
	return map[string]any{
		"flagged":              row.Flagged,
		"flag_note":            row.FlagNote,
		"flagged_at":           row.FlaggedAt,
		"flagged_by":           row.FlaggedBy,
		"flag_resolved":        row.FlagResolved,
		"flag_resolved_at":     row.FlagResolvedAt,
		"flag_resolved_by":     row.FlagResolvedBy,
		"flag_resolution_note": row.FlagResolutionNote,
		"queued":               row.Queued,
		"queued_at":            row.QueuedAt,
		"queued_by":            row.QueuedBy,
		"queued_note":          row.QueuedNote,
		"reviewer_id":          row.ReviewerID,
		"reviewer_name":        row.ReviewerName,
	}
}
