// Package audit implements the audit log repository using PostgreSQL.
// The log is append-only: records are created once, never edited or removed.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/verityhq/dealdesk-backend/internal/adapter/postgres"
	"github.com/verityhq/dealdesk-backend/internal/domain"
)

const auditTable = "audit_log"

var auditColumns = []string{
	"id", "action", "entity_type", "entity_id", "entity_label",
	"actor_name", "actor_email", "changes", "metadata",
	"request_ip", "request_user_agent", "created_at",
}

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new audit log repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

func (r *Repo) q(ctx context.Context) postgres.Querier {
	return postgres.QuerierFromCtx(ctx, r.db)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create appends a new audit record.
func (r *Repo) Create(ctx context.Context, entry domain.AuditEntry) error {
	changesJSON, err := marshalJSONB(entry.Changes)
	if err != nil {
		return fmt.Errorf("audit entry %s marshal changes: %w", entry.ID, err)
	}
	metadataJSON, err := marshalJSONB(entry.Metadata)
	if err != nil {
		return fmt.Errorf("audit entry %s marshal metadata: %w", entry.ID, err)
	}

	var actorName, actorEmail *string
	if entry.Actor != nil {
		actorName = &entry.Actor.Name
		actorEmail = &entry.Actor.Email
	}
	var requestIP, requestUA *string
	if entry.Request != nil {
		requestIP = &entry.Request.IP
		requestUA = &entry.Request.UserAgent
	}

	sql, args, err := postgres.Builder().
		Insert(auditTable).
		Columns(auditColumns...).
		Values(
			entry.ID, string(entry.Action), string(entry.EntityType), entry.EntityID,
			entry.EntityLabel, actorName, actorEmail, changesJSON, metadataJSON,
			requestIP, requestUA, entry.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert audit entry: %w", err)
	}

	if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "audit_entry", entry.ID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListByEntity returns the change history of one entity, newest first.
func (r *Repo) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditEntry, error) {
	sql, args, err := postgres.Builder().
		Select(auditColumns...).
		From(auditTable).
		Where(squirrel.Eq{"entity_type": string(entityType), "entity_id": entityID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list audit by entity: %w", err)
	}

	return r.list(ctx, sql, args)
}

// ListRecent returns the most recent audit records across all entities.
func (r *Repo) ListRecent(ctx context.Context, limit, offset int) ([]domain.AuditEntry, error) {
	sql, args, err := postgres.Builder().
		Select(auditColumns...).
		From(auditTable).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list recent audit: %w", err)
	}

	return r.list(ctx, sql, args)
}

func (r *Repo) list(ctx context.Context, sql string, args []any) ([]domain.AuditEntry, error) {
	var rows []auditRow
	if err := pgxscan.Select(ctx, r.q(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	entries := make([]domain.AuditEntry, len(rows))
	for i, row := range rows {
		entry, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

type auditRow struct {
	ID               uuid.UUID `db:"id"`
	Action           string    `db:"action"`
	EntityType       string    `db:"entity_type"`
	EntityID         uuid.UUID `db:"entity_id"`
	EntityLabel      string    `db:"entity_label"`
	ActorName        *string   `db:"actor_name"`
	ActorEmail       *string   `db:"actor_email"`
	Changes          []byte    `db:"changes"`
	Metadata         []byte    `db:"metadata"`
	RequestIP        *string   `db:"request_ip"`
	RequestUserAgent *string   `db:"request_user_agent"`
	CreatedAt        time.Time `db:"created_at"`
}

func (r auditRow) toDomain() (domain.AuditEntry, error) {
	entry := domain.AuditEntry{
		ID:          r.ID,
		Action:      domain.AuditAction(r.Action),
		EntityType:  domain.EntityType(r.EntityType),
		EntityID:    r.EntityID,
		EntityLabel: r.EntityLabel,
		CreatedAt:   r.CreatedAt,
	}

	if r.ActorName != nil || r.ActorEmail != nil {
		entry.Actor = &domain.Actor{
			Name:  deref(r.ActorName),
			Email: deref(r.ActorEmail),
		}
	}
	if r.RequestIP != nil || r.RequestUserAgent != nil {
		entry.Request = &domain.RequestContext{
			IP:        deref(r.RequestIP),
			UserAgent: deref(r.RequestUserAgent),
		}
	}

	if len(r.Changes) > 0 {
		if err := json.Unmarshal(r.Changes, &entry.Changes); err != nil {
			return domain.AuditEntry{}, fmt.Errorf("audit entry %s unmarshal changes: %w", r.ID, err)
		}
	}
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &entry.Metadata); err != nil {
			return domain.AuditEntry{}, fmt.Errorf("audit entry %s unmarshal metadata: %w", r.ID, err)
		}
	}

	return entry, nil
}

// marshalJSONB serializes a value for a JSONB column, keeping NULL for
// empty maps so the column stays queryable with IS NULL.
func marshalJSONB(v any) ([]byte, error) {
	switch val := v.(type) {
	case domain.ChangeSet:
		if len(val) == 0 {
			return nil, nil
		}
	case map[string]any:
		if len(val) == 0 {
			return nil, nil
		}
	case nil:
		return nil, nil
	}
	return json.Marshal(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
