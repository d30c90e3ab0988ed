package domain

import (
	"time"

	"github.com/google/uuid"
)

// Actor identifies the human who performed an audited action.
// A nil *Actor on an AuditEntry means the action was taken by the system.
type Actor struct {
	Name  string
	Email string
}

// Label returns a display string for the actor.
func (a Actor) Label() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

// RequestContext snapshots the request metadata captured with an audit entry.
type RequestContext struct {
	IP        string
	UserAgent string
}

// AuditEntry is an immutable record of a significant action taken on a
// reviewable item. Entries are append-only: created once, never edited or
// removed.
type AuditEntry struct {
	ID          uuid.UUID
	Action      AuditAction
	EntityType  EntityType
	EntityID    uuid.UUID
	EntityLabel string
	Actor       *Actor
	Changes     ChangeSet
	Metadata    map[string]any
	Request     *RequestContext
	CreatedAt   time.Time
}
