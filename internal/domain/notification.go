package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification event types.
const (
	NotificationReviewRequested = "review_requested"
	NotificationReviewCompleted = "review_completed"
)

// NotificationEvent is the payload delivered to the notification sink when a
// reviewable item needs human attention. Delivery is best-effort: a failed
// notification never fails the operation that produced it.
type NotificationEvent struct {
	Type        string
	EntityType  EntityType
	EntityID    uuid.UUID
	EntityLabel string
	Actor       string
	Assignee    string
	Note        string
	OccurredAt  time.Time
}
