// Package notify delivers notification events to an outbound webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/verityhq/dealdesk-backend/internal/config"
	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// Webhook posts notification events as JSON to a configured URL.
// An empty URL disables delivery entirely.
type Webhook struct {
	url    string
	client *http.Client
	log    *slog.Logger
}

// NewWebhook creates a webhook notifier from the notification configuration.
func NewWebhook(cfg config.NotifyConfig, log *slog.Logger) *Webhook {
	return &Webhook{
		url:    cfg.WebhookURL,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// Enabled reports whether a webhook URL is configured.
func (w *Webhook) Enabled() bool {
	return w.url != ""
}

// payload is the wire format of a webhook delivery.
type payload struct {
	Type        string    `json:"type"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	EntityLabel string    `json:"entity_label,omitempty"`
	Actor       string    `json:"actor,omitempty"`
	Assignee    string    `json:"assignee,omitempty"`
	Note        string    `json:"note,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notify posts one event to the webhook. Returns nil immediately when the
// webhook is disabled.
func (w *Webhook) Notify(ctx context.Context, event domain.NotificationEvent) error {
	if !w.Enabled() {
		return nil
	}

	body, err := json.Marshal(payload{
		Type:        event.Type,
		EntityType:  string(event.EntityType),
		EntityID:    event.EntityID.String(),
		EntityLabel: event.EntityLabel,
		Actor:       event.Actor,
		Assignee:    event.Assignee,
		Note:        event.Note,
		OccurredAt:  event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("deliver notification: webhook returned %d", resp.StatusCode)
	}

	w.log.Debug("notification delivered",
		slog.String("type", event.Type),
		slog.String("entity_id", event.EntityID.String()),
	)
	return nil
}
