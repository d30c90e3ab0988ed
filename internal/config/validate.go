package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be > 0 (got %d)", c.LLM.MaxTokens)
	}

	if c.Notify.WebhookURL != "" {
		u, err := url.Parse(c.Notify.WebhookURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("notify.webhook_url must be an absolute URL (got %q)", c.Notify.WebhookURL)
		}
	}
	if c.Notify.AwaitTimeout > c.Notify.Timeout {
		return fmt.Errorf("notify.await_timeout (%v) must not exceed notify.timeout (%v)",
			c.Notify.AwaitTimeout, c.Notify.Timeout)
	}

	if c.Review.StuckAnalysisAge <= 0 {
		return fmt.Errorf("review.stuck_analysis_age must be > 0 (got %v)", c.Review.StuckAnalysisAge)
	}
	if c.Review.FeedbackClauseLimit <= 0 {
		return fmt.Errorf("review.feedback_clause_limit must be > 0 (got %d)", c.Review.FeedbackClauseLimit)
	}

	return nil
}
