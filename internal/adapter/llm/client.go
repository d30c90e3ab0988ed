// Package llm implements the contract analysis client on top of the
// Anthropic Messages API.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/verityhq/dealdesk-backend/internal/config"
	"github.com/verityhq/dealdesk-backend/internal/domain"
)

// messageCreator is the slice of the Anthropic SDK the client uses.
type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Client calls the model to analyze contract documents.
type Client struct {
	messages    messageCreator
	model       string
	maxTokens   int64
	callTimeout time.Duration
	log         *slog.Logger
}

// New creates an analysis client from the LLM configuration.
func New(cfg config.LLMConfig, log *slog.Logger) *Client {
	api := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Client{
		messages:    &api.Messages,
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		callTimeout: cfg.CallTimeout,
		log:         log,
	}
}

// Analyze sends the contract text to the model and parses the structured
// analysis out of its response. Failures are classified: transport errors
// (API unreachable, empty response) versus parse errors (malformed output).
func (c *Client) Analyze(ctx context.Context, title, content string) (*domain.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	prompt := buildPrompt(title, content)

	msg, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, &domain.GenerationError{
			Kind:   domain.GenerationFailureTransport,
			Reason: fmt.Sprintf("messages api: %v", err),
		}
	}
	if len(msg.Content) == 0 {
		return nil, &domain.GenerationError{
			Kind:   domain.GenerationFailureTransport,
			Reason: "empty response",
		}
	}

	result, err := parseAnalysis(msg.Content[0].Text)
	if err != nil {
		return nil, err
	}

	c.log.Debug("contract analyzed",
		slog.String("model", c.model),
		slog.Int("findings", len(result.Findings)),
	)
	return result, nil
}

// analysisPayload is the wire schema the model is instructed to emit.
type analysisPayload struct {
	Summary    string `json:"summary"`
	RiskRating string `json:"risk_rating"`
	Findings   []struct {
		Category          string `json:"category"`
		ClauseText        string `json:"clause_text"`
		Rating            string `json:"rating"`
		Rationale         string `json:"rationale"`
		SuggestedResponse string `json:"suggested_response"`
	} `json:"findings"`
}

// parseAnalysis extracts and validates the JSON analysis from raw model text.
func parseAnalysis(text string) (*domain.AnalysisResult, error) {
	jsonStr, err := extractJSON(text)
	if err != nil {
		return nil, parseError(err.Error())
	}
	if !json.Valid([]byte(jsonStr)) {
		return nil, parseError("response does not contain valid JSON")
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, parseError(fmt.Sprintf("unmarshal analysis: %v", err))
	}

	if payload.Summary == "" {
		return nil, parseError("missing summary")
	}
	rating := domain.RiskRating(payload.RiskRating)
	if !rating.IsValid() {
		return nil, parseError(fmt.Sprintf("unknown risk_rating %q", payload.RiskRating))
	}

	result := &domain.AnalysisResult{
		Summary: payload.Summary,
		Rating:  rating,
	}
	for i, f := range payload.Findings {
		findingRating := domain.RiskRating(f.Rating)
		if !findingRating.IsValid() {
			return nil, parseError(fmt.Sprintf("finding %d: unknown rating %q", i, f.Rating))
		}
		if f.ClauseText == "" {
			return nil, parseError(fmt.Sprintf("finding %d: missing clause_text", i))
		}
		result.Findings = append(result.Findings, domain.AnalysisFinding{
			Category:          f.Category,
			ClauseText:        f.ClauseText,
			Rating:            findingRating,
			Rationale:         f.Rationale,
			SuggestedResponse: f.SuggestedResponse,
		})
	}

	return result, nil
}

func parseError(reason string) error {
	return &domain.GenerationError{
		Kind:   domain.GenerationFailureParse,
		Reason: reason,
	}
}

// buildPrompt creates the analysis prompt for a single contract.
func buildPrompt(title, content string) string {
	return fmt.Sprintf(`You are a senior commercial contracts reviewer.

Analyze the contract "%s" below and produce a risk assessment in JSON format.

Contract text:
%s

Output ONLY a valid JSON object matching this exact schema:
{
  "summary": "<2-4 sentence risk summary of the whole contract>",
  "risk_rating": "<LOW|MEDIUM|HIGH|CRITICAL>",
  "findings": [
    {
      "category": "<liability|indemnification|termination|payment|ip|data_privacy|other>",
      "clause_text": "<verbatim excerpt of the risky clause>",
      "rating": "<LOW|MEDIUM|HIGH|CRITICAL>",
      "rationale": "<why this clause is risky for the customer>",
      "suggested_response": "<concrete negotiation position or redline>"
    }
  ]
}

Rules:
- Quote clause_text verbatim from the contract
- Rate the overall contract by its worst material finding
- Skip boilerplate that carries no commercial risk
- Output ONLY the JSON, no markdown, no explanations`, title, content)
}

// extractJSON finds the first complete JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}
