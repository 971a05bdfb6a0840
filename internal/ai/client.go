// Package ai wraps the generative collaborator. Its output is always raw
// text with no safety contract; every caller treats it as adversarial input.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"
)

const defaultModel = "claude-sonnet-4-6"

// GenerationInput carries everything the generator needs for one candidate.
type GenerationInput struct {
	Question     string
	SchemaPrompt string
	TenantID     int64
	Timezone     string
	LocalDate    string // YYYY-MM-DD in the caller's zone
}

// Client is the Anthropic-backed collaborator. Each method is a single
// bounded call; the caller owns the deadline via ctx.
type Client struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewClient creates a collaborator backed by Anthropic Claude or a
// compatible provider behind a custom base URL.
func NewClient(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = defaultModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: 1024,
	}
}

// ClassifyIntent asks the model for a one-word intent label and parses it
// into the closed enum. Errors are returned so the caller can fail closed.
func (c *Client) ClassifyIntent(ctx context.Context, utterance string) (Intent, error) {
	text, err := c.complete(ctx, "", classifyPrompt(utterance))
	if err != nil {
		return IntentUnknown, fmt.Errorf("classify intent: %w", err)
	}
	intent := ParseIntent(text)
	log.Debug().Str("label", strings.TrimSpace(text)).Str("intent", string(intent)).Msg("intent classified")
	return intent, nil
}

// GenerateQuery produces a raw candidate statement. The reply is mined for
// SQL but never validated here; that is the guardrail validator's job.
func (c *Client) GenerateQuery(ctx context.Context, in GenerationInput) (string, error) {
	text, err := c.complete(ctx, "", generatePrompt(in))
	if err != nil {
		return "", fmt.Errorf("generate query: %w", err)
	}
	sql := ExtractSQL(text)
	if sql == "" {
		return "", fmt.Errorf("generate query: no SQL in model reply")
	}
	return sql, nil
}

// InterpretResult phrases a shaped result set as an answer. resultsJSON is
// the already-projected payload; physical identifiers never reach this call.
func (c *Client) InterpretResult(ctx context.Context, question, resultsJSON string) (string, error) {
	text, err := c.complete(ctx, "", interpretPrompt(question, resultsJSON))
	if err != nil {
		return "", fmt.Errorf("interpret result: %w", err)
	}
	answer := strings.TrimSpace(text)
	if answer == "" {
		return "", fmt.Errorf("interpret result: empty model reply")
	}
	return answer, nil
}

// complete performs one message call and concatenates the text blocks.
func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(c.model)),
		MaxTokens: anthropic.F(int64(c.maxTokens)),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		}),
	}
	if systemPrompt != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(systemPrompt),
		})
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("model call: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if b, ok := block.AsUnion().(anthropic.TextBlock); ok {
			text += b.Text
		}
	}
	return text, nil
}

// IsActionNotAllowed reports whether a candidate is the generator's refusal
// sentinel rather than a real query.
func IsActionNotAllowed(sql string) bool {
	return strings.Contains(strings.ToUpper(sql), actionNotAllowed)
}
