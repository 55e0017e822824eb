// Package llmsummary summarizes complaint batches with a hosted Anthropic model.
package llmsummary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dj0804/GrievanceInsight/internal/domain"
)

const systemPrompt = "You summarize student grievances for a campus administration dashboard. " +
	"Write plain prose with no lists, headings or preamble."

var errNoText = errors.New("response contained no text")

// Config configures the summarizer.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
	// BaseURL overrides the API endpoint.
	BaseURL    string
	MaxRetries int
}

// Summarizer calls the Messages API. The underlying client is created once
// and shared across requests.
type Summarizer struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// New creates a Summarizer. An empty API key is rejected.
func New(cfg Config) (*Summarizer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("llm summarizer: %w: missing api key", domain.ErrCollaboratorUnavailable)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Summarizer{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: int64(cfg.MaxTokens),
	}, nil
}

// Summarize asks the model for a summary of text between minLen and maxLen words.
func (s *Summarizer) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	prompt := fmt.Sprintf(
		"Summarize the recurring problems in these complaints in %d to %d words:\n\n%s",
		minLen, maxLen, text,
	)

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: messages api: %w", domain.ErrCollaboratorUnavailable, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	summary := strings.TrimSpace(b.String())
	if summary == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrCollaboratorUnavailable, errNoText)
	}
	return summary, nil
}
