// Package mlclient talks to the sentiment and summarization sidecar.
package mlclient

import (
	"context"
	"fmt"

	"github.com/dj0804/GrievanceInsight/infrastructure/circuitbreaker"
	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/mltransport"
)

// ErrUnavailable indicates the ML sidecar is unreachable or rejecting calls.
var ErrUnavailable = fmt.Errorf("grievance ML service: %w", domain.ErrCollaboratorUnavailable)

// Client is an HTTP client for the ML sidecar. It satisfies both the
// sentiment scorer and summarizer contracts of the analyzer.
type Client struct {
	baseURL string
	breaker *circuitbreaker.Breaker
}

// NewClient creates a new ML client. A nil breaker disables short-circuiting.
func NewClient(baseURL string, breaker *circuitbreaker.Breaker) *Client {
	return &Client{baseURL: baseURL, breaker: breaker}
}

// Score returns the sentiment label for text.
func (c *Client) Score(ctx context.Context, text string) (domain.Sentiment, error) {
	var resp mltransport.SentimentResponse
	err := c.call(ctx, func() error {
		return mltransport.DoPost(ctx, c.baseURL, mltransport.PathSentiment, &mltransport.SentimentRequest{Text: text}, &resp)
	})
	if err != nil {
		return "", fmt.Errorf("sentiment: %w", err)
	}

	label, ok := domain.ParseSentiment(resp.Label)
	if !ok {
		return "", fmt.Errorf("sentiment: %w: unknown label %q", ErrUnavailable, resp.Label)
	}
	return label, nil
}

// Summarize returns a summary of text between minLen and maxLen tokens.
func (c *Client) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	var resp mltransport.SummarizeResponse
	req := &mltransport.SummarizeRequest{Text: text, MinLength: minLen, MaxLength: maxLen}
	err := c.call(ctx, func() error {
		return mltransport.DoPost(ctx, c.baseURL, mltransport.PathSummarize, req, &resp)
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return resp.SummaryText, nil
}

// Health checks if the ML service is healthy.
func (c *Client) Health(ctx context.Context) error {
	reachable, _, _, err := mltransport.DoHealth(ctx, c.baseURL)
	if err != nil {
		if !reachable {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}
	return nil
}

// call runs fn through the breaker. Every failure, including an open
// circuit, is reported as ErrUnavailable so callers fall back.
func (c *Client) call(ctx context.Context, fn func() error) error {
	var err error
	if c.breaker == nil {
		err = fn()
	} else {
		err = c.breaker.Execute(ctx, fn)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}
