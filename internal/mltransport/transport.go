// Package mltransport provides shared HTTP transport for the sentiment and
// summarization sidecar.
package mltransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	infraerrors "github.com/dj0804/GrievanceInsight/infrastructure/errors"
	infrahttp "github.com/dj0804/GrievanceInsight/infrastructure/http"
)

const defaultTimeout = 5 * time.Second

// Sidecar endpoints.
const (
	PathSentiment = "/sentiment"
	PathSummarize = "/summarize"
	PathHealth    = "/health"
)

// SentimentRequest is the body of POST /sentiment.
type SentimentRequest struct {
	Text string `json:"text"`
}

// SentimentResponse is the reply from POST /sentiment.
type SentimentResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SummarizeRequest is the body of POST /summarize.
type SummarizeRequest struct {
	Text      string `json:"text"`
	MinLength int    `json:"min_length"`
	MaxLength int    `json:"max_length"`
}

// SummarizeResponse is the reply from POST /summarize.
type SummarizeResponse struct {
	SummaryText string `json:"summary_text"`
}

// healthResponse is the JSON shape returned by GET /health (model_version optional).
type healthResponse struct {
	ModelVersion string `json:"model_version"`
}

var httpClient = infrahttp.NewClient(infrahttp.ClientConfig{Timeout: defaultTimeout})

// DoPost sends req as JSON to baseURL+path and decodes the reply into respPtr.
func DoPost(ctx context.Context, baseURL, path string, req, respPtr any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if httpErr := infraerrors.ParseHTTPError(resp); httpErr != nil {
		return fmt.Errorf("ml service: %w", httpErr)
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(respPtr); decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	return nil
}

// DoHealth calls GET /health at baseURL and returns reachable, latencyMs, model_version, and any error.
func DoHealth(ctx context.Context, baseURL string) (reachable bool, latencyMs int64, modelVersion string, err error) {
	start := time.Now()

	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+PathHealth, http.NoBody)
	if reqErr != nil {
		return false, 0, "", fmt.Errorf("create request: %w", reqErr)
	}

	resp, doErr := httpClient.Do(httpReq)
	latencyMs = time.Since(start).Milliseconds()
	if doErr != nil {
		return false, latencyMs, "", fmt.Errorf("service unreachable: %w", doErr)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, latencyMs, "", fmt.Errorf("unhealthy status: %d", resp.StatusCode)
	}

	reachable = true
	var healthResp healthResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&healthResp); decodeErr == nil {
		modelVersion = healthResp.ModelVersion
	}
	return reachable, latencyMs, modelVersion, nil
}
