// Package errors turns non-2xx HTTP replies from collaborator services into
// structured errors.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MinErrorStatusCode is the lowest status treated as an error.
const MinErrorStatusCode = 400

// maxBodyBytes caps how much of an error body is read.
const maxBodyBytes = 64 << 10

// HTTPError is a failed reply from another service.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP error: %s", e.Status)
}

// Temporary reports whether retrying the request may succeed.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// ParseHTTPError returns nil for a successful reply and an *HTTPError
// otherwise. The message comes from an "error", "message" or "detail" JSON
// field when present, else the raw body.
func ParseHTTPError(resp *http.Response) error {
	if resp.StatusCode < MinErrorStatusCode {
		return nil
	}

	httpErr := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		httpErr.Message = fmt.Sprintf("failed to read error body: %v", err)
		return httpErr
	}
	httpErr.Body = string(body)
	httpErr.Message = messageFrom(body)
	return httpErr
}

func messageFrom(body []byte) string {
	var reply struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  any    `json:"detail"`
	}
	if json.Unmarshal(body, &reply) != nil {
		return strings.TrimSpace(string(body))
	}

	switch {
	case reply.Error != "":
		return reply.Error
	case reply.Message != "":
		return reply.Message
	}
	switch d := reply.Detail.(type) {
	case string:
		return d
	case nil:
		return strings.TrimSpace(string(body))
	default:
		// Validation errors arrive as a list of objects.
		encoded, _ := json.Marshal(d)
		return string(encoded)
	}
}

// StatusCode extracts the status from an *HTTPError anywhere in err's chain.
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}
