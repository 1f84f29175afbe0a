// Package upstream holds the failure taxonomy and retry policy shared by the
// external API clients. Every client classifies its failures into exactly one
// of the error kinds below so callers can map kind to behaviour (retry, HTTP
// status, logging) with errors.As and nothing else.
package upstream

import (
	"fmt"
	"strings"
)

// MaxBodySnippet bounds the amount of upstream response body carried around in
// errors and logs.
const MaxBodySnippet = 200

// AuthError means credentials are missing or rejected. It is a configuration
// defect: the call is never retried and no request is attempted when the
// credentials are absent.
type AuthError struct {
	Upstream string
	Reason   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s auth error: %s", e.Upstream, e.Reason)
}

// UpstreamError is a transport failure or an HTTP error response from the
// upstream. It is the only retryable kind. StatusCode is 0 for failures that
// never produced a response (timeouts, connection errors).
type UpstreamError struct {
	Upstream   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s request failed: %s", e.Upstream, e.Body)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Upstream, e.StatusCode, e.Body)
}

// NewUpstreamError builds an UpstreamError with the body snippet truncated to
// MaxBodySnippet characters.
func NewUpstreamError(upstream string, statusCode int, body string) *UpstreamError {
	return &UpstreamError{
		Upstream:   upstream,
		StatusCode: statusCode,
		Body:       Snippet(body),
	}
}

// ValidationError means the call succeeded at the transport level but the
// response (or a request parameter the upstream rejected outright) does not
// conform to the expected shape. Retrying cannot help, so it never is.
type ValidationError struct {
	Upstream string
	Reason   string
	// Raw keeps a snippet of the offending payload for debugging. Routing
	// layers should only expose it outside production.
	Raw string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation error: %s", e.Upstream, e.Reason)
}

// ClientError wraps any unexpected failure that is not one of the kinds above,
// preserving the original cause.
type ClientError struct {
	Upstream string
	Err      error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("%s client error: %v", e.Upstream, e.Err)
}

func (e *ClientError) Unwrap() error { return e.Err }

// Snippet truncates s to MaxBodySnippet characters for diagnostics.
func Snippet(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= MaxBodySnippet {
		return s
	}
	return string(runes[:MaxBodySnippet])
}
