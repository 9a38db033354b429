// Package llm provides the provider-agnostic chat contract, retry policy and
// the model-fallback executor.
// This file contains error classification and handling.

package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrEmptyResponse marks an attempt that returned a payload with no content.
// Empty payloads are treated as transient and retried.
var ErrEmptyResponse = errors.New("backend returned an empty response")

// ErrNotConfigured marks a backend that has no usable client. Requests
// must short-circuit to a canned fallback without touching the network.
var ErrNotConfigured = errors.New("backend client not configured")

// RetryClass indicates whether an error should be retried.
type RetryClass string

const (
	RetryClassRetryable    RetryClass = "retryable"     // Definitely retry
	RetryClassMaybe        RetryClass = "maybe"         // Retry with caution (limited attempts)
	RetryClassNonRetryable RetryClass = "non_retryable" // Never retry
)

// BackendError wraps provider errors with classification metadata.
type BackendError struct {
	Err         error
	Class       RetryClass
	HTTPStatus  int    // HTTP status code if applicable
	RetryAfter  string // Retry-After header value if present
	IsRateLimit bool   // True if this is a rate limit error
	IsTimeout   bool   // True if this is a timeout error
	IsAuth      bool   // True if this is an authentication error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("backend error: %s", e.Class)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ClassifyBackendError classifies an error from a model backend call.
func ClassifyBackendError(err error) RetryClass {
	if err == nil {
		return RetryClassNonRetryable
	}

	// Check if it's already a BackendError
	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Class
	}

	// Empty payloads count as transient failures
	if errors.Is(err, ErrEmptyResponse) {
		return RetryClassRetryable
	}

	errStr := strings.ToLower(err.Error())

	// Rate limit errors (429) - retryable, respect Retry-After
	if strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") {
		return RetryClassRetryable
	}

	// Server errors (5xx) - retryable
	if strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "bad gateway") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "gateway timeout") {
		return RetryClassRetryable
	}

	// Network/timeout errors - retryable
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "temporary failure") {
		return RetryClassRetryable
	}

	// Context deadline exceeded - maybe (limited retries)
	if strings.Contains(errStr, "deadline exceeded") {
		return RetryClassMaybe
	}

	// Context overflow - maybe
	if strings.Contains(errStr, "context length") ||
		strings.Contains(errStr, "token limit") ||
		strings.Contains(errStr, "maximum context length") {
		return RetryClassMaybe
	}

	// Authentication errors (401, 403) - non-retryable
	if strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "forbidden") ||
		strings.Contains(errStr, "invalid api key") ||
		strings.Contains(errStr, "authentication failed") {
		return RetryClassNonRetryable
	}

	// Bad request (400) - non-retryable
	if strings.Contains(errStr, "400") ||
		strings.Contains(errStr, "bad request") ||
		strings.Contains(errStr, "invalid request") ||
		strings.Contains(errStr, "malformed") {
		return RetryClassNonRetryable
	}

	// Quota exhausted (402) - non-retryable
	if strings.Contains(errStr, "402") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "billing") ||
		strings.Contains(errStr, "payment required") {
		return RetryClassNonRetryable
	}

	// Safety/guardrail refusals - non-retryable
	if strings.Contains(errStr, "content filter") ||
		strings.Contains(errStr, "safety") ||
		strings.Contains(errStr, "policy violation") {
		return RetryClassNonRetryable
	}

	// Default: non-retryable for unknown errors
	return RetryClassNonRetryable
}

// ExtractRetryAfter extracts the Retry-After header value from an error.
// Returns 0 if not found or invalid.
func ExtractRetryAfter(err error) time.Duration {
	var backendErr *BackendError
	if errors.As(err, &backendErr) && backendErr.RetryAfter != "" {
		// Try parsing as seconds (integer)
		var seconds int
		if _, err := fmt.Sscanf(backendErr.RetryAfter, "%d", &seconds); err == nil {
			return time.Duration(seconds) * time.Second
		}
		// Try parsing as HTTP date (RFC 1123)
		if t, err := time.Parse(time.RFC1123, backendErr.RetryAfter); err == nil {
			now := time.Now()
			if t.After(now) {
				return t.Sub(now)
			}
		}
	}
	return 0
}

// WrapBackendError wraps a provider error with classification metadata.
func WrapBackendError(err error, httpStatus int, retryAfter string) error {
	if err == nil {
		return nil
	}

	return &BackendError{
		Err:         err,
		Class:       ClassifyBackendError(err),
		HTTPStatus:  httpStatus,
		RetryAfter:  retryAfter,
		IsRateLimit: httpStatus == http.StatusTooManyRequests,
		IsTimeout:   httpStatus == http.StatusGatewayTimeout || httpStatus == http.StatusRequestTimeout,
		IsAuth:      httpStatus == http.StatusUnauthorized || httpStatus == http.StatusForbidden,
	}
}

// RetryExhaustedError indicates that all retry attempts for one model
// have been exhausted.
type RetryExhaustedError struct {
	Model    string
	Err      error
	Attempts int
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("model %s: retries exhausted after %d attempts: %v", e.Model, e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// FallbackExhaustedError aggregates the terminal error of every candidate
// model once the whole chain has failed.
type FallbackExhaustedError struct {
	Errors []error // One entry per candidate, in chain order
}

func (e *FallbackExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("all %d fallback candidates failed: %s", len(e.Errors), strings.Join(parts, "; "))
}

func (e *FallbackExhaustedError) Unwrap() []error {
	return e.Errors
}

// IsFallbackExhausted checks if an error is a FallbackExhaustedError.
func IsFallbackExhausted(err error) bool {
	var exhausted *FallbackExhaustedError
	return errors.As(err, &exhausted)
}
