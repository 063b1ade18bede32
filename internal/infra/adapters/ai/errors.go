package ai

import "fmt"

// RateLimitError reports an HTTP 429 from the gateway. When the error
// body names the exhausted upstream provider, Provider carries it and
// the call is not retried: provider-specific exhaustion is unlikely to
// clear within the backoff window.
type RateLimitError struct {
	Provider string
}

func (e *RateLimitError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("rate limit reached for provider %s", e.Provider)
	}
	return "rate limited"
}

// RequestError is any non-429 HTTP error status, or an error payload
// embedded in a 200 response. Never retried.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway request failed: http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("gateway request failed: http %d", e.Status)
}

// ResponseFormatError is a success response missing choices or message
// content. Never retried.
type ResponseFormatError struct {
	Reason string
}

func (e *ResponseFormatError) Error() string {
	return "malformed gateway response: " + e.Reason
}

// RetriesExhaustedError wraps the last cause after the attempt ceiling.
type RetriesExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Err }
