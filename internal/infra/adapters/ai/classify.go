package ai

import (
	"encoding/json"
	"net/http"
)

// disposition is the outcome of classifying one attempt's response.
type disposition int

const (
	// failTerminal surfaces the error immediately, no further attempts.
	failTerminal disposition = iota
	// retryBackoff re-issues the request after an exponential backoff.
	retryBackoff
)

// gatewayError mirrors the error shape the gateway returns, including
// the optional upstream provider attribution on rate limits.
type gatewayError struct {
	Error *struct {
		Message  string `json:"message"`
		Metadata struct {
			ProviderName string `json:"provider_name"`
		} `json:"metadata"`
	} `json:"error"`
}

// classifyStatus maps a non-2xx (status, body) pair to a retry decision
// and the error to carry. Pure so it can be tested without timers:
//   - 429 naming an upstream provider -> terminal named RateLimitError
//   - anonymous 429                   -> retry, RateLimitError
//   - anything else                   -> terminal RequestError
func classifyStatus(status int, body []byte) (disposition, error) {
	if status == http.StatusTooManyRequests {
		var ge gatewayError
		_ = json.Unmarshal(body, &ge)
		if ge.Error != nil && ge.Error.Metadata.ProviderName != "" {
			return failTerminal, &RateLimitError{Provider: ge.Error.Metadata.ProviderName}
		}
		return retryBackoff, &RateLimitError{}
	}

	var ge gatewayError
	_ = json.Unmarshal(body, &ge)
	msg := ""
	if ge.Error != nil {
		msg = ge.Error.Message
	}
	return failTerminal, &RequestError{Status: status, Message: msg}
}
