package meta

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// ErrConfiguration represents missing or invalid input that was detected
// before any network activity took place.
type ErrConfiguration struct {
	Reason  string   `json:"reason"`
	Details []string `json:"details,omitempty"`
}

// NewErrConfiguration returns an ErrConfiguration.
func NewErrConfiguration(reason string, details ...string) *ErrConfiguration {
	return &ErrConfiguration{
		Reason:  reason,
		Details: details,
	}
}

func (e *ErrConfiguration) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("Invalid configuration: %s", e.Reason)
	}
	msg := fmt.Sprintf("Invalid configuration: %s:", e.Reason)
	for i, detail := range e.Details {
		msg = fmt.Sprintf("%s\n  %d. %s", msg, i, detail)
	}
	return msg
}

// ErrInvalidKeyMaterial represents private key material that could not be
// parsed or used for signing.
type ErrInvalidKeyMaterial struct {
	KeyID  string `json:"keyId,omitempty"`
	Reason string `json:"reason"`
}

func (e *ErrInvalidKeyMaterial) Error() string {
	if e.KeyID == "" {
		return fmt.Sprintf("Invalid key material: %s", e.Reason)
	}
	return fmt.Sprintf("Invalid key material for key %q: %s", e.KeyID, e.Reason)
}

// ErrNetworkTimeout represents a request that did not complete within its
// allotted time.
type ErrNetworkTimeout struct {
	Method  string        `json:"method"`
	URL     string        `json:"url"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

func (e *ErrNetworkTimeout) Error() string {
	if e.Timeout == 0 {
		return fmt.Sprintf("Request %s %s timed out.", e.Method, e.URL)
	}
	return fmt.Sprintf(
		"Request %s %s timed out after %s.",
		e.Method,
		e.URL,
		e.Timeout,
	)
}

// ErrAuthenticationFailed represents a token endpoint that refused to issue an
// access token.
type ErrAuthenticationFailed struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func (e *ErrAuthenticationFailed) Error() string {
	return fmt.Sprintf(
		"Token request failed with status %d: %s",
		e.StatusCode,
		e.Body,
	)
}

// ErrAPIResponse represents an API response whose status code was not among
// those the request considered successful.
type ErrAPIResponse struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func (e *ErrAPIResponse) Error() string {
	msg := fmt.Sprintf(
		"%s %s returned status %d: %s",
		e.Method,
		e.Path,
		e.StatusCode,
		e.Body,
	)
	if e.StatusCode == http.StatusUnauthorized {
		msg = fmt.Sprintf("%s (the access token may have expired)", msg)
	}
	return msg
}

// IsConflict returns true if the cause of the provided error is an
// ErrAPIResponse carrying a 409.
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

// IsUnauthorized returns true if the cause of the provided error is an
// ErrAPIResponse carrying a 401.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func hasStatus(err error, statusCode int) bool {
	apiErr, ok := errors.Cause(err).(*ErrAPIResponse)
	return ok && apiErr.StatusCode == statusCode
}
