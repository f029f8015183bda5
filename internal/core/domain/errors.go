package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// Sentinel errors for errors.Is checks at the client boundary.
	ErrNetworkUnavailable   = errors.New("backend: network unavailable")
	ErrTimeout              = errors.New("backend: request timed out")
	ErrUnreachable          = errors.New("backend: host unreachable or transport failure")
	ErrInvalidResponseShape = errors.New("backend: invalid response shape")
	ErrRemoteRejected       = errors.New("backend: request rejected")
	ErrEmptyResponse        = errors.New("backend: empty response")
	ErrQueueDeferred        = errors.New("backend: request deferred until connectivity returns")
	ErrNotInitialized       = errors.New("backend: no reachable base url")
)

// HTTPError is a non-2xx response.
type HTTPError struct {
	Operation string
	Status    int
	Body      string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("backend: %s: http %d", e.Operation, e.Status)
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, truncate(e.Body, 256))
	}
	return msg
}

// ClientError reports 4xx statuses.
func (e *HTTPError) ClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// ServerError reports 5xx statuses.
func (e *HTTPError) ServerError() bool {
	return e.Status >= 500
}

// StatusCode extracts the HTTP status from err, if any.
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status, true
	}
	return 0, false
}

// IsNonRetryableStatus reports statuses that will not change on retry:
// authentication, malformed request, not found and payload too large.
func IsNonRetryableStatus(status int) bool {
	switch status {
	case http.StatusUnauthorized,
		http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusRequestEntityTooLarge,
		http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// ShapeError is a validator rejection naming the offending field.
type ShapeError struct {
	Shape  string
	Field  string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("backend: invalid %s: field %q %s", e.Shape, e.Field, e.Reason)
}

func (e *ShapeError) Unwrap() error {
	return ErrInvalidResponseShape
}

// FieldError is one entry of an envelope's errors list.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// RejectedError is an envelope that reported success=false.
type RejectedError struct {
	Message string
	Errors  []FieldError
}

func (e *RejectedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unspecified error"
	}
	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for _, fe := range e.Errors {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(parts, "; "))
	}
	return "backend: request rejected: " + msg
}

func (e *RejectedError) Unwrap() error {
	return ErrRemoteRejected
}

// DeferredError is not a failure: the call was accepted into the offline queue.
type DeferredError struct {
	RequestID string
	Kind      RequestKind
}

func (e *DeferredError) Error() string {
	return fmt.Sprintf("backend: %s request %s queued until connectivity returns", e.Kind, e.RequestID)
}

func (e *DeferredError) Unwrap() error {
	return ErrQueueDeferred
}

// AsDeferred returns the queue id when err is a deferral.
func AsDeferred(err error) (string, bool) {
	var d *DeferredError
	if errors.As(err, &d) {
		return d.RequestID, true
	}
	return "", false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
