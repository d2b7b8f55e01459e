package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration signals an option combination or argument that
	// violates a precondition. Detected before any network call.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrTransportFailure signals a connection or IO error after the retry
	// budget was spent, or a non-2xx status that survived it.
	ErrTransportFailure = errors.New("transport failure")
	// ErrMalformedResponse signals a body that could not be decoded into the
	// requested shape.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrUnsupportedEventKind signals a feedback event with no wire mapping.
	ErrUnsupportedEventKind = errors.New("unsupported event kind")
)

// InvalidConfiguration wraps ErrInvalidConfiguration with a reason.
func InvalidConfiguration(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, reason)
}

// StatusError wraps ErrTransportFailure with the final HTTP status and body.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	const maxBody = 256
	body := e.Body
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	if len(body) == 0 {
		return fmt.Sprintf("%s: http status %d", ErrTransportFailure.Error(), e.StatusCode)
	}
	return fmt.Sprintf("%s: http status %d: %s", ErrTransportFailure.Error(), e.StatusCode, body)
}

func (e *StatusError) Unwrap() error { return ErrTransportFailure }

// NewStatusError creates a status error for a non-2xx response.
func NewStatusError(statusCode int, body []byte) error {
	return &StatusError{StatusCode: statusCode, Body: body}
}
