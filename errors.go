package nyris

import (
	"errors"

	"github.com/nyris/nyris-go/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidConfiguration = domain.ErrInvalidConfiguration
	ErrTransportFailure     = domain.ErrTransportFailure
	ErrMalformedResponse    = domain.ErrMalformedResponse
	ErrUnsupportedEventKind = domain.ErrUnsupportedEventKind

	// ErrClosed is returned by calls issued after Close.
	ErrClosed = errors.New("nyris: client closed")
)

// StatusError carries the status and body of a non-2xx response that
// survived the retry budget. It matches ErrTransportFailure.
type StatusError = domain.StatusError
