// Package apperrors defines the error taxonomy shared by usecases and
// controllers. Usecases return these sentinels (possibly wrapped);
// controllers map them to HTTP statuses.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no identity was presented.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is the generic denial. Its message never reveals which
	// rule failed, to avoid disclosing document existence.
	ErrForbidden = errors.New("no access")

	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("rate limited")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
)

// Denial reasons. Each wraps ErrForbidden so errors.Is(err, ErrForbidden)
// holds; only ErrNDARequired is surfaced with its specific reason.
var (
	ErrNDARequired     = fmt.Errorf("nda-required: %w", ErrForbidden)
	ErrNotGranted      = fmt.Errorf("not-granted: %w", ErrForbidden)
	ErrDownloadBlocked = fmt.Errorf("download-blocked: %w", ErrForbidden)
	ErrScanPending     = fmt.Errorf("scan-pending: %w", ErrForbidden)
	ErrScanBlocked     = fmt.Errorf("scan-blocked: %w", ErrForbidden)
)

// Invalid wraps ErrInvalidInput with a caller-facing message.
func Invalid(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInvalidInput)
}
