package vault

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrVaultLocked              = errors.New("vault is locked")
	ErrRateLimited              = errors.New("too many failed attempts")
	ErrRotationInProgress       = errors.New("key rotation in progress")
	ErrRotationFailed           = errors.New("key rotation failed")
	ErrAuthenticationFailed     = errors.New("authentication failed")
	ErrAuthenticationInProgress = errors.New("authentication already in progress")
	ErrAuthenticationTimeout    = errors.New("authentication timed out")
	ErrAuthenticationCanceled   = errors.New("authentication canceled")
	ErrNotInitialized           = errors.New("vault is not initialized")
	ErrAlreadyInitialized       = errors.New("vault is already initialized")
	ErrInvalidKeyID             = errors.New("invalid secure key id")
	ErrDuressMatchesPassphrase  = errors.New("duress passphrase must differ from the unlock passphrase")
	ErrUnsupportedFactor        = errors.New("unsupported authentication factor")
)

// RateLimitedError is returned by Authenticate while the backoff window is
// active. It matches [ErrRateLimited] with errors.Is.
type RateLimitedError struct {
	RetryAfter time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrRateLimited, e.RetryAfter.Format(time.RFC3339))
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
