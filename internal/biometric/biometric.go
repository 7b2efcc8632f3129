//go:generate mockgen -source=biometric.go -destination=../mock/biometric_mock.go -package=mock

// Package biometric describes the platform biometric sensor the vault can use
// as an alternative unlock factor.
package biometric

import (
	"context"
	"errors"
)

// Kind classifies a sensor failure.
type Kind int

const (
	// KindNotAvailable means no sensor is present or enrolled.
	KindNotAvailable Kind = iota + 1
	// KindAuthenticationFailed means the sensor rejected the user.
	KindAuthenticationFailed
	// KindUserCancel means the user dismissed the prompt.
	KindUserCancel
)

func (k Kind) String() string {
	switch k {
	case KindNotAvailable:
		return "not available"
	case KindAuthenticationFailed:
		return "authentication failed"
	case KindUserCancel:
		return "user cancel"
	default:
		return "unknown"
	}
}

// Error is a sensor failure of a given [Kind].
type Error struct {
	Kind Kind
}

func (e *Error) Error() string {
	return "biometric: " + e.Kind.String()
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotAvailable         = &Error{Kind: KindNotAvailable}
	ErrAuthenticationFailed = &Error{Kind: KindAuthenticationFailed}
	ErrUserCancel           = &Error{Kind: KindUserCancel}
)

// Sensor authenticates the user and, on success, releases a stable secret
// bound to the enrolled biometric. The secret never leaves the vault.
type Sensor interface {
	Authenticate(ctx context.Context, prompt string) ([]byte, error)
}

// Unavailable is a [Sensor] for platforms without biometric hardware.
type Unavailable struct{}

func (Unavailable) Authenticate(context.Context, string) ([]byte, error) {
	return nil, ErrNotAvailable
}
