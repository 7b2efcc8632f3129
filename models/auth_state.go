package models

import "time"

// AuthStateKind enumerates the states of the vault authentication lifecycle.
type AuthStateKind int

const (
	// Locked is the initial state. No session key exists.
	Locked AuthStateKind = iota
	// Authenticating means a factor is being verified.
	Authenticating
	// Unlocked means a session key is held in memory.
	Unlocked
	// Failed means the last verification failed; see AuthState.Reason.
	Failed
	// PanicMode is the restricted state entered with a duress factor.
	PanicMode
)

// String returns the lower-case name of the state.
func (k AuthStateKind) String() string {
	switch k {
	case Locked:
		return "locked"
	case Authenticating:
		return "authenticating"
	case Unlocked:
		return "unlocked"
	case Failed:
		return "failed"
	case PanicMode:
		return "panic"
	default:
		return "unknown"
	}
}

// FailureReason qualifies the Failed state.
type FailureReason int

const (
	// ReasonNone is used for every state other than Failed.
	ReasonNone FailureReason = iota
	// ReasonRejected means the factor did not verify. The cause (wrong
	// passphrase, corrupted keyring, biometric mismatch) is never recorded.
	ReasonRejected
	// ReasonTimeout means the watchdog fired before verification finished.
	ReasonTimeout
)

// String returns the lower-case name of the reason.
func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonRejected:
		return "rejected"
	case ReasonTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// AuthState is a snapshot of the vault authentication state.
type AuthState struct {
	Kind   AuthStateKind `json:"kind"`
	Reason FailureReason `json:"reason"`
	// Since is the moment the vault entered this state.
	Since time.Time `json:"since"`
}

// String formats the state as "failed(timeout)" or "unlocked".
func (s AuthState) String() string {
	if s.Kind == Failed {
		return s.Kind.String() + "(" + s.Reason.String() + ")"
	}
	return s.Kind.String()
}
