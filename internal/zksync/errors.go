package zksync

import "errors"

// DecryptionKind classifies a [DecryptionError].
type DecryptionKind int

const (
	// KeyMismatch means authentication failed: wrong secret, erased record,
	// tampered ciphertext or a payload belonging to another record.
	KeyMismatch DecryptionKind = iota + 1
	// InvalidPayload means the payload or its key material is malformed.
	InvalidPayload
)

func (k DecryptionKind) String() string {
	switch k {
	case KeyMismatch:
		return "key mismatch"
	case InvalidPayload:
		return "invalid payload"
	default:
		return "unknown"
	}
}

// DecryptionError is returned by DecryptFromSync.
type DecryptionError struct {
	Kind DecryptionKind
	Err  error
}

func (e *DecryptionError) Error() string {
	if e.Err == nil {
		return "sync decryption: " + e.Kind.String()
	}
	return "sync decryption: " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// Is matches any *DecryptionError of the same kind.
func (e *DecryptionError) Is(target error) bool {
	var t *DecryptionError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrKeyMismatch    = &DecryptionError{Kind: KeyMismatch}
	ErrInvalidPayload = &DecryptionError{Kind: InvalidPayload}

	ErrUnsupportedVersion = errors.New("unsupported wire version")
)

func keyMismatch(err error) error {
	return &DecryptionError{Kind: KeyMismatch, Err: err}
}

func invalidPayload(err error) error {
	return &DecryptionError{Kind: InvalidPayload, Err: err}
}
