package client

import "errors"

var (
	ErrSyncDisabled       = errors.New("sync is disabled: no relay address configured")
	ErrPassphraseMismatch = errors.New("passphrases do not match")
	ErrEmptyPassphrase    = errors.New("passphrase must not be empty")
	ErrNoTerminal         = errors.New("no terminal available for passphrase input")
	ErrNoMorePassphrases  = errors.New("passphrase file has no more lines")
)

// usageError marks errors caused by how the command was invoked. Their text
// is safe to show as is.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func asUsageError(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}
