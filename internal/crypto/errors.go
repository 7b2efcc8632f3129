package crypto

import "errors"

var (
	// ErrKeyDerivation is returned by DeriveKey for an empty passphrase, a
	// malformed salt, or a work factor outside the accepted range.
	ErrKeyDerivation = errors.New("key derivation error")

	// ErrDecryptionFailed is the single error returned for every decryption
	// failure: wrong key, corrupted ciphertext, tampered header, unknown
	// algorithm. Callers cannot and must not tell these apart.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrUnsupportedAlgorithm is returned when the core is configured with an
	// algorithm id it cannot encrypt with.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrRandomSource is returned when the CSPRNG read fails.
	ErrRandomSource = errors.New("random source failure")
)
