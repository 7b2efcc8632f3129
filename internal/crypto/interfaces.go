// Package crypto wraps the primitives the vault is built on: Argon2id key
// derivation, HKDF sub-keys, AEAD encryption (AES-256-GCM or
// ChaCha20-Poly1305), constant-time comparison and memory zeroing.
//
// The package keeps no state besides its configured parameters. Every
// decryption failure collapses into [ErrDecryptionFailed].
package crypto

import "github.com/MKhiriev/go-secure-vault/models"

// CryptoCore is the primitive layer used by the vault and the sync layer.
type CryptoCore interface {
	// GenerateSalt returns SaltSize random bytes.
	GenerateSalt() ([]byte, error)

	// GenerateSecret returns KeySize random bytes suitable as raw key material.
	GenerateSecret() ([]byte, error)

	// DeriveKey stretches passphrase with Argon2id. The same inputs always
	// produce the same key.
	DeriveKey(passphrase, salt []byte, params models.KDFParams) (*Key, error)

	// ExpandKey derives a domain-separated sub-key with HKDF-SHA256. The
	// result keeps the salt and KDF parameters of key.
	ExpandKey(key *Key, salt, info []byte) (*Key, error)

	// Encrypt seals plaintext under key with a fresh random nonce.
	Encrypt(plaintext []byte, key *Key) (models.EncryptedRecord, error)

	// Decrypt opens record with key. It never returns partial plaintext.
	Decrypt(record models.EncryptedRecord, key *Key) ([]byte, error)

	// EncryptWithPassphrase derives a key from passphrase and a fresh salt,
	// then encrypts.
	EncryptWithPassphrase(plaintext, passphrase []byte) (models.EncryptedRecord, error)

	// DecryptWithPassphrase re-derives the key from passphrase and the
	// record's own salt and KDF parameters, then decrypts.
	DecryptWithPassphrase(record models.EncryptedRecord, passphrase []byte) ([]byte, error)

	// ConstantTimeEquals compares two secrets without timing leaks on content.
	ConstantTimeEquals(a, b []byte) bool

	// KDFParams returns the work factor used for new keys.
	KDFParams() models.KDFParams

	// Algorithm returns the AEAD used for new records.
	Algorithm() models.AlgorithmID
}
