package models

// AlgorithmID pins the AEAD scheme and KDF used to produce an
// [EncryptedRecord]. Values are part of the persisted and wire formats and
// must never be renumbered.
type AlgorithmID uint8

const (
	// AlgorithmUnknown is the zero value and is never produced.
	AlgorithmUnknown AlgorithmID = 0
	// AES256GCMArgon2id is AES-256-GCM with an Argon2id-derived key.
	AES256GCMArgon2id AlgorithmID = 1
	// ChaCha20Poly1305Argon2id is ChaCha20-Poly1305 (IETF, 12-byte nonce)
	// with an Argon2id-derived key.
	ChaCha20Poly1305Argon2id AlgorithmID = 2
)

// String returns the canonical configuration name of the algorithm.
func (a AlgorithmID) String() string {
	switch a {
	case AES256GCMArgon2id:
		return "aes-256-gcm"
	case ChaCha20Poly1305Argon2id:
		return "chacha20-poly1305"
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a configuration name back to an [AlgorithmID].
// It returns AlgorithmUnknown for unrecognised names.
func ParseAlgorithm(name string) AlgorithmID {
	switch name {
	case "aes-256-gcm", "aes256gcm":
		return AES256GCMArgon2id
	case "chacha20-poly1305", "chacha20poly1305":
		return ChaCha20Poly1305Argon2id
	default:
		return AlgorithmUnknown
	}
}

// KDFParams is the Argon2id work factor used to derive a key.
type KDFParams struct {
	Iterations uint32 `json:"iterations"`
	MemoryKiB  uint32 `json:"memory_kib"`
	Threads    uint8  `json:"threads"`
}

// EncryptedRecord is the immutable output of one authenticated encryption.
//
// Salt and KDF describe how the key was derived from a passphrase; they are
// public. Nonce is fresh for every record.
type EncryptedRecord struct {
	Ciphertext []byte      `json:"ciphertext"`
	Nonce      []byte      `json:"nonce"`
	Salt       []byte      `json:"salt"`
	KDF        KDFParams   `json:"kdf"`
	Algorithm  AlgorithmID `json:"algorithm"`
}
