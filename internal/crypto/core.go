// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/MKhiriev/go-secure-vault/models"
)

const (
	// SaltSize is the length of every KDF salt.
	SaltSize = 16
	// KeySize is the length of every derived key (256 bits).
	KeySize = 32
	// NonceSize is the AEAD nonce length for both supported algorithms.
	NonceSize = 12

	// MinIterations and MinMemoryKiB are the safety floor for Argon2id.
	MinIterations = 1
	MinMemoryKiB  = 8 * 1024
	// MaxIterations and MaxMemoryKiB bound work factors read from records,
	// which may come from an untrusted source.
	MaxIterations = 64
	MaxMemoryKiB  = 1024 * 1024

	headerVersion byte = 1
)

// Params configures a [CryptoCore].
type Params struct {
	Algorithm models.AlgorithmID
	KDF       models.KDFParams
}

// DefaultParams returns AES-256-GCM with Argon2id t=3, m=64 MiB, p=4.
func DefaultParams() Params {
	return Params{
		Algorithm: models.AES256GCMArgon2id,
		KDF: models.KDFParams{
			Iterations: 3,
			MemoryKiB:  64 * 1024,
			Threads:    4,
		},
	}
}

// cryptoCore is the private implementation of [CryptoCore].
type cryptoCore struct {
	params Params
	random io.Reader
}

// NewCryptoCore validates params and returns a [CryptoCore]. It fails with
// [ErrUnsupportedAlgorithm] or [ErrKeyDerivation] for unusable parameters.
func NewCryptoCore(params Params) (CryptoCore, error) {
	if !supported(params.Algorithm) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, params.Algorithm)
	}
	if err := validateKDF(params.KDF); err != nil {
		return nil, err
	}

	return &cryptoCore{params: params, random: rand.Reader}, nil
}

func (c *cryptoCore) KDFParams() models.KDFParams {
	return c.params.KDF
}

func (c *cryptoCore) Algorithm() models.AlgorithmID {
	return c.params.Algorithm
}

// GenerateSalt implements [CryptoCore].
func (c *cryptoCore) GenerateSalt() ([]byte, error) {
	return c.randomBytes(SaltSize)
}

// GenerateSecret implements [CryptoCore].
func (c *cryptoCore) GenerateSecret() ([]byte, error) {
	return c.randomBytes(KeySize)
}

// DeriveKey implements [CryptoCore] with Argon2id.
func (c *cryptoCore) DeriveKey(passphrase, salt []byte, params models.KDFParams) (*Key, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: empty passphrase", ErrKeyDerivation)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes", ErrKeyDerivation, SaltSize)
	}
	if err := validateKDF(params); err != nil {
		return nil, err
	}

	material := argon2.IDKey(passphrase, salt, params.Iterations, params.MemoryKiB, params.Threads, KeySize)
	return &Key{material: material, salt: append([]byte(nil), salt...), params: params}, nil
}

// ExpandKey implements [CryptoCore] with HKDF-SHA256.
func (c *cryptoCore) ExpandKey(key *Key, salt, info []byte) (*Key, error) {
	if key.IsZeroed() {
		return nil, fmt.Errorf("%w: empty input key", ErrKeyDerivation)
	}

	material := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key.material, salt, info), material); err != nil {
		return nil, fmt.Errorf("%w: hkdf: %v", ErrKeyDerivation, err)
	}

	return &Key{material: material, salt: append([]byte(nil), key.salt...), params: key.params}, nil
}

// Encrypt implements [CryptoCore]. The record header (algorithm, salt, KDF
// parameters) is authenticated as associated data, so it cannot be altered
// without failing decryption.
func (c *cryptoCore) Encrypt(plaintext []byte, key *Key) (models.EncryptedRecord, error) {
	if key.IsZeroed() {
		return models.EncryptedRecord{}, fmt.Errorf("%w: empty key", ErrKeyDerivation)
	}

	aead, err := newAEAD(c.params.Algorithm, key.material)
	if err != nil {
		return models.EncryptedRecord{}, err
	}

	nonce, err := c.randomBytes(NonceSize)
	if err != nil {
		return models.EncryptedRecord{}, err
	}

	record := models.EncryptedRecord{
		Nonce:     nonce,
		Salt:      append([]byte(nil), key.salt...),
		KDF:       key.params,
		Algorithm: c.params.Algorithm,
	}
	record.Ciphertext = aead.Seal(nil, nonce, plaintext, header(record))

	return record, nil
}

// Decrypt implements [CryptoCore]. Every failure is [ErrDecryptionFailed].
func (c *cryptoCore) Decrypt(record models.EncryptedRecord, key *Key) ([]byte, error) {
	if key.IsZeroed() || len(record.Nonce) != NonceSize {
		return nil, ErrDecryptionFailed
	}
	if !c.ConstantTimeEquals(record.Salt, key.salt) || record.KDF != key.params {
		return nil, ErrDecryptionFailed
	}

	aead, err := newAEAD(record.Algorithm, key.material)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	plaintext, err := aead.Open(nil, record.Nonce, record.Ciphertext, header(record))
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// EncryptWithPassphrase implements [CryptoCore].
func (c *cryptoCore) EncryptWithPassphrase(plaintext, passphrase []byte) (models.EncryptedRecord, error) {
	salt, err := c.GenerateSalt()
	if err != nil {
		return models.EncryptedRecord{}, err
	}

	key, err := c.DeriveKey(passphrase, salt, c.params.KDF)
	if err != nil {
		return models.EncryptedRecord{}, err
	}
	defer key.Zero()

	return c.Encrypt(plaintext, key)
}

// DecryptWithPassphrase implements [CryptoCore]. A record whose KDF
// parameters cannot be used is reported as [ErrDecryptionFailed] as well.
func (c *cryptoCore) DecryptWithPassphrase(record models.EncryptedRecord, passphrase []byte) ([]byte, error) {
	key, err := c.DeriveKey(passphrase, record.Salt, record.KDF)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	defer key.Zero()

	return c.Decrypt(record, key)
}

// ConstantTimeEquals implements [CryptoCore]. Only the lengths of a and b
// may leak.
func (c *cryptoCore) ConstantTimeEquals(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

func (c *cryptoCore) randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(c.random, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	return b, nil
}

func supported(alg models.AlgorithmID) bool {
	return alg == models.AES256GCMArgon2id || alg == models.ChaCha20Poly1305Argon2id
}

func validateKDF(p models.KDFParams) error {
	switch {
	case p.Iterations < MinIterations || p.Iterations > MaxIterations:
		return fmt.Errorf("%w: iterations %d outside [%d, %d]", ErrKeyDerivation, p.Iterations, MinIterations, MaxIterations)
	case p.MemoryKiB < MinMemoryKiB || p.MemoryKiB > MaxMemoryKiB:
		return fmt.Errorf("%w: memory %d KiB outside [%d, %d]", ErrKeyDerivation, p.MemoryKiB, MinMemoryKiB, MaxMemoryKiB)
	case p.Threads < 1:
		return fmt.Errorf("%w: threads must be positive", ErrKeyDerivation)
	}
	return nil
}

func newAEAD(alg models.AlgorithmID, key []byte) (cipher.AEAD, error) {
	switch alg {
	case models.AES256GCMArgon2id:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("create cipher: %w", err)
		}
		return cipher.NewGCM(block)
	case models.ChaCha20Poly1305Argon2id:
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAlgorithm, alg)
	}
}

// header serialises the public part of a record for use as associated data:
// version ‖ algorithm ‖ salt ‖ iterations ‖ memory ‖ threads.
func header(r models.EncryptedRecord) []byte {
	h := make([]byte, 0, 2+len(r.Salt)+9)
	h = append(h, headerVersion, byte(r.Algorithm))
	h = append(h, r.Salt...)
	h = binary.BigEndian.AppendUint32(h, r.KDF.Iterations)
	h = binary.BigEndian.AppendUint32(h, r.KDF.MemoryKiB)
	h = append(h, r.KDF.Threads)
	return h
}
