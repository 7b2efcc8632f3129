// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package vault

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-secure-vault/internal/crypto"
	"github.com/MKhiriev/go-secure-vault/models"
)

// RotateKeys re-encrypts records from oldPassphrase to newPassphrase under
// a fresh install salt and replaces the keyring with a single Put.
//
// The operation is all-or-nothing: if the old passphrase is wrong, or any
// record fails to decrypt with the key derived from its own salt, nothing is
// written and the error matches [ErrRotationFailed]. Encrypt and Decrypt
// fail fast with [ErrRotationInProgress] while a rotation runs. A wrong old
// passphrase counts toward the backoff like any other failed unlock.
//
// The biometric enrollment wraps the old session key and is dropped.
// When the vault is unlocked the session key is switched to the new key.
func (v *Vault) RotateKeys(ctx context.Context, oldPassphrase, newPassphrase []byte, records []models.EncryptedRecord) ([]models.EncryptedRecord, error) {
	return v.RotateKeysStaged(ctx, oldPassphrase, newPassphrase, records, nil)
}

// RotationStage receives the re-encrypted records after every record was
// re-encrypted and before the new keyring is saved. It must persist them
// somewhere that can be promoted after the rotation returns. A non-nil
// error aborts the rotation and the keyring is untouched.
type RotationStage func(rotated []models.EncryptedRecord) error

// RotateKeysStaged is [Vault.RotateKeys] with a stage step that runs under
// the vault gate just before the keyring is replaced. A nil stage skips
// the step.
func (v *Vault) RotateKeysStaged(ctx context.Context, oldPassphrase, newPassphrase []byte, records []models.EncryptedRecord, stage RotationStage) ([]models.EncryptedRecord, error) {
	if !v.rotating.CompareAndSwap(false, true) {
		return nil, ErrRotationInProgress
	}
	defer v.rotating.Store(false)

	v.gate.Lock()
	defer v.gate.Unlock()

	if v.ring == nil {
		return nil, ErrNotInitialized
	}
	if v.State().Kind == models.Authenticating {
		return nil, ErrAuthenticationInProgress
	}
	if retry := v.attempts.RetryAfter; v.clock.Now().Before(retry) {
		return nil, &RateLimitedError{RetryAfter: retry}
	}

	derived := newKeyCache(v.core, oldPassphrase)
	defer derived.zero()

	oldKey, err := derived.key(v.ring.Verifier.Salt, v.ring.Verifier.KDF)
	if err != nil || !v.checkVerifier(v.ring.Verifier, oldKey) {
		failErr := v.registerFailure(context.WithoutCancel(ctx))
		v.log.Warn().Msg("key rotation rejected: wrong passphrase")
		if failErr != nil {
			return nil, fmt.Errorf("%w: %w: %w", ErrRotationFailed, ErrAuthenticationFailed, failErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrRotationFailed, ErrAuthenticationFailed)
	}

	plaintexts := make([][]byte, 0, len(records))
	defer func() {
		for _, p := range plaintexts {
			crypto.Zero(p)
		}
	}()

	for i, record := range records {
		if err = ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRotationFailed, err)
		}

		key, err := derived.key(record.Salt, record.KDF)
		if err != nil {
			v.log.Warn().Int("record", i).Msg("key rotation aborted")
			return nil, fmt.Errorf("%w: record %d: %w", ErrRotationFailed, i, crypto.ErrDecryptionFailed)
		}
		plain, err := v.core.Decrypt(record, key)
		if err != nil {
			v.log.Warn().Int("record", i).Msg("key rotation aborted")
			return nil, fmt.Errorf("%w: record %d: %w", ErrRotationFailed, i, err)
		}
		plaintexts = append(plaintexts, plain)
	}

	syncSecret, err := v.core.Decrypt(v.ring.SyncSecret, oldKey)
	if err != nil {
		return nil, fmt.Errorf("%w: unseal sync secret: %w", ErrRotationFailed, err)
	}
	defer crypto.Zero(syncSecret)

	salt, err := v.core.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRotationFailed, err)
	}
	newKey, err := v.core.DeriveKey(newPassphrase, salt, v.core.KDFParams())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRotationFailed, err)
	}
	committed := false
	defer func() {
		if !committed {
			newKey.Zero()
		}
	}()

	rotated := make([]models.EncryptedRecord, 0, len(plaintexts))
	for _, plain := range plaintexts {
		record, err := v.core.Encrypt(plain, newKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRotationFailed, err)
		}
		rotated = append(rotated, record)
	}

	ring, err := v.sealKeyring(newKey, syncSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRotationFailed, err)
	}
	ring.Duress = v.ring.Duress

	if stage != nil {
		if err = stage(rotated); err != nil {
			v.log.Warn().Err(err).Msg("key rotation aborted: records not staged")
			return nil, fmt.Errorf("%w: stage records: %w", ErrRotationFailed, err)
		}
	}

	if err = saveKeyring(ctx, v.keys, ring); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRotationFailed, err)
	}

	v.ring = ring
	if v.State().Kind == models.Unlocked {
		v.session.Zero()
		v.session = newKey
		committed = true
		v.touch()
	}

	v.log.Info().Int("records", len(rotated)).Msg("keys rotated")
	return rotated, nil
}

// keyCache derives each distinct (salt, params) pair once.
type keyCache struct {
	core       crypto.CryptoCore
	passphrase []byte
	keys       map[string]*crypto.Key
}

func newKeyCache(core crypto.CryptoCore, passphrase []byte) *keyCache {
	return &keyCache{core: core, passphrase: passphrase, keys: make(map[string]*crypto.Key)}
}

func (c *keyCache) key(salt []byte, params models.KDFParams) (*crypto.Key, error) {
	id := fmt.Sprintf("%x/%d/%d/%d", salt, params.Iterations, params.MemoryKiB, params.Threads)
	if k, ok := c.keys[id]; ok {
		return k, nil
	}

	k, err := c.core.DeriveKey(c.passphrase, salt, params)
	if err != nil {
		return nil, err
	}
	c.keys[id] = k
	return k, nil
}

func (c *keyCache) zero() {
	for _, k := range c.keys {
		k.Zero()
	}
}
