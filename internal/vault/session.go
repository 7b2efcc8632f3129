package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-secure-vault/models"
)

const secureKeyPrefix = "vault/secure/"

// Encrypt seals plaintext under the session key.
func (v *Vault) Encrypt(plaintext []byte) (models.EncryptedRecord, error) {
	if v.rotating.Load() {
		return models.EncryptedRecord{}, ErrRotationInProgress
	}

	v.gate.Lock()
	defer v.gate.Unlock()

	if v.rotating.Load() {
		return models.EncryptedRecord{}, ErrRotationInProgress
	}
	if err := v.requireUnlocked(); err != nil {
		return models.EncryptedRecord{}, err
	}

	v.touch()
	return v.core.Encrypt(plaintext, v.session)
}

// Decrypt opens a record sealed under the session key. Every cryptographic
// failure is crypto.ErrDecryptionFailed.
func (v *Vault) Decrypt(record models.EncryptedRecord) ([]byte, error) {
	if v.rotating.Load() {
		return nil, ErrRotationInProgress
	}

	v.gate.Lock()
	defer v.gate.Unlock()

	if v.rotating.Load() {
		return nil, ErrRotationInProgress
	}
	if err := v.requireUnlocked(); err != nil {
		return nil, err
	}

	v.touch()
	return v.core.Decrypt(record, v.session)
}

// SyncSecret returns a copy of the sync secret. The caller must zero it.
func (v *Vault) SyncSecret(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v.rotating.Load() {
		return nil, ErrRotationInProgress
	}

	v.gate.Lock()
	defer v.gate.Unlock()

	if err := v.requireUnlocked(); err != nil {
		return nil, err
	}

	v.touch()
	secret, err := v.core.Decrypt(v.ring.SyncSecret, v.session)
	if err != nil {
		return nil, fmt.Errorf("unseal sync secret: %w", err)
	}
	return secret, nil
}

// StoreSecureKey writes key material to the KeyStore under the vault's
// namespace. Requires Unlocked.
func (v *Vault) StoreSecureKey(ctx context.Context, id string, data []byte) error {
	fullID, err := secureKeyID(id)
	if err != nil {
		return err
	}

	v.gate.Lock()
	defer v.gate.Unlock()

	if err = v.requireUnlocked(); err != nil {
		return err
	}
	v.touch()
	return v.keys.Put(ctx, fullID, data)
}

// RetrieveSecureKey reads key material stored with StoreSecureKey.
// Requires Unlocked.
func (v *Vault) RetrieveSecureKey(ctx context.Context, id string) ([]byte, error) {
	fullID, err := secureKeyID(id)
	if err != nil {
		return nil, err
	}

	v.gate.Lock()
	defer v.gate.Unlock()

	if err = v.requireUnlocked(); err != nil {
		return nil, err
	}
	v.touch()
	return v.keys.Get(ctx, fullID)
}

// DeleteSecureKey removes key material stored with StoreSecureKey.
// Requires Unlocked.
func (v *Vault) DeleteSecureKey(ctx context.Context, id string) error {
	fullID, err := secureKeyID(id)
	if err != nil {
		return err
	}

	v.gate.Lock()
	defer v.gate.Unlock()

	if err = v.requireUnlocked(); err != nil {
		return err
	}
	v.touch()
	return v.keys.Delete(ctx, fullID)
}

func secureKeyID(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, "\x00") || strings.Contains(id, "..") {
		return "", ErrInvalidKeyID
	}
	return secureKeyPrefix + id, nil
}
