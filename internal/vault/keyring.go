package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-secure-vault/internal/keystore"
	"github.com/MKhiriev/go-secure-vault/models"
)

const (
	keyringID      = "vault/keyring"
	keyringVersion = 1
)

var verifierMarker = []byte("go-secure-vault/verifier/v1")

// keyring is everything the vault persists about its keys. It is written as
// a single handle so that replacing it is one atomic Put.
//
// The install salt and work factor are those of Verifier. SyncSecret is
// sealed under the session key, Biometric seals the session key bytes under
// a key derived from the sensor secret.
type keyring struct {
	Version    int                     `json:"v"`
	Verifier   models.EncryptedRecord  `json:"verifier"`
	SyncSecret models.EncryptedRecord  `json:"sync_secret"`
	Duress     *models.EncryptedRecord `json:"duress,omitempty"`
	Biometric  *models.EncryptedRecord `json:"biometric,omitempty"`
}

func (k *keyring) clone() *keyring {
	c := *k
	return &c
}

func loadKeyring(ctx context.Context, keys keystore.KeyStore) (*keyring, error) {
	data, err := keys.Get(ctx, keyringID)
	if errors.Is(err, keystore.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load keyring: %w", err)
	}

	var ring keyring
	if err = json.Unmarshal(data, &ring); err != nil {
		return nil, fmt.Errorf("decode keyring: %w", err)
	}
	if ring.Version != keyringVersion {
		return nil, fmt.Errorf("decode keyring: unsupported version %d", ring.Version)
	}
	return &ring, nil
}

func saveKeyring(ctx context.Context, keys keystore.KeyStore, ring *keyring) error {
	data, err := json.Marshal(ring)
	if err != nil {
		return fmt.Errorf("encode keyring: %w", err)
	}
	if err = keys.Put(ctx, keyringID, data); err != nil {
		return fmt.Errorf("save keyring: %w", err)
	}
	return nil
}
