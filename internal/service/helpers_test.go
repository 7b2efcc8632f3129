package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secure-vault/internal/crypto"
	"github.com/MKhiriev/go-secure-vault/internal/keystore"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/internal/minimizer"
	"github.com/MKhiriev/go-secure-vault/internal/zksync"
	"github.com/MKhiriev/go-secure-vault/models"
)

var fastKDF = models.KDFParams{Iterations: 1, MemoryKiB: crypto.MinMemoryKiB, Threads: 1}

type staticSecret []byte

func (s staticSecret) SyncSecret(context.Context) ([]byte, error) {
	return append([]byte(nil), s...), nil
}

// syncStack is a real zero-knowledge codec on an in-memory key store.
type syncStack struct {
	keys      *keystore.Memory
	sealer    *zksync.Service
	minimizer *minimizer.Minimizer
}

func newSyncStack(t *testing.T) *syncStack {
	t.Helper()

	core, err := crypto.NewCryptoCore(crypto.Params{Algorithm: models.AES256GCMArgon2id, KDF: fastKDF})
	require.NoError(t, err)

	keys := keystore.NewMemory()
	m, err := minimizer.New(minimizer.Policy{Name: "outfit", Essential: []string{"title", "profile.size"}}, keys, logger.Nop())
	require.NoError(t, err)

	secret := staticSecret(bytes.Repeat([]byte{7}, 32))
	return &syncStack{
		keys:      keys,
		sealer:    zksync.New(core, keys, secret, m, logger.Nop()),
		minimizer: m,
	}
}

func outfitRecord(id string) models.Record {
	return models.Record{
		ID: id,
		Fields: map[string]any{
			"title":   "outfit-data-42",
			"notes":   "private diary entry",
			"profile": map[string]any{"size": "M", "address": "1 Main St"},
		},
	}
}

// validPayload returns an encoded payload that passes structural checks.
func validPayload(t *testing.T) []byte {
	t.Helper()

	material, err := zksync.EncodeKeyMaterial(models.KeyMaterial{
		Algorithm: models.AES256GCMArgon2id,
		KDF:       zksync.KDFArgon2id,
		Salt:      bytes.Repeat([]byte{1}, crypto.SaltSize),
		Params:    fastKDF,
	})
	require.NoError(t, err)

	data, err := zksync.EncodePayload(models.ZeroKnowledgePayload{
		EncryptedData: []byte("opaque"),
		KeyMaterial:   material,
		Nonce:         bytes.Repeat([]byte{2}, crypto.NonceSize),
	})
	require.NoError(t, err)
	return data
}
