// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package zksync turns records into payloads a remote store can hold but
// never read, and back.
//
// The sync key of a payload is derived in two steps: Argon2id over the
// vault's sync secret with a fresh salt, then HKDF-SHA256 keyed by the
// record's erasure key and bound to the record id. Only the salt, the work
// factor and the algorithm id travel with the payload. Deleting the erasure
// key destroys every payload of the record, wherever it is stored.
package zksync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-secure-vault/internal/crypto"
	"github.com/MKhiriev/go-secure-vault/internal/keystore"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/internal/minimizer"
	"github.com/MKhiriev/go-secure-vault/models"
)

const infoPrefix = "zksync:"

// SecretSource yields the user's sync secret. The returned slice is owned
// and zeroed by the caller. *vault.Vault implements it.
type SecretSource interface {
	SyncSecret(ctx context.Context) ([]byte, error)
}

// Service encrypts records for sync and decrypts synced payloads.
type Service struct {
	core      crypto.CryptoCore
	keys      keystore.KeyStore
	secrets   SecretSource
	minimizer *minimizer.Minimizer
	log       *logger.Logger

	// keyMu serializes create-if-missing of erasure keys.
	keyMu sync.Mutex
}

func New(core crypto.CryptoCore, keys keystore.KeyStore, secrets SecretSource, m *minimizer.Minimizer, log *logger.Logger) *Service {
	return &Service{core: core, keys: keys, secrets: secrets, minimizer: m, log: log}
}

// EncryptForSync minimizes record and seals it for the remote store. Two
// calls with the same record never produce the same payload.
func (s *Service) EncryptForSync(ctx context.Context, record models.Record) (models.ZeroKnowledgePayload, error) {
	if record.ID == "" {
		return models.ZeroKnowledgePayload{}, errors.New("encrypt for sync: empty record id")
	}

	plaintext, err := json.Marshal(s.minimizer.Minimize(record))
	if err != nil {
		return models.ZeroKnowledgePayload{}, fmt.Errorf("encrypt for sync: encode record: %w", err)
	}
	defer crypto.Zero(plaintext)

	erasureKey, err := s.erasureKey(ctx, record.ID)
	if err != nil {
		return models.ZeroKnowledgePayload{}, fmt.Errorf("encrypt for sync: %w", err)
	}
	defer crypto.Zero(erasureKey)

	salt, err := s.core.GenerateSalt()
	if err != nil {
		return models.ZeroKnowledgePayload{}, fmt.Errorf("encrypt for sync: %w", err)
	}

	key, err := s.syncKey(ctx, record.ID, erasureKey, salt, s.core.KDFParams())
	if err != nil {
		return models.ZeroKnowledgePayload{}, fmt.Errorf("encrypt for sync: %w", err)
	}
	defer key.Zero()

	sealed, err := s.core.Encrypt(plaintext, key)
	if err != nil {
		return models.ZeroKnowledgePayload{}, fmt.Errorf("encrypt for sync: %w", err)
	}

	material, err := EncodeKeyMaterial(models.KeyMaterial{
		Algorithm: sealed.Algorithm,
		KDF:       KDFArgon2id,
		Salt:      sealed.Salt,
		Params:    sealed.KDF,
	})
	if err != nil {
		return models.ZeroKnowledgePayload{}, fmt.Errorf("encrypt for sync: %w", err)
	}

	s.log.Debug().Str("record_id", record.ID).Int("bytes", len(sealed.Ciphertext)).Msg("record sealed for sync")

	return models.ZeroKnowledgePayload{
		EncryptedData: sealed.Ciphertext,
		KeyMaterial:   material,
		Nonce:         sealed.Nonce,
	}, nil
}

// DecryptFromSync re-derives the sync key and opens payload as the record
// recordID. Failures are [*DecryptionError] of kind KeyMismatch or
// InvalidPayload; a locked vault or a storage failure is returned as is.
func (s *Service) DecryptFromSync(ctx context.Context, recordID string, payload models.ZeroKnowledgePayload) (models.Record, error) {
	if err := validatePayload(payload); err != nil {
		return models.Record{}, err
	}
	material, err := DecodeKeyMaterial(payload.KeyMaterial)
	if err != nil {
		return models.Record{}, err
	}
	if err = s.checkWorkFactor(material.Params); err != nil {
		return models.Record{}, err
	}

	erasureKey, err := s.keys.Get(ctx, keystore.RecordKeyID(recordID))
	if errors.Is(err, keystore.ErrKeyNotFound) {
		return models.Record{}, keyMismatch(errors.New("record key erased or never created"))
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("decrypt from sync: %w", err)
	}
	defer crypto.Zero(erasureKey)

	key, err := s.syncKey(ctx, recordID, erasureKey, material.Salt, material.Params)
	if err != nil {
		if errors.Is(err, crypto.ErrKeyDerivation) {
			return models.Record{}, invalidPayload(err)
		}
		return models.Record{}, fmt.Errorf("decrypt from sync: %w", err)
	}
	defer key.Zero()

	plaintext, err := s.core.Decrypt(models.EncryptedRecord{
		Ciphertext: payload.EncryptedData,
		Nonce:      payload.Nonce,
		Salt:       material.Salt,
		KDF:        material.Params,
		Algorithm:  material.Algorithm,
	}, key)
	if err != nil {
		return models.Record{}, keyMismatch(err)
	}
	defer crypto.Zero(plaintext)

	var record models.Record
	if err = json.Unmarshal(plaintext, &record); err != nil {
		return models.Record{}, invalidPayload(err)
	}
	if record.ID != recordID {
		return models.Record{}, invalidPayload(fmt.Errorf("payload belongs to record %q", record.ID))
	}
	return record, nil
}

// checkWorkFactor rejects key material asking for more Argon2id work than
// this client would spend itself: the larger of the configured and the
// default parameters, per field.
func (s *Service) checkWorkFactor(params models.KDFParams) error {
	local, defaults := s.core.KDFParams(), crypto.DefaultParams().KDF
	ceiling := models.KDFParams{
		Iterations: max(local.Iterations, defaults.Iterations),
		MemoryKiB:  max(local.MemoryKiB, defaults.MemoryKiB),
		Threads:    max(local.Threads, defaults.Threads),
	}

	if params.Iterations > ceiling.Iterations || params.MemoryKiB > ceiling.MemoryKiB || params.Threads > ceiling.Threads {
		return invalidPayload(fmt.Errorf("work factor t=%d m=%dKiB p=%d exceeds t=%d m=%dKiB p=%d",
			params.Iterations, params.MemoryKiB, params.Threads,
			ceiling.Iterations, ceiling.MemoryKiB, ceiling.Threads))
	}
	return nil
}

// erasureKey returns the record's erasure key, creating it on first use.
func (s *Service) erasureKey(ctx context.Context, recordID string) ([]byte, error) {
	id := keystore.RecordKeyID(recordID)

	s.keyMu.Lock()
	defer s.keyMu.Unlock()

	existing, err := s.keys.Get(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, keystore.ErrKeyNotFound) {
		return nil, fmt.Errorf("load erasure key: %w", err)
	}

	fresh, err := s.core.GenerateSecret()
	if err != nil {
		return nil, err
	}
	if err = s.keys.Put(ctx, id, fresh); err != nil {
		crypto.Zero(fresh)
		return nil, fmt.Errorf("store erasure key: %w", err)
	}
	return fresh, nil
}

func (s *Service) syncKey(ctx context.Context, recordID string, erasureKey, salt []byte, params models.KDFParams) (*crypto.Key, error) {
	secret, err := s.secrets.SyncSecret(ctx)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(secret)

	base, err := s.core.DeriveKey(secret, salt, params)
	if err != nil {
		return nil, err
	}
	defer base.Zero()

	return s.core.ExpandKey(base, erasureKey, []byte(infoPrefix+recordID))
}
