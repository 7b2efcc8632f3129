package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-secure-vault/internal/keystore"
	"github.com/MKhiriev/go-secure-vault/models"
)

// AttemptStore persists the failed-attempt counter and backoff deadline.
// A missing state loads as the zero value.
type AttemptStore interface {
	Load(ctx context.Context) (models.AttemptState, error)
	Save(ctx context.Context, state models.AttemptState) error
}

const attemptsKeyID = "vault/attempts"

type keyStoreAttempts struct {
	keys keystore.KeyStore
}

// NewKeyStoreAttempts keeps the attempt state as a JSON handle in keys.
func NewKeyStoreAttempts(keys keystore.KeyStore) AttemptStore {
	return &keyStoreAttempts{keys: keys}
}

func (a *keyStoreAttempts) Load(ctx context.Context) (models.AttemptState, error) {
	data, err := a.keys.Get(ctx, attemptsKeyID)
	if errors.Is(err, keystore.ErrKeyNotFound) {
		return models.AttemptState{}, nil
	}
	if err != nil {
		return models.AttemptState{}, fmt.Errorf("load attempts: %w", err)
	}

	var state models.AttemptState
	if err = json.Unmarshal(data, &state); err != nil {
		return models.AttemptState{}, fmt.Errorf("decode attempts: %w", err)
	}
	return state, nil
}

func (a *keyStoreAttempts) Save(ctx context.Context, state models.AttemptState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode attempts: %w", err)
	}
	if err = a.keys.Put(ctx, attemptsKeyID, data); err != nil {
		return fmt.Errorf("save attempts: %w", err)
	}
	return nil
}
