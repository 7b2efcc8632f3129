// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

//go:generate mockgen -source=keystore.go -destination=../mock/keystore_mock.go -package=mock

// Package keystore defines the contract for platform secure key storage and
// an in-memory implementation.
//
// A KeyStore holds opaque byte blobs addressed by identifier. It performs no
// cryptography of its own: callers store only wrapped or public material.
package keystore

import (
	"context"
	"errors"
	"sync"
)

// ErrKeyNotFound is returned by Get when no handle is stored under the id.
var ErrKeyNotFound = errors.New("key handle not found")

// KeyStore persists opaque key handles.
//
// Put overwrites an existing handle (last write wins). Delete of an unknown
// id is a no-op.
type KeyStore interface {
	Put(ctx context.Context, id string, data []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

const recordKeyPrefix = "zksync/record/"

// RecordKeyID names the per-record erasure key of a synced record.
func RecordKeyID(recordID string) string {
	return recordKeyPrefix + recordID
}

// Memory is an ephemeral [KeyStore] backed by a map.
type Memory struct {
	mu      sync.RWMutex
	handles map[string][]byte
}

// NewMemory returns an empty in-memory [KeyStore].
func NewMemory() *Memory {
	return &Memory{handles: make(map[string][]byte)}
}

func (m *Memory) Put(ctx context.Context, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.handles[id] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.handles[id]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if data, ok := m.handles[id]; ok {
		clear(data)
		delete(m.handles, id)
	}
	return nil
}

// Len reports the number of stored handles.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handles)
}
