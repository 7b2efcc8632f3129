// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the client side of the sync transport.
//
// [SyncTransport] moves encoded zero-knowledge payloads to and from the blind
// relay. It does not retry: a failed call is reported once and the caller
// decides what to do. HTTP statuses are mapped to the sentinel errors in
// errors.go so callers can use [errors.Is].
package adapter

import (
	"context"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// SyncTransport stores and fetches opaque payload bytes by record id.
type SyncTransport interface {
	// Push uploads payload for recordID, replacing any previous version.
	Push(ctx context.Context, recordID string, payload []byte) error
	// Pull downloads the payload stored for recordID.
	Pull(ctx context.Context, recordID string) ([]byte, error)
	// List returns the record ids the relay holds for the caller.
	List(ctx context.Context) ([]string, error)
	// Delete removes the remote copy of recordID.
	Delete(ctx context.Context, recordID string) error
}
