// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package minimizer reduces records to their essential fields before they
// become eligible for sync, and erases records by destroying their key.
package minimizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-secure-vault/internal/keystore"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/models"
)

var ErrInvalidPolicy = errors.New("invalid minimization policy")

// Policy is an allow-list of field paths. A path is a dot-separated chain
// of keys selecting a nested field, e.g. "profile.size".
type Policy struct {
	Name      string
	Essential []string
}

// Validate rejects empty paths and empty path segments.
func (p Policy) Validate() error {
	for _, path := range p.Essential {
		for _, part := range strings.Split(path, ".") {
			if part == "" {
				return fmt.Errorf("%w %q: bad path %q", ErrInvalidPolicy, p.Name, path)
			}
		}
	}
	return nil
}

// Minimize returns a deep copy of record holding only the fields selected
// by policy. The input is never modified and Minimize(Minimize(r)) equals
// Minimize(r). Paths that do not resolve are ignored.
func Minimize(record models.Record, policy Policy) models.Record {
	out := models.Record{ID: record.ID, Fields: make(map[string]any)}

	for _, path := range policy.Essential {
		parts := strings.Split(path, ".")
		if value, ok := lookup(record.Fields, parts); ok {
			assign(out.Fields, parts, deepCopy(value))
		}
	}

	return out
}

func lookup(fields map[string]any, parts []string) (any, bool) {
	var current any = fields
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func assign(fields map[string]any, parts []string, value any) {
	m := fields
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		c := make(map[string]any, len(t))
		for k, val := range t {
			c[k] = deepCopy(val)
		}
		return c
	case []any:
		c := make([]any, len(t))
		for i, val := range t {
			c[i] = deepCopy(val)
		}
		return c
	case []string:
		return append([]string(nil), t...)
	case []byte:
		return append([]byte(nil), t...)
	default:
		return v
	}
}

// Minimizer applies a policy and performs record erasure.
type Minimizer struct {
	policy Policy
	keys   keystore.KeyStore
	log    *logger.Logger
}

// New validates policy and returns a [Minimizer] erasing keys from keys.
func New(policy Policy, keys keystore.KeyStore, log *logger.Logger) (*Minimizer, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Minimizer{policy: policy, keys: keys, log: log}, nil
}

// Policy returns the configured policy.
func (m *Minimizer) Policy() Policy {
	return m.policy
}

// Minimize applies the configured policy.
func (m *Minimizer) Minimize(record models.Record) models.Record {
	return Minimize(record, m.policy)
}

// EraseAll makes every payload ever synced for recordID unrecoverable by
// deleting the record's erasure key. It does not contact the remote store.
// Erasing an unknown record is not an error.
func (m *Minimizer) EraseAll(ctx context.Context, recordID string) error {
	if err := m.keys.Delete(ctx, keystore.RecordKeyID(recordID)); err != nil {
		return fmt.Errorf("erase record %s: %w", recordID, err)
	}
	m.log.Info().Str("record_id", recordID).Msg("record erasure key destroyed")
	return nil
}
