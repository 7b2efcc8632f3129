// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package vault

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-secure-vault/internal/biometric"
	"github.com/MKhiriev/go-secure-vault/internal/crypto"
	"github.com/MKhiriev/go-secure-vault/internal/keystore"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/models"
)

// Vault owns the session key and the authentication state. Construct it
// with [New]; the zero value is not usable.
type Vault struct {
	core         crypto.CryptoCore
	keys         keystore.KeyStore
	attemptStore AttemptStore
	sensor       biometric.Sensor
	clock        Clock
	policy       Policy
	log          *logger.Logger
	onPanic      func(models.AuthState)

	// readable without the gate
	current  atomic.Pointer[models.AuthState]
	unlocked atomic.Bool
	rotating atomic.Bool

	// gate serializes every field below and every use of session
	gate     sync.Mutex
	session  *crypto.Key
	ring     *keyring
	attempts models.AttemptState

	epoch          uint64
	pending        uint64
	timedOut       uint64
	cancelAuth     context.CancelFunc
	watchdog       Timer
	cooldown       Timer
	lastUsed       time.Time
	backgroundedAt time.Time
}

// New loads persisted state and returns a Locked vault.
func New(ctx context.Context, core crypto.CryptoCore, keys keystore.KeyStore, attempts AttemptStore, opts ...Option) (*Vault, error) {
	v := &Vault{
		core:         core,
		keys:         keys,
		attemptStore: attempts,
		clock:        systemClock{},
		policy:       DefaultPolicy(),
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}

	state, err := attempts.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("create vault: %w", err)
	}
	v.attempts = state

	ring, err := loadKeyring(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("create vault: %w", err)
	}
	v.ring = ring

	v.setState(models.Locked, models.ReasonNone)
	v.log.Debug().
		Bool("initialized", ring != nil).
		Uint32("failures", state.Failures).
		Msg("vault created")

	return v, nil
}

// State returns the current authentication state without taking the gate.
func (v *Vault) State() models.AuthState {
	return *v.current.Load()
}

// IsUnlocked reports whether a session key is currently held.
func (v *Vault) IsUnlocked() bool {
	return v.unlocked.Load()
}

// Initialized reports whether Setup has been completed.
func (v *Vault) Initialized() bool {
	v.gate.Lock()
	defer v.gate.Unlock()
	return v.ring != nil
}

// Attempts returns the persisted failure counter and backoff deadline.
func (v *Vault) Attempts() models.AttemptState {
	v.gate.Lock()
	defer v.gate.Unlock()
	return v.attempts
}

// RateLimitedUntil reports the backoff deadline if it lies in the future
// of the vault clock.
func (v *Vault) RateLimitedUntil() (time.Time, bool) {
	v.gate.Lock()
	defer v.gate.Unlock()

	retry := v.attempts.RetryAfter
	return retry, v.clock.Now().Before(retry)
}

// Lock zeroes the session key and returns the vault to Locked from any
// state. An in-flight Authenticate call is canceled.
func (v *Vault) Lock() {
	v.gate.Lock()
	defer v.gate.Unlock()

	v.abandonAttempt()
	v.setState(models.Locked, models.ReasonNone)
	v.log.Info().Msg("vault locked")
}

// TriggerPanic enters PanicMode from any state. The session key is zeroed
// and encrypt/decrypt behave as if the vault were locked.
func (v *Vault) TriggerPanic() {
	v.gate.Lock()
	v.abandonAttempt()
	v.setState(models.PanicMode, models.ReasonNone)
	state := v.State()
	v.gate.Unlock()

	v.log.Warn().Msg("panic mode triggered")
	v.notifyPanic(state)
}

// setState publishes a new state. Any state other than Unlocked drops the
// session key. Must be called with the gate held.
func (v *Vault) setState(kind models.AuthStateKind, reason models.FailureReason) {
	if kind != models.Unlocked {
		v.session.Zero()
		v.session = nil
	}
	if kind != models.Failed && v.cooldown != nil {
		v.cooldown.Stop()
		v.cooldown = nil
	}

	state := models.AuthState{Kind: kind, Reason: reason, Since: v.clock.Now()}
	v.current.Store(&state)
	v.unlocked.Store(kind == models.Unlocked)
}

// abandonAttempt detaches a pending Authenticate call so that its result,
// when it arrives, is discarded. Must be called with the gate held.
func (v *Vault) abandonAttempt() {
	if v.pending == 0 {
		return
	}
	v.pending = 0
	if v.watchdog != nil {
		v.watchdog.Stop()
		v.watchdog = nil
	}
	if v.cancelAuth != nil {
		v.cancelAuth()
		v.cancelAuth = nil
	}
}

// requireUnlocked must be called with the gate held.
func (v *Vault) requireUnlocked() error {
	if v.session == nil || v.State().Kind != models.Unlocked {
		return ErrVaultLocked
	}
	return nil
}

func (v *Vault) touch() {
	v.lastUsed = v.clock.Now()
}

func (v *Vault) notifyPanic(state models.AuthState) {
	if v.onPanic != nil {
		v.onPanic(state)
	}
}
