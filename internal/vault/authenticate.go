package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-secure-vault/internal/biometric"
	"github.com/MKhiriev/go-secure-vault/internal/crypto"
	"github.com/MKhiriev/go-secure-vault/models"
)

// Factor is an unlock factor accepted by [Vault.Authenticate].
type Factor interface {
	factor()
}

// Passphrase unlocks with the user's passphrase, or enters PanicMode when
// it matches the configured duress passphrase. The caller owns the slice.
type Passphrase []byte

// Biometric unlocks with the platform sensor.
type Biometric struct {
	Prompt string
}

func (Passphrase) factor() {}
func (Biometric) factor()  {}

type outcome int

const (
	outcomeRejected outcome = iota
	outcomeUnlocked
	outcomeDuress
	outcomeAborted
)

type verification struct {
	outcome outcome
	key     *crypto.Key
	err     error
}

func (r verification) discard() {
	r.key.Zero()
}

// Authenticate verifies factor and drives the state machine.
//
// On success the vault is Unlocked and the counter resets. A duress
// passphrase returns PanicMode with a nil error. Any wrong factor returns
// [ErrAuthenticationFailed], counts toward backoff and leaves the vault
// Failed until the cool-down elapses. While the backoff window is active a
// [*RateLimitedError] is returned without evaluating the factor.
//
// Canceling ctx, or a biometric cancel or unavailable sensor, returns the
// vault to Locked without counting. If no result arrives within
// Policy.AuthTimeout the vault becomes Failed(timeout).
func (v *Vault) Authenticate(ctx context.Context, factor Factor) (models.AuthState, error) {
	v.gate.Lock()

	switch current := v.State(); current.Kind {
	case models.Unlocked:
		v.gate.Unlock()
		return current, nil
	case models.Authenticating:
		v.gate.Unlock()
		return current, ErrAuthenticationInProgress
	case models.PanicMode:
		v.gate.Unlock()
		return current, ErrAuthenticationFailed
	}

	if retry := v.attempts.RetryAfter; v.clock.Now().Before(retry) {
		current := v.State()
		v.gate.Unlock()
		v.log.Warn().Time("retry_after", retry).Msg("authentication rate limited")
		return current, &RateLimitedError{RetryAfter: retry}
	}

	if v.ring == nil {
		current := v.State()
		v.gate.Unlock()
		return current, ErrNotInitialized
	}

	v.epoch++
	epoch := v.epoch
	ring := v.ring.clone()
	attemptCtx, cancel := context.WithCancel(ctx)
	v.pending = epoch
	v.cancelAuth = cancel
	v.setState(models.Authenticating, models.ReasonNone)
	if v.policy.AuthTimeout > 0 {
		v.watchdog = v.clock.AfterFunc(v.policy.AuthTimeout, func() { v.expire(epoch) })
	}
	v.gate.Unlock()

	results := make(chan verification, 1)
	go func() {
		results <- v.verify(attemptCtx, ring, factor)
	}()

	select {
	case res := <-results:
		return v.complete(ctx, epoch, res)
	case <-attemptCtx.Done():
		// the verifier may still finish; its key must not survive
		go func() { (<-results).discard() }()
		return v.abort(ctx, epoch)
	}
}

func (v *Vault) verify(ctx context.Context, ring *keyring, factor Factor) verification {
	switch f := factor.(type) {
	case Passphrase:
		return v.verifyPassphrase(ring, f)
	case Biometric:
		return v.verifyBiometric(ctx, ring, f.Prompt)
	default:
		return verification{outcome: outcomeAborted, err: ErrUnsupportedFactor}
	}
}

// verifyPassphrase always derives both the real and the duress key when a
// duress verifier exists, so the two paths take the same time.
func (v *Vault) verifyPassphrase(ring *keyring, passphrase []byte) verification {
	key, _ := v.core.DeriveKey(passphrase, ring.Verifier.Salt, ring.Verifier.KDF)
	matched := v.checkVerifier(ring.Verifier, key)

	duress := false
	if ring.Duress != nil {
		duressKey, _ := v.core.DeriveKey(passphrase, ring.Duress.Salt, ring.Duress.KDF)
		duress = v.checkVerifier(*ring.Duress, duressKey)
		duressKey.Zero()
	}

	switch {
	case matched:
		return verification{outcome: outcomeUnlocked, key: key}
	case duress:
		key.Zero()
		return verification{outcome: outcomeDuress}
	default:
		key.Zero()
		return verification{outcome: outcomeRejected}
	}
}

func (v *Vault) verifyBiometric(ctx context.Context, ring *keyring, prompt string) verification {
	if v.sensor == nil || ring.Biometric == nil {
		return verification{outcome: outcomeAborted, err: biometric.ErrNotAvailable}
	}

	secret, err := v.sensor.Authenticate(ctx, prompt)
	defer crypto.Zero(secret)
	if err != nil {
		if errors.Is(err, biometric.ErrAuthenticationFailed) {
			return verification{outcome: outcomeRejected}
		}
		return verification{outcome: outcomeAborted, err: err}
	}

	wrapKey, err := v.core.DeriveKey(secret, ring.Biometric.Salt, ring.Biometric.KDF)
	if err != nil {
		return verification{outcome: outcomeRejected}
	}
	material, err := v.core.Decrypt(*ring.Biometric, wrapKey)
	wrapKey.Zero()
	if err != nil {
		return verification{outcome: outcomeRejected}
	}

	key := crypto.NewKey(material, ring.Verifier.Salt, ring.Verifier.KDF)
	crypto.Zero(material)
	if !v.checkVerifier(ring.Verifier, key) {
		key.Zero()
		return verification{outcome: outcomeRejected}
	}
	return verification{outcome: outcomeUnlocked, key: key}
}

func (v *Vault) checkVerifier(record models.EncryptedRecord, key *crypto.Key) bool {
	if key == nil {
		return false
	}
	plain, err := v.core.Decrypt(record, key)
	if err != nil {
		return false
	}
	defer crypto.Zero(plain)
	return v.core.ConstantTimeEquals(plain, verifierMarker)
}

// complete applies a verification result if its attempt is still current.
func (v *Vault) complete(ctx context.Context, epoch uint64, res verification) (models.AuthState, error) {
	v.gate.Lock()

	if v.pending != epoch {
		res.discard()
		state, err := v.State(), v.staleError(epoch)
		v.gate.Unlock()
		return state, err
	}
	v.abandonAttempt()

	persistCtx := context.WithoutCancel(ctx)

	switch res.outcome {
	case outcomeUnlocked:
		v.session = res.key
		v.setState(models.Unlocked, models.ReasonNone)
		v.touch()
		v.backgroundedAt = time.Time{}
		v.resetAttempts(persistCtx)
		state := v.State()
		v.gate.Unlock()
		v.log.Info().Msg("vault unlocked")
		return state, nil

	case outcomeDuress:
		v.setState(models.PanicMode, models.ReasonNone)
		state := v.State()
		v.gate.Unlock()
		v.log.Warn().Msg("duress factor accepted, entering panic mode")
		v.notifyPanic(state)
		return state, nil

	case outcomeRejected:
		err := v.registerFailure(persistCtx)
		v.setState(models.Failed, models.ReasonRejected)
		v.scheduleRelock(epoch)
		state := v.State()
		v.gate.Unlock()
		if err != nil {
			return state, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		}
		return state, ErrAuthenticationFailed

	default:
		v.setState(models.Locked, models.ReasonNone)
		state := v.State()
		v.gate.Unlock()
		v.log.Info().Err(res.err).Msg("authentication aborted")
		return state, fmt.Errorf("%w: %w", ErrAuthenticationCanceled, res.err)
	}
}

// abort handles an attempt whose context finished first: either the caller
// canceled or the watchdog fired.
func (v *Vault) abort(ctx context.Context, epoch uint64) (models.AuthState, error) {
	v.gate.Lock()
	defer v.gate.Unlock()

	if v.pending != epoch {
		return v.State(), v.staleError(epoch)
	}

	v.abandonAttempt()
	v.setState(models.Locked, models.ReasonNone)
	v.log.Info().Msg("authentication canceled")

	cause := ctx.Err()
	if cause == nil {
		cause = context.Canceled
	}
	return v.State(), fmt.Errorf("%w: %w", ErrAuthenticationCanceled, cause)
}

// expire is the watchdog callback.
func (v *Vault) expire(epoch uint64) {
	v.gate.Lock()
	defer v.gate.Unlock()

	if v.pending != epoch {
		return
	}
	v.abandonAttempt()
	v.timedOut = epoch
	v.setState(models.Failed, models.ReasonTimeout)
	v.scheduleRelock(epoch)
	v.log.Warn().Dur("timeout", v.policy.AuthTimeout).Msg("authentication timed out")
}

func (v *Vault) staleError(epoch uint64) error {
	if v.timedOut == epoch {
		return ErrAuthenticationTimeout
	}
	return ErrAuthenticationCanceled
}

// scheduleRelock moves Failed back to Locked after the cool-down unless a
// newer attempt or transition happened in between. Gate must be held.
func (v *Vault) scheduleRelock(epoch uint64) {
	if v.policy.FailureCooldown <= 0 {
		v.setState(models.Locked, models.ReasonNone)
		return
	}
	v.cooldown = v.clock.AfterFunc(v.policy.FailureCooldown, func() {
		v.gate.Lock()
		defer v.gate.Unlock()
		if v.epoch == epoch && v.State().Kind == models.Failed {
			v.setState(models.Locked, models.ReasonNone)
		}
	})
}

// registerFailure bumps the counter and persists it with the new backoff
// deadline. Gate must be held.
func (v *Vault) registerFailure(ctx context.Context) error {
	now := v.clock.Now()
	v.attempts.Failures++
	v.attempts.LastFailure = now
	v.attempts.RetryAfter = v.policy.retryAfter(now, v.attempts.Failures)

	v.log.Warn().
		Uint32("failures", v.attempts.Failures).
		Time("retry_after", v.attempts.RetryAfter).
		Msg("authentication failed")

	if err := v.attemptStore.Save(ctx, v.attempts); err != nil {
		v.log.Error().Err(err).Msg("failed to persist attempt counter")
		return err
	}
	return nil
}

// resetAttempts clears the counter after a successful unlock. A failed save
// is only logged. Gate must be held.
func (v *Vault) resetAttempts(ctx context.Context) {
	if v.attempts.Failures == 0 && v.attempts.RetryAfter.IsZero() {
		return
	}
	v.attempts = models.AttemptState{}
	if err := v.attemptStore.Save(ctx, v.attempts); err != nil {
		v.log.Error().Err(err).Msg("failed to persist attempt reset")
	}
}
