package vault

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-secure-vault/internal/biometric"
	"github.com/MKhiriev/go-secure-vault/internal/crypto"
)

// Setup enrolls passphrase on first run: it draws the install salt, stores
// a verifier and a freshly generated sync secret sealed under the session
// key. The vault stays Locked.
func (v *Vault) Setup(ctx context.Context, passphrase []byte) error {
	v.gate.Lock()
	defer v.gate.Unlock()

	if v.ring != nil {
		return ErrAlreadyInitialized
	}

	salt, err := v.core.GenerateSalt()
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	key, err := v.core.DeriveKey(passphrase, salt, v.core.KDFParams())
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	defer key.Zero()

	secret, err := v.core.GenerateSecret()
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	defer crypto.Zero(secret)

	ring, err := v.sealKeyring(key, secret)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if err = saveKeyring(ctx, v.keys, ring); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	v.ring = ring
	v.log.Info().Str("algorithm", v.core.Algorithm().String()).Msg("vault initialized")
	return nil
}

// sealKeyring builds a keyring whose verifier and sync secret are sealed
// under key.
func (v *Vault) sealKeyring(key *crypto.Key, syncSecret []byte) (*keyring, error) {
	verifier, err := v.core.Encrypt(verifierMarker, key)
	if err != nil {
		return nil, fmt.Errorf("seal verifier: %w", err)
	}
	sealed, err := v.core.Encrypt(syncSecret, key)
	if err != nil {
		return nil, fmt.Errorf("seal sync secret: %w", err)
	}

	return &keyring{
		Version:    keyringVersion,
		Verifier:   verifier,
		SyncSecret: sealed,
	}, nil
}

// SetDuressPassphrase configures the passphrase that opens PanicMode
// instead of the vault. It has its own salt. Requires Unlocked.
func (v *Vault) SetDuressPassphrase(ctx context.Context, passphrase []byte) error {
	v.gate.Lock()
	defer v.gate.Unlock()

	if err := v.requireUnlocked(); err != nil {
		return err
	}

	same, _ := v.core.DeriveKey(passphrase, v.ring.Verifier.Salt, v.ring.Verifier.KDF)
	collides := v.checkVerifier(v.ring.Verifier, same)
	same.Zero()
	if collides {
		return ErrDuressMatchesPassphrase
	}

	salt, err := v.core.GenerateSalt()
	if err != nil {
		return fmt.Errorf("set duress passphrase: %w", err)
	}
	key, err := v.core.DeriveKey(passphrase, salt, v.core.KDFParams())
	if err != nil {
		return fmt.Errorf("set duress passphrase: %w", err)
	}
	defer key.Zero()

	verifier, err := v.core.Encrypt(verifierMarker, key)
	if err != nil {
		return fmt.Errorf("set duress passphrase: %w", err)
	}

	ring := v.ring.clone()
	ring.Duress = &verifier
	if err = saveKeyring(ctx, v.keys, ring); err != nil {
		return fmt.Errorf("set duress passphrase: %w", err)
	}

	v.ring = ring
	v.touch()
	v.log.Info().Msg("duress passphrase configured")
	return nil
}

// EnrollBiometric binds the current session key to the sensor secret so
// that the Biometric factor can unlock. Requires Unlocked. The sensor prompt
// and the key derivation run outside the gate; enrollment is refused if the
// vault was locked meanwhile.
func (v *Vault) EnrollBiometric(ctx context.Context, prompt string) error {
	v.gate.Lock()
	if err := v.requireUnlocked(); err != nil {
		v.gate.Unlock()
		return err
	}
	if v.sensor == nil {
		v.gate.Unlock()
		return biometric.ErrNotAvailable
	}
	epoch := v.epoch
	v.gate.Unlock()

	secret, err := v.sensor.Authenticate(ctx, prompt)
	defer crypto.Zero(secret)
	if err != nil {
		return fmt.Errorf("enroll biometric: %w", err)
	}

	salt, err := v.core.GenerateSalt()
	if err != nil {
		return fmt.Errorf("enroll biometric: %w", err)
	}
	wrapKey, err := v.core.DeriveKey(secret, salt, v.core.KDFParams())
	if err != nil {
		return fmt.Errorf("enroll biometric: %w", err)
	}
	defer wrapKey.Zero()

	v.gate.Lock()
	defer v.gate.Unlock()

	if v.epoch != epoch {
		return ErrVaultLocked
	}
	if err = v.requireUnlocked(); err != nil {
		return err
	}

	wrapped, err := v.core.Encrypt(v.session.Bytes(), wrapKey)
	if err != nil {
		return fmt.Errorf("enroll biometric: %w", err)
	}

	ring := v.ring.clone()
	ring.Biometric = &wrapped
	if err = saveKeyring(ctx, v.keys, ring); err != nil {
		return fmt.Errorf("enroll biometric: %w", err)
	}

	v.ring = ring
	v.touch()
	v.log.Info().Msg("biometric factor enrolled")
	return nil
}

// BiometricEnrolled reports whether the Biometric factor can be used.
func (v *Vault) BiometricEnrolled() bool {
	v.gate.Lock()
	defer v.gate.Unlock()
	return v.sensor != nil && v.ring != nil && v.ring.Biometric != nil
}

// DuressConfigured reports whether a duress passphrase is set.
func (v *Vault) DuressConfigured() bool {
	v.gate.Lock()
	defer v.gate.Unlock()
	return v.ring != nil && v.ring.Duress != nil
}
