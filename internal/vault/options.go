package vault

import (
	"github.com/MKhiriev/go-secure-vault/internal/biometric"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/models"
)

// Option configures a [Vault].
type Option func(*Vault)

// WithBiometric enables the biometric factor.
func WithBiometric(sensor biometric.Sensor) Option {
	return func(v *Vault) { v.sensor = sensor }
}

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(v *Vault) { v.clock = clock }
}

// WithPolicy replaces [DefaultPolicy].
func WithPolicy(policy Policy) Option {
	return func(v *Vault) { v.policy = policy }
}

func WithLogger(log *logger.Logger) Option {
	return func(v *Vault) { v.log = log }
}

// WithPanicHook registers a callback invoked, outside the gate, every time
// the vault enters PanicMode. Use it to signal elevated risk.
func WithPanicHook(hook func(models.AuthState)) Option {
	return func(v *Vault) { v.onPanic = hook }
}
