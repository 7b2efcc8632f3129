package vault

import (
	"context"
	"time"

	"github.com/MKhiriev/go-secure-vault/models"
)

// MarkBackgrounded records that the application lost focus.
func (v *Vault) MarkBackgrounded() {
	v.gate.Lock()
	defer v.gate.Unlock()

	v.backgroundedAt = v.clock.Now()
}

// MarkForegrounded clears the background mark and locks the vault if it was
// backgrounded for longer than Policy.BackgroundTimeout. It reports whether
// the vault was locked.
func (v *Vault) MarkForegrounded() bool {
	v.gate.Lock()
	defer v.gate.Unlock()

	locked := v.lockIfExpired(0)
	v.backgroundedAt = time.Time{}
	return locked
}

// LockIfIdle locks an unlocked vault unused for at least idle, or
// backgrounded for at least Policy.BackgroundTimeout. A non-positive idle
// disables the idle check. It reports whether the vault was locked.
func (v *Vault) LockIfIdle(idle time.Duration) bool {
	v.gate.Lock()
	defer v.gate.Unlock()

	return v.lockIfExpired(idle)
}

// lockIfExpired must be called with the gate held.
func (v *Vault) lockIfExpired(idle time.Duration) bool {
	if v.State().Kind != models.Unlocked {
		return false
	}

	now := v.clock.Now()
	idleExpired := idle > 0 && now.Sub(v.lastUsed) >= idle
	backgroundExpired := !v.backgroundedAt.IsZero() &&
		v.policy.BackgroundTimeout > 0 &&
		now.Sub(v.backgroundedAt) >= v.policy.BackgroundTimeout

	if !idleExpired && !backgroundExpired {
		return false
	}

	v.setState(models.Locked, models.ReasonNone)
	v.log.Info().
		Bool("idle", idleExpired).
		Bool("background", backgroundExpired).
		Msg("vault locked by inactivity")
	return true
}

// IdleLocker periodically applies the idle and background policy.
type IdleLocker struct {
	vault    *Vault
	interval time.Duration
	timeout  time.Duration
}

// NewIdleLocker checks v every interval (one second when non-positive)
// against the vault's Policy.IdleTimeout.
func NewIdleLocker(v *Vault, interval time.Duration) *IdleLocker {
	if interval <= 0 {
		interval = time.Second
	}
	return &IdleLocker{vault: v, interval: interval, timeout: v.policy.IdleTimeout}
}

// Run blocks until ctx is done.
func (l *IdleLocker) Run(ctx context.Context) {
	t := time.NewTicker(l.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.vault.LockIfIdle(l.timeout)
		}
	}
}
