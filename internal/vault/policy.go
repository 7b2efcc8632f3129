package vault

import "time"

// Policy holds the timing rules of the state machine.
type Policy struct {
	// FailureCooldown is how long the vault stays Failed before it relocks.
	// No new attempt is accepted during the cool-down.
	FailureCooldown time.Duration
	// BackoffThreshold is the failure count at which exponential backoff starts.
	BackoffThreshold uint32
	// BackoffBase is the delay applied at the threshold; it doubles per
	// further failure up to MaxBackoff.
	BackoffBase time.Duration
	MaxBackoff  time.Duration
	// AuthTimeout bounds a single Authenticate call.
	AuthTimeout time.Duration
	// IdleTimeout locks an unlocked vault that has not been used; zero disables it.
	IdleTimeout time.Duration
	// BackgroundTimeout locks a vault that has been backgrounded for this long.
	BackgroundTimeout time.Duration
}

// DefaultPolicy returns a 3s cool-down, backoff of min(2^(n-3) s, 30s) from
// the third failure, a one minute watchdog and a five minute idle lock.
func DefaultPolicy() Policy {
	return Policy{
		FailureCooldown:   3 * time.Second,
		BackoffThreshold:  3,
		BackoffBase:       time.Second,
		MaxBackoff:        30 * time.Second,
		AuthTimeout:       time.Minute,
		IdleTimeout:       5 * time.Minute,
		BackgroundTimeout: 30 * time.Second,
	}
}

// Backoff returns the delay imposed after the given number of consecutive
// failures.
func (p Policy) Backoff(failures uint32) time.Duration {
	if p.BackoffThreshold == 0 || failures < p.BackoffThreshold {
		return 0
	}

	d := p.BackoffBase
	for i := p.BackoffThreshold; i < failures && d < p.MaxBackoff; i++ {
		d *= 2
	}
	return min(d, p.MaxBackoff)
}

// retryAfter is the earliest time the next attempt is accepted after a
// failure at now.
func (p Policy) retryAfter(now time.Time, failures uint32) time.Time {
	return now.Add(max(p.FailureCooldown, p.Backoff(failures)))
}
