package models

import "time"

// AttemptState is the persisted brute-force bookkeeping of a vault.
//
// Failures and RetryAfter are independent: Failures only ever resets on a
// successful unlock, RetryAfter is the end of the current backoff window.
type AttemptState struct {
	Failures    uint32    `json:"failures"`
	LastFailure time.Time `json:"last_failure"`
	RetryAfter  time.Time `json:"retry_after"`
}
