// Package vault implements the authentication state machine that gates access
// to the session key.
//
// A [Vault] starts Locked. Authenticate moves it through Authenticating to
// Unlocked, Failed or PanicMode. Every transition and every use of the
// session key passes through a single gate; State and IsUnlocked are served
// from atomics so that pollers never contend with slow key derivation.
//
// Failed attempts are persisted through an [AttemptStore] and converted into
// an exponential backoff window, so restarting the process does not reset
// a brute-force attack.
package vault
