// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the user-facing message strings shared by the relay
// handlers and the vault CLI, and the mapping from internal errors to them.
//
// Relay messages are written into HTTP response bodies. CLI messages are
// printed to the terminal. Neither ever carries key material, ciphertext, or
// a hint about which part of an authentication failed.
package app

// Relay response bodies.
const (
	// MsgInvalidPayload is returned when an uploaded blob is not a
	// well-formed zero-knowledge payload.
	MsgInvalidPayload = "invalid payload"

	// MsgInvalidRecordID is returned when the record id path parameter is
	// empty or too long.
	MsgInvalidRecordID = "invalid record id"

	// MsgBlobNotFound is returned when no blob is stored under the requested
	// record id for the caller.
	MsgBlobNotFound = "blob not found"

	// MsgPayloadTooLarge is returned when the request body exceeds the
	// configured limit.
	MsgPayloadTooLarge = "payload too large"

	// MsgTokenIsExpiredOrInvalid is returned when a bearer token is missing,
	// expired or fails verification.
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgInternalServerError is returned for unexpected relay failures.
	MsgInternalServerError = "internal server error"

	// MsgServiceUnavailable is returned when the database reports a
	// transient failure.
	MsgServiceUnavailable = "service temporarily unavailable"

	// MsgVersionIsNotSpecified is returned by the version endpoint when the
	// build carries no version.
	MsgVersionIsNotSpecified = "version is not specified"
)

// CLI messages.
const (
	// MsgAccessDenied covers every failed unlock and every failed
	// decryption, whatever the cause.
	MsgAccessDenied = "access denied"

	MsgVaultLocked        = "vault is locked"
	MsgRateLimited        = "too many failed attempts, try again after %s"
	MsgNotInitialized     = "vault is not initialized, run \"vault init\" first"
	MsgAlreadyInitialized = "vault is already initialized"
	MsgRotationInProgress = "key rotation in progress, try again shortly"
	MsgRotationFailed     = "key rotation failed, nothing was changed"
	MsgAuthTimeout        = "authentication timed out"
	MsgAuthCanceled       = "authentication canceled"
	MsgRecordNotFound     = "record not found on the relay"
	MsgRelayUnauthorized  = "relay rejected the access token"
	MsgRelayUnavailable   = "relay is unavailable"
	MsgRelayRejected      = "relay rejected the request"
	MsgInvalidInput       = "invalid input"
	MsgUnexpected         = "unexpected error, see the log for details"
)
