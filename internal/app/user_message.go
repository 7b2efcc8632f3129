package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-secure-vault/internal/adapter"
	"github.com/MKhiriev/go-secure-vault/internal/crypto"
	"github.com/MKhiriev/go-secure-vault/internal/vault"
	"github.com/MKhiriev/go-secure-vault/internal/zksync"
)

// UserMessage renders err as a message safe to show to the user. Every
// authentication or decryption failure collapses into [MsgAccessDenied].
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var rateLimited *vault.RateLimitedError
	if errors.As(err, &rateLimited) {
		return fmt.Sprintf(MsgRateLimited, rateLimited.RetryAfter.Local().Format(time.TimeOnly))
	}

	switch {
	case errors.Is(err, vault.ErrRotationFailed):
		return MsgRotationFailed
	case errors.Is(err, vault.ErrRotationInProgress):
		return MsgRotationInProgress
	case errors.Is(err, vault.ErrAuthenticationFailed),
		errors.Is(err, crypto.ErrDecryptionFailed),
		errors.Is(err, crypto.ErrKeyDerivation):
		return MsgAccessDenied
	case errors.Is(err, zksync.ErrKeyMismatch):
		return MsgAccessDenied
	case errors.Is(err, zksync.ErrInvalidPayload):
		return MsgInvalidInput
	case errors.Is(err, vault.ErrVaultLocked):
		return MsgVaultLocked
	case errors.Is(err, vault.ErrNotInitialized):
		return MsgNotInitialized
	case errors.Is(err, vault.ErrAlreadyInitialized):
		return MsgAlreadyInitialized
	case errors.Is(err, vault.ErrAuthenticationTimeout):
		return MsgAuthTimeout
	case errors.Is(err, vault.ErrAuthenticationCanceled):
		return MsgAuthCanceled
	case errors.Is(err, adapter.ErrNotFound):
		return MsgRecordNotFound
	case errors.Is(err, adapter.ErrUnauthorized), errors.Is(err, adapter.ErrForbidden):
		return MsgRelayUnauthorized
	case errors.Is(err, adapter.ErrBadRequest), errors.Is(err, adapter.ErrPayloadTooLarge):
		return MsgRelayRejected
	case errors.Is(err, adapter.ErrServiceUnavailable),
		errors.Is(err, adapter.ErrBadGateway),
		errors.Is(err, adapter.ErrInternalServerError):
		return MsgRelayUnavailable
	}

	return MsgUnexpected
}
