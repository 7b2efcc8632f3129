package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidCryptoConfigs indicates an unknown algorithm name.
	ErrInvalidCryptoConfigs = errors.New("invalid crypto configuration")
	// ErrInvalidVaultConfigs indicates inconsistent lockout timing.
	ErrInvalidVaultConfigs = errors.New("invalid vault configuration")
	// ErrInvalidSyncConfigs indicates a malformed minimisation policy.
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidAdapterConfigs indicates invalid client adapter settings
	// (for example, an address without a request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, empty DSN, unknown driver or an in-memory DSN for the vault).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidServerConfigs indicates missing relay listener settings.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidAppConfigs indicates missing relay token settings.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, zero idle check interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
)
