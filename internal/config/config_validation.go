// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-secure-vault/models"
)

// validate checks the settings shared by every binary.
func (cfg *StructuredConfig) validate() error {
	if cfg.Crypto.Algorithm != "" && models.ParseAlgorithm(cfg.Crypto.Algorithm) == models.AlgorithmUnknown {
		return fmt.Errorf("%w: unknown algorithm %q", ErrInvalidCryptoConfigs, cfg.Crypto.Algorithm)
	}

	switch cfg.Storage.DB.Driver {
	case "", "sqlite3", "pgx":
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Crypto.Algorithm == models.AlgorithmUnknown {
		return ErrInvalidCryptoConfigs
	}

	if cfg.DB.DSN == "" || strings.Contains(cfg.DB.DSN, ":memory:") || strings.Contains(cfg.DB.DSN, "mode=memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Vault.BackoffThreshold > 0 && cfg.Vault.MaxBackoff < cfg.Vault.BackoffBase {
		return ErrInvalidVaultConfigs
	}

	if err := cfg.Sync.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSyncConfigs, err)
	}

	if cfg.Adapter.HTTPAddress != "" && cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.IdleCheckInterval == 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

func (cfg *RelayConfig) validate() error {
	if cfg.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout == 0 {
		return ErrInvalidServerConfigs
	}

	if cfg.Token.SignKey == "" || cfg.Token.Issuer == "" || cfg.Token.Duration <= 0 {
		return ErrInvalidAppConfigs
	}

	return nil
}
