package config

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-secure-vault/internal/crypto"
	"github.com/MKhiriev/go-secure-vault/internal/minimizer"
	"github.com/MKhiriev/go-secure-vault/internal/vault"
	"github.com/MKhiriev/go-secure-vault/models"
)

// ClientAdapter holds network settings used by the sync transport.
type ClientAdapter struct {
	// HTTPAddress is the relay base URL. Empty disables sync commands.
	HTTPAddress    string
	RequestTimeout time.Duration
	Token          string
}

// ClientWorkers contains CLI background worker settings.
type ClientWorkers struct {
	IdleCheckInterval time.Duration
}

// ClientConfig is the configuration of the vault CLI, already converted to
// the types the vault packages consume.
type ClientConfig struct {
	Crypto  crypto.Params
	Vault   vault.Policy
	Sync    minimizer.Policy
	DB      DB
	Adapter ClientAdapter
	Workers ClientWorkers
	Log     Log
}

// GetClientConfig builds and validates the CLI configuration from defaults,
// environment variables and the optional JSON file at jsonPath. The CLI owns
// its own flags, so none are parsed here.
func GetClientConfig(jsonPath string) (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withDefaults().
		withEnv().
		withJSONFile(jsonPath).
		withJSON().
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		Crypto: crypto.Params{
			Algorithm: models.ParseAlgorithm(cfg.Crypto.Algorithm),
			KDF: models.KDFParams{
				Iterations: cfg.Crypto.KDFIterations,
				MemoryKiB:  cfg.Crypto.KDFMemoryKiB,
				Threads:    cfg.Crypto.KDFThreads,
			},
		},
		Vault: vault.Policy{
			FailureCooldown:   cfg.Vault.FailureCooldown,
			BackoffThreshold:  cfg.Vault.BackoffThreshold,
			BackoffBase:       cfg.Vault.BackoffBase,
			MaxBackoff:        cfg.Vault.MaxBackoff,
			AuthTimeout:       cfg.Vault.AuthTimeout,
			IdleTimeout:       cfg.Vault.IdleTimeout,
			BackgroundTimeout: cfg.Vault.BackgroundTimeout,
		},
		Sync: minimizer.Policy{
			Name:      cfg.Sync.PolicyName,
			Essential: cfg.Sync.EssentialFields,
		},
		DB: cfg.Storage.DB,
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			Token:          cfg.Adapter.Token,
		},
		Workers: ClientWorkers{IdleCheckInterval: cfg.Workers.IdleCheckInterval},
		Log:     cfg.Log,
	}
}

// RelayToken holds bearer token settings of the relay.
type RelayToken struct {
	SignKey  string
	Issuer   string
	Duration time.Duration
}

// RelayConfig is the configuration of the blind relay server.
type RelayConfig struct {
	Token   RelayToken
	Server  Server
	DB      DB
	Log     Log
	Version string
}

// GetRelayConfig builds and validates the relay configuration from
// defaults, environment variables, args and the optional JSON file.
func GetRelayConfig(args []string) (*RelayConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	relayCfg := newRelayConfig(cfg)
	return relayCfg, relayCfg.validate()
}

func newRelayConfig(cfg *StructuredConfig) *RelayConfig {
	return &RelayConfig{
		Token: RelayToken{
			SignKey:  cfg.App.TokenSignKey,
			Issuer:   cfg.App.TokenIssuer,
			Duration: cfg.App.TokenDuration,
		},
		Server:  cfg.Server,
		DB:      cfg.Storage.DB,
		Log:     cfg.Log,
		Version: cfg.App.Version,
	}
}
