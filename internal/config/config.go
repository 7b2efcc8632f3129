// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// vault CLI and the relay. It is populated by merging defaults, environment
// variables, command-line flags and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env      : direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds relay token settings and the application version.
	App App `envPrefix:"APP_"`

	// Crypto selects the AEAD algorithm and the Argon2id work factor.
	Crypto Crypto `envPrefix:"CRYPTO_"`

	// Vault holds the lockout and idle timing of the vault state machine.
	Vault Vault `envPrefix:"VAULT_"`

	// Sync holds the data-minimisation policy applied before upload.
	Sync Sync `envPrefix:"SYNC_"`

	// Storage holds the relational database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the relay listener settings.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the client side of the sync transport.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds background job intervals.
	Workers Workers `envPrefix:"WORKERS_"`

	// Log holds the log level and the CLI log file.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level settings of the relay.
type App struct {
	// TokenSignKey is the HMAC key used to verify bearer tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the expected "iss" claim.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is the lifetime of tokens issued by `relay token`.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// Version is reported by /api/version.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Crypto configures the crypto core.
type Crypto struct {
	// Algorithm is "aes-256-gcm" or "chacha20-poly1305".
	// Env: CRYPTO_ALGORITHM
	Algorithm string `env:"ALGORITHM"`

	// Env: CRYPTO_KDF_ITERATIONS
	KDFIterations uint32 `env:"KDF_ITERATIONS"`
	// Env: CRYPTO_KDF_MEMORY_KIB
	KDFMemoryKiB uint32 `env:"KDF_MEMORY_KIB"`
	// Env: CRYPTO_KDF_THREADS
	KDFThreads uint8 `env:"KDF_THREADS"`
}

// Vault configures lockout and auto-lock.
type Vault struct {
	FailureCooldown   time.Duration `env:"FAILURE_COOLDOWN"`
	BackoffThreshold  uint32        `env:"BACKOFF_THRESHOLD"`
	BackoffBase       time.Duration `env:"BACKOFF_BASE"`
	MaxBackoff        time.Duration `env:"MAX_BACKOFF"`
	AuthTimeout       time.Duration `env:"AUTH_TIMEOUT"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT"`
	BackgroundTimeout time.Duration `env:"BACKGROUND_TIMEOUT"`
}

// Sync configures the minimisation policy for outgoing records.
type Sync struct {
	// PolicyName labels the policy in logs.
	PolicyName string `env:"POLICY_NAME"`
	// EssentialFields lists the dotted field paths kept on upload.
	// Env: SYNC_ESSENTIAL_FIELDS (comma separated)
	EssentialFields []string `env:"ESSENTIAL_FIELDS" envSeparator:","`
}

// Storage groups the storage backends.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the relational database.
type DB struct {
	// DSN is a SQLite path/URI or a PostgreSQL connection string.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`

	// Driver forces "sqlite3" or "pgx"; empty infers it from DSN.
	// Env: STORAGE_DB_DRIVER
	Driver string `env:"DRIVER"`
}

// Server holds the relay listener settings.
type Server struct {
	// HTTPAddress is the listen address in "host:port" form.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// ShutdownTimeout bounds graceful shutdown.
	// Env: SERVER_SHUTDOWN_TIMEOUT
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// Adapter holds the relay endpoint used by the CLI.
type Adapter struct {
	// HTTPAddress is the relay base URL (for example "http://localhost:8080").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Token is the bearer token presented to the relay.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`
}

// Workers holds background job intervals.
type Workers struct {
	// IdleCheckInterval is how often the idle locker polls the vault.
	// Env: WORKERS_IDLE_CHECK_INTERVAL
	IdleCheckInterval time.Duration `env:"IDLE_CHECK_INTERVAL"`
}

// Log holds logging settings.
type Log struct {
	// Level is a zerolog level name.
	// Env: LOG_LEVEL
	Level string `env:"LEVEL"`

	// File is where the CLI writes its log.
	// Env: LOG_FILE
	File string `env:"FILE"`
}

// defaults returns the lowest-priority layer merged under every other source.
func defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:   "go-secure-vault",
			TokenDuration: 24 * time.Hour,
		},
		Crypto: Crypto{
			Algorithm:     "aes-256-gcm",
			KDFIterations: 3,
			KDFMemoryKiB:  64 * 1024,
			KDFThreads:    4,
		},
		Vault: Vault{
			FailureCooldown:   3 * time.Second,
			BackoffThreshold:  3,
			BackoffBase:       time.Second,
			MaxBackoff:        30 * time.Second,
			AuthTimeout:       time.Minute,
			IdleTimeout:       5 * time.Minute,
			BackgroundTimeout: 30 * time.Second,
		},
		Sync: Sync{
			PolicyName: "default",
		},
		Storage: Storage{
			DB: DB{DSN: "vault.db"},
		},
		Server: Server{
			HTTPAddress:     "localhost:8080",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Adapter: Adapter{
			RequestTimeout: 30 * time.Second,
		},
		Workers: Workers{
			IdleCheckInterval: 5 * time.Second,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// GetStructuredConfig loads, merges, and validates the configuration from all
// available sources in the following priority order (last source wins for
// non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags parsed from args
//  4. JSON file (path resolved from sources 2 and 3)
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(args).
		withJSON().
		build()
}
