package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secure-vault/internal/vault"
	"github.com/MKhiriev/go-secure-vault/models"
)

// ── GetClientConfig ───────────────────────────────────────────────────────────

// TestGetClientConfig_Defaults verifies that defaults alone produce a usable
// client config that matches the vault package defaults.
func TestGetClientConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := GetClientConfig("")
	require.NoError(t, err)

	assert.Equal(t, models.AES256GCMArgon2id, cfg.Crypto.Algorithm)
	assert.Equal(t, models.KDFParams{Iterations: 3, MemoryKiB: 64 * 1024, Threads: 4}, cfg.Crypto.KDF)
	assert.Equal(t, vault.DefaultPolicy(), cfg.Vault)
	assert.Equal(t, "vault.db", cfg.DB.DSN)
	assert.Empty(t, cfg.Adapter.HTTPAddress)
	assert.Equal(t, 5*time.Second, cfg.Workers.IdleCheckInterval)
}

// TestGetClientConfig_JSONOverridesEnv verifies source priority.
func TestGetClientConfig_JSONOverridesEnv(t *testing.T) {
	setEnvVars(t, map[string]string{
		"STORAGE_DB_DATABASE_URI": "env.db",
		"ADAPTER_ADDRESS":         "http://env:8080",
		"SYNC_ESSENTIAL_FIELDS":   "a,b",
	})

	payload := StructuredJSONConfig{}
	payload.Storage.DB.DSN = "json.db"
	payload.Crypto.Algorithm = "chacha20-poly1305"
	path := writeTempJSONConfig(t, payload)

	cfg, err := GetClientConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "json.db", cfg.DB.DSN)
	assert.Equal(t, "http://env:8080", cfg.Adapter.HTTPAddress)
	assert.Equal(t, []string{"a", "b"}, cfg.Sync.Essential)
	assert.Equal(t, models.ChaCha20Poly1305Argon2id, cfg.Crypto.Algorithm)
}

// TestGetClientConfig_MissingJSON verifies that an explicit but missing file
// is an error.
func TestGetClientConfig_MissingJSON(t *testing.T) {
	clearEnvVars(t)

	_, err := GetClientConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

// TestClientConfig_Validate covers each validation branch.
func TestClientConfig_Validate(t *testing.T) {
	valid := func() *ClientConfig { return newClientConfig(defaults()) }

	tests := []struct {
		name    string
		mutate  func(c *ClientConfig)
		wantErr error
	}{
		{name: "valid", mutate: func(*ClientConfig) {}},
		{name: "unknown algorithm", mutate: func(c *ClientConfig) { c.Crypto.Algorithm = models.AlgorithmUnknown }, wantErr: ErrInvalidCryptoConfigs},
		{name: "empty dsn", mutate: func(c *ClientConfig) { c.DB.DSN = "" }, wantErr: ErrInvalidStorageConfigs},
		{name: "memory dsn", mutate: func(c *ClientConfig) { c.DB.DSN = ":memory:" }, wantErr: ErrInvalidStorageConfigs},
		{name: "backoff cap below base", mutate: func(c *ClientConfig) { c.Vault.MaxBackoff = time.Millisecond }, wantErr: ErrInvalidVaultConfigs},
		{name: "bad essential path", mutate: func(c *ClientConfig) { c.Sync.Essential = []string{"a..b"} }, wantErr: ErrInvalidSyncConfigs},
		{name: "address without timeout", mutate: func(c *ClientConfig) {
			c.Adapter.HTTPAddress = "http://relay"
			c.Adapter.RequestTimeout = 0
		}, wantErr: ErrInvalidAdapterConfigs},
		{name: "zero idle interval", mutate: func(c *ClientConfig) { c.Workers.IdleCheckInterval = 0 }, wantErr: ErrInvalidWorkerConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ── GetRelayConfig ────────────────────────────────────────────────────────────

// TestGetRelayConfig_FromFlags verifies that flags complete the defaults.
func TestGetRelayConfig_FromFlags(t *testing.T) {
	clearEnvVars(t)

	cfg, err := GetRelayConfig([]string{"-a", "127.0.0.1:9999", "-token-sign-key", "secret", "-d", "relay.db"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Server.HTTPAddress)
	assert.Equal(t, "relay.db", cfg.DB.DSN)
	assert.Equal(t, "secret", cfg.Token.SignKey)
	assert.Equal(t, "go-secure-vault", cfg.Token.Issuer)
	assert.Equal(t, 24*time.Hour, cfg.Token.Duration)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

// TestGetRelayConfig_RequiresSignKey verifies that the relay refuses to start
// without a token key.
func TestGetRelayConfig_RequiresSignKey(t *testing.T) {
	clearEnvVars(t)

	_, err := GetRelayConfig(nil)
	assert.ErrorIs(t, err, ErrInvalidAppConfigs)
}

// TestGetRelayConfig_FlagsOverrideEnv verifies source priority for the relay.
func TestGetRelayConfig_FlagsOverrideEnv(t *testing.T) {
	setEnvVars(t, map[string]string{
		"APP_TOKEN_SIGN_KEY": "env-key",
		"SERVER_ADDRESS":     "localhost:1111",
	})

	cfg, err := GetRelayConfig([]string{"-a", "localhost:2222"})
	require.NoError(t, err)

	assert.Equal(t, "localhost:2222", cfg.Server.HTTPAddress)
	assert.Equal(t, "env-key", cfg.Token.SignKey)
}

// TestRelayConfig_Validate covers each validation branch.
func TestRelayConfig_Validate(t *testing.T) {
	valid := func() *RelayConfig {
		c := newRelayConfig(defaults())
		c.Token.SignKey = "k"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *RelayConfig)
		wantErr error
	}{
		{name: "valid", mutate: func(*RelayConfig) {}},
		{name: "empty dsn", mutate: func(c *RelayConfig) { c.DB.DSN = "" }, wantErr: ErrInvalidStorageConfigs},
		{name: "empty address", mutate: func(c *RelayConfig) { c.Server.HTTPAddress = "" }, wantErr: ErrInvalidServerConfigs},
		{name: "zero timeout", mutate: func(c *RelayConfig) { c.Server.RequestTimeout = 0 }, wantErr: ErrInvalidServerConfigs},
		{name: "empty issuer", mutate: func(c *RelayConfig) { c.Token.Issuer = "" }, wantErr: ErrInvalidAppConfigs},
		{name: "zero duration", mutate: func(c *RelayConfig) { c.Token.Duration = 0 }, wantErr: ErrInvalidAppConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
