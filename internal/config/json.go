package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig is the on-disk layout of the JSON config file.
// Durations are written as strings such as "30s" or "1h".
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey  string   `json:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer"`
		TokenDuration Duration `json:"token_duration"`
		Version       string   `json:"version"`
	} `json:"app,omitempty"`

	Crypto struct {
		Algorithm     string `json:"algorithm"`
		KDFIterations uint32 `json:"kdf_iterations"`
		KDFMemoryKiB  uint32 `json:"kdf_memory_kib"`
		KDFThreads    uint8  `json:"kdf_threads"`
	} `json:"crypto,omitempty"`

	Vault struct {
		FailureCooldown   Duration `json:"failure_cooldown"`
		BackoffThreshold  uint32   `json:"backoff_threshold"`
		BackoffBase       Duration `json:"backoff_base"`
		MaxBackoff        Duration `json:"max_backoff"`
		AuthTimeout       Duration `json:"auth_timeout"`
		IdleTimeout       Duration `json:"idle_timeout"`
		BackgroundTimeout Duration `json:"background_timeout"`
	} `json:"vault,omitempty"`

	Sync struct {
		PolicyName      string   `json:"policy_name"`
		EssentialFields []string `json:"essential_fields"`
	} `json:"sync,omitempty"`

	Storage struct {
		DB struct {
			DSN    string `json:"dsn"`
			Driver string `json:"driver"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress     string   `json:"http_address"`
		RequestTimeout  Duration `json:"request_timeout"`
		ShutdownTimeout Duration `json:"shutdown_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		Token          string   `json:"token"`
	} `json:"adapter,omitempty"`

	Workers struct {
		IdleCheckInterval Duration `json:"idle_check_interval"`
	} `json:"workers,omitempty"`

	Log struct {
		Level string `json:"level"`
		File  string `json:"file"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var j StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&j); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:  j.App.TokenSignKey,
			TokenIssuer:   j.App.TokenIssuer,
			TokenDuration: time.Duration(j.App.TokenDuration),
			Version:       j.App.Version,
		},
		Crypto: Crypto{
			Algorithm:     j.Crypto.Algorithm,
			KDFIterations: j.Crypto.KDFIterations,
			KDFMemoryKiB:  j.Crypto.KDFMemoryKiB,
			KDFThreads:    j.Crypto.KDFThreads,
		},
		Vault: Vault{
			FailureCooldown:   time.Duration(j.Vault.FailureCooldown),
			BackoffThreshold:  j.Vault.BackoffThreshold,
			BackoffBase:       time.Duration(j.Vault.BackoffBase),
			MaxBackoff:        time.Duration(j.Vault.MaxBackoff),
			AuthTimeout:       time.Duration(j.Vault.AuthTimeout),
			IdleTimeout:       time.Duration(j.Vault.IdleTimeout),
			BackgroundTimeout: time.Duration(j.Vault.BackgroundTimeout),
		},
		Sync: Sync{
			PolicyName:      j.Sync.PolicyName,
			EssentialFields: j.Sync.EssentialFields,
		},
		Storage: Storage{
			DB: DB{
				DSN:    j.Storage.DB.DSN,
				Driver: j.Storage.DB.Driver,
			},
		},
		Server: Server{
			HTTPAddress:     j.Server.HTTPAddress,
			RequestTimeout:  time.Duration(j.Server.RequestTimeout),
			ShutdownTimeout: time.Duration(j.Server.ShutdownTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    j.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(j.Adapter.RequestTimeout),
			Token:          j.Adapter.Token,
		},
		Workers: Workers{
			IdleCheckInterval: time.Duration(j.Workers.IdleCheckInterval),
		},
		Log: Log{
			Level: j.Log.Level,
			File:  j.Log.File,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", b)
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
