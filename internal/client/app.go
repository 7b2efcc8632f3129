package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-secure-vault/internal/adapter"
	"github.com/MKhiriev/go-secure-vault/internal/config"
	"github.com/MKhiriev/go-secure-vault/internal/crypto"
	"github.com/MKhiriev/go-secure-vault/internal/keystore"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/internal/minimizer"
	"github.com/MKhiriev/go-secure-vault/internal/service"
	"github.com/MKhiriev/go-secure-vault/internal/store"
	"github.com/MKhiriev/go-secure-vault/internal/vault"
	"github.com/MKhiriev/go-secure-vault/internal/workers"
	"github.com/MKhiriev/go-secure-vault/internal/zksync"
	"github.com/MKhiriev/go-secure-vault/models"
)

// App is one process worth of vault machinery.
type App struct {
	cfg *config.ClientConfig

	Vault     *vault.Vault
	core      crypto.CryptoCore
	minimizer *minimizer.Minimizer
	sealer    *zksync.Service
	workers   *workers.Workers

	closers []func() error
	logger  *logger.Logger
}

// OpenApp connects to the configured database, applies migrations and
// builds an [App] on top of it.
func OpenApp(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	db, err := store.Connect(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	if err = db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate local store: %w", err)
	}

	app, err := NewApp(ctx, cfg, store.NewKeyRepository(db, log), store.NewAttemptRepository(db, log), log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.closers = append(app.closers, db.Close)
	return app, nil
}

// NewApp builds an [App] over the given key and attempt stores and starts
// the idle locker.
func NewApp(ctx context.Context, cfg *config.ClientConfig, keys keystore.KeyStore, attempts vault.AttemptStore, log *logger.Logger) (*App, error) {
	core, err := crypto.NewCryptoCore(cfg.Crypto)
	if err != nil {
		return nil, fmt.Errorf("create crypto core: %w", err)
	}

	v, err := vault.New(ctx, core, keys, attempts,
		vault.WithPolicy(cfg.Vault),
		vault.WithLogger(log.Component("vault")),
		vault.WithPanicHook(func(state models.AuthState) {
			log.Warn().Time("since", state.Since).Msg("vault entered panic mode")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	m, err := minimizer.New(cfg.Sync, keys, log.Component("minimizer"))
	if err != nil {
		return nil, fmt.Errorf("create minimizer: %w", err)
	}

	app := &App{
		cfg:       cfg,
		Vault:     v,
		core:      core,
		minimizer: m,
		sealer:    zksync.New(core, keys, v, m, log.Component("zksync")),
		workers:   workers.New(vault.NewIdleLocker(v, cfg.Workers.IdleCheckInterval)),
		logger:    log,
	}
	app.workers.Start(ctx)
	return app, nil
}

// Unlock asks p for the passphrase and unlocks the vault. A duress
// passphrase is reported like any other rejected factor.
func (a *App) Unlock(ctx context.Context, p Prompter) error {
	if !a.Vault.Initialized() {
		return vault.ErrNotInitialized
	}

	passphrase, err := p.ReadSecret("Passphrase: ")
	if err != nil {
		return err
	}
	defer crypto.Zero(passphrase)

	state, err := a.Vault.Authenticate(ctx, vault.Passphrase(passphrase))
	if err != nil {
		return err
	}
	if state.Kind != models.Unlocked {
		return vault.ErrAuthenticationFailed
	}
	return nil
}

// SyncService returns the client sync service bound to the configured
// relay.
func (a *App) SyncService() (service.ClientSyncService, error) {
	if a.cfg.Adapter.HTTPAddress == "" {
		return nil, ErrSyncDisabled
	}

	transport, err := adapter.NewHTTPSyncTransport(a.cfg.Adapter, a.logger.Component("transport"))
	if err != nil {
		return nil, err
	}
	return service.NewClientSyncService(a.sealer, a.minimizer, transport, a.logger), nil
}

// Close locks the vault, stops the workers and releases the store.
func (a *App) Close() error {
	a.Vault.Lock()
	a.workers.Stop()

	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
