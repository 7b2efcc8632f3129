package client

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-secure-vault/internal/app"
	"github.com/MKhiriev/go-secure-vault/internal/config"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/internal/service"
	"github.com/MKhiriev/go-secure-vault/internal/vault"
	"github.com/MKhiriev/go-secure-vault/models"
)

// Options wires the command tree to its environment. Zero fields fall
// back to the process defaults.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Prompter overrides passphrase input from the terminal or
	// --passphrase-file.
	Prompter Prompter

	LoadConfig func(path string) (*config.ClientConfig, error)
	OpenApp    func(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (*App, error)
}

func (o *Options) setDefaults() {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.LoadConfig == nil {
		o.LoadConfig = config.GetClientConfig
	}
	if o.OpenApp == nil {
		o.OpenApp = OpenApp
	}
}

type cli struct {
	opts Options

	configPath     string
	passphraseFile string
}

// NewRootCommand builds the vault command tree.
func NewRootCommand(info models.AppBuildInfo, opts Options) *cobra.Command {
	opts.setDefaults()
	c := &cli{opts: opts}

	root := &cobra.Command{
		Use:   "vault",
		Short: "Local encrypted vault with zero-knowledge sync",
		Long: `vault keeps records encrypted on this device under a key derived from your
passphrase. Records can be synced through a relay that only ever sees
ciphertext.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return asUsageError(err)
	})

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to the JSON config file")
	root.PersistentFlags().StringVar(&c.passphraseFile, "passphrase-file", "", "read passphrases line by line from this file")

	root.AddCommand(
		c.initCmd(),
		c.statusCmd(),
		c.encryptCmd(),
		c.decryptCmd(),
		c.rotateCmd(),
		c.duressCmd(),
		c.syncCmd(),
		versionCmd(info),
	)
	return root
}

// withApp loads the configuration, opens the app and the prompter for the
// duration of fn.
func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *App, p Prompter) error) (err error) {
	cfg, err := c.opts.LoadConfig(c.configPath)
	if err != nil {
		return asUsageError(err)
	}

	log := logger.Nop()
	if cfg.Log.File != "" {
		if log, err = logger.NewFileLogger("vault", cfg.Log.File); err != nil {
			return asUsageError(err)
		}
		if err = logger.SetLevel(cfg.Log.Level); err != nil {
			return asUsageError(err)
		}
	}

	p, closePrompter, err := c.prompter()
	if err != nil {
		return err
	}
	defer closePrompter()

	ctx := cmd.Context()
	a, err := c.opts.OpenApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()

	return fn(ctx, a, p)
}

func (c *cli) prompter() (Prompter, func(), error) {
	if c.opts.Prompter != nil {
		return c.opts.Prompter, func() {}, nil
	}
	if c.passphraseFile == "" {
		return NewTerminalPrompter(c.opts.Err), func() {}, nil
	}

	f, err := os.Open(c.passphraseFile)
	if err != nil {
		return nil, nil, asUsageError(err)
	}
	return NewLinePrompter(f), func() { _ = f.Close() }, nil
}

// ErrorMessage renders an error returned by the command tree for the user.
func ErrorMessage(err error) string {
	var usage *usageError
	if errors.As(err, &usage) {
		return usage.Error()
	}

	for _, known := range []error{
		ErrSyncDisabled,
		ErrPassphraseMismatch,
		ErrEmptyPassphrase,
		ErrNoTerminal,
		ErrNoMorePassphrases,
		vault.ErrDuressMatchesPassphrase,
		service.ErrInvalidRecordID,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	if errors.Is(err, context.Canceled) {
		return "interrupted"
	}
	return app.UserMessage(err)
}
