package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-secure-vault/internal/config"
	handler "github.com/MKhiriev/go-secure-vault/internal/handler/http"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/internal/server"
	"github.com/MKhiriev/go-secure-vault/internal/service"
	"github.com/MKhiriev/go-secure-vault/internal/store"
	"github.com/MKhiriev/go-secure-vault/internal/utils"
	"github.com/MKhiriev/go-secure-vault/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// newRootCommand serves the relay. Flags are left to the relay config
// parser, which also reads them from the environment and the JSON file.
func newRootCommand(info models.AppBuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:                "relay [flags]",
		Short:              "Blind relay for encrypted vault records",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), info)

			log := logger.NewLogger("relay")
			cfg, err := config.GetRelayConfig(args)
			if err != nil {
				return fmt.Errorf("error getting configs: %w", err)
			}
			if cfg.Version == "" {
				cfg.Version = info.Version
			}
			if err = logger.SetLevel(cfg.Log.Level); err != nil {
				return err
			}

			if err = run(cmd.Context(), cfg, log); err != nil {
				log.Error().Err(err).Msg("relay stopped with error")
				return err
			}
			return nil
		},
	}

	root.AddCommand(&cobra.Command{
		Use:                "token OWNER [flags]",
		Short:              "Print a bearer token for OWNER",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || strings.HasPrefix(args[0], "-") {
				return errors.New("token needs the owner as its first argument")
			}
			return printToken(cmd.OutOrStdout(), args[0], args[1:])
		},
	})
	return root
}

func run(ctx context.Context, cfg *config.RelayConfig, log *logger.Logger) error {
	db, err := store.Connect(ctx, cfg.DB, log)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if err = db.Migrate(); err != nil {
		return fmt.Errorf("error applying migrations: %w", err)
	}

	services, err := service.NewServices(store.NewBlobRepository(db, log), cfg, log)
	if err != nil {
		return fmt.Errorf("error creating services: %w", err)
	}

	srv, err := server.NewServer(handler.NewHandler(services, cfg.Token, log).Init(), cfg.Server, log)
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	if err = srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printToken(out io.Writer, owner string, args []string) error {
	cfg, err := config.GetRelayConfig(args)
	if err != nil {
		return err
	}

	token, err := utils.GenerateJWTToken(cfg.Token.Issuer, owner, cfg.Token.Duration, cfg.Token.SignKey)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
