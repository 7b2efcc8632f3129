package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-secure-vault/internal/app"
	"github.com/MKhiriev/go-secure-vault/internal/service"
	"github.com/MKhiriev/go-secure-vault/internal/utils"
	"github.com/MKhiriev/go-secure-vault/models"
)

func (c *cli) syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Exchange minimized, encrypted records with the relay",
	}
	cmd.AddCommand(
		c.syncPushCmd(),
		c.syncPullCmd(),
		c.syncPullAllCmd(),
		c.syncListCmd(),
		c.syncEraseCmd(),
	)
	return cmd
}

// withSync unlocks the vault and hands fn the client sync service.
func (c *cli) withSync(cmd *cobra.Command, fn func(ctx context.Context, svc service.ClientSyncService) error) error {
	return c.withApp(cmd, func(ctx context.Context, a *App, p Prompter) error {
		svc, err := a.SyncService()
		if err != nil {
			return err
		}
		if err = a.Unlock(ctx, p); err != nil {
			return err
		}
		return fn(ctx, svc)
	})
}

func (c *cli) syncPushCmd() *cobra.Command {
	var in, id string
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Upload a record",
		Long: `push reads a record as JSON ({"id": "...", "fields": {...}}), keeps only
the fields the sync policy marks essential, encrypts them and uploads the
result. A record without an id gets a new one.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var record models.Record
			if err := readJSON(in, cmd.InOrStdin(), &record); err != nil {
				return err
			}
			if id != "" {
				record.ID = id
			}
			if record.ID == "" {
				record.ID = utils.NewUUIDGenerator().Generate()
			}

			return c.withSync(cmd, func(ctx context.Context, svc service.ClientSyncService) error {
				if err := svc.Push(ctx, record); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okMark(true), "pushed", record.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", stdio, "record JSON input file")
	cmd.Flags().StringVar(&id, "id", "", "record id, overrides the id in the input")
	return cmd
}

func (c *cli) syncPullCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "pull RECORD_ID",
		Short: "Download and decrypt one record",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSync(cmd, func(ctx context.Context, svc service.ClientSyncService) error {
				record, err := svc.Pull(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(out, cmd.OutOrStdout(), record)
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", stdio, "record JSON output file")
	return cmd
}

func (c *cli) syncPullAllCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "pull-all",
		Short: "Download and decrypt every record on the relay",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSync(cmd, func(ctx context.Context, svc service.ClientSyncService) error {
				records, err := svc.PullAll(ctx)
				if err != nil {
					return err
				}
				if records == nil {
					records = []models.Record{}
				}
				return writeJSON(out, cmd.OutOrStdout(), records)
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", stdio, "records JSON output file")
	return cmd
}

func (c *cli) syncListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List record ids stored on the relay",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSync(cmd, func(ctx context.Context, svc service.ClientSyncService) error {
				ids, err := svc.List(ctx)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
}

func (c *cli) syncEraseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "erase RECORD_ID",
		Short: "Make a synced record unrecoverable and remove it from the relay",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSync(cmd, func(ctx context.Context, svc service.ClientSyncService) error {
				err := svc.Erase(ctx, args[0])
				if errors.Is(err, service.ErrRemoteDeleteFailed) {
					fmt.Fprintln(cmd.ErrOrStderr(), warning.Sprint("!"), "erased locally, relay copy not removed:", app.UserMessage(err))
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okMark(true), "erased", args[0])
				return nil
			})
		},
	}
}
