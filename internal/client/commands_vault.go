package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-secure-vault/internal/crypto"
	"github.com/MKhiriev/go-secure-vault/models"
)

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return asUsageError(validate(cmd, args))
	}
}

func (c *cli) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the vault and choose its passphrase",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *App, p Prompter) error {
				passphrase, err := readNewSecret(p, a.core.ConstantTimeEquals, "New passphrase: ")
				if err != nil {
					return err
				}
				defer crypto.Zero(passphrase)

				if err = a.Vault.Setup(ctx, passphrase); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okMark(true), "vault initialized")
				return nil
			})
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the vault is set up and how many unlocks failed",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(_ context.Context, a *App, _ Prompter) error {
				out := cmd.OutOrStdout()
				if !a.Vault.Initialized() {
					fmt.Fprintln(out, okMark(false), "vault is not initialized")
					fmt.Fprintln(out, muted.Sprint("→ run vault init"))
					return nil
				}

				attempts := a.Vault.Attempts()
				fmt.Fprintln(out, okMark(true), "vault initialized")
				fmt.Fprintf(out, "  state:           %s\n", a.Vault.State())
				fmt.Fprintf(out, "  failed attempts: %d\n", attempts.Failures)
				if until, limited := a.Vault.RateLimitedUntil(); limited {
					fmt.Fprintf(out, "  retry after:     %s\n", warning.Sprint(until.Local().Format(time.TimeOnly)))
				}
				fmt.Fprintf(out, "  biometric:       %s\n", enrolled(a.Vault.BiometricEnrolled()))
				return nil
			})
		},
	}
}

func enrolled(ok bool) string {
	if ok {
		return "enrolled"
	}
	return "not enrolled"
}

func (c *cli) encryptCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt data with the vault key",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *App, p Prompter) error {
				plaintext, err := readInput(in, cmd.InOrStdin())
				if err != nil {
					return err
				}
				defer crypto.Zero(plaintext)

				if err = a.Unlock(ctx, p); err != nil {
					return err
				}
				record, err := a.Vault.Encrypt(plaintext)
				if err != nil {
					return err
				}
				return writeJSON(out, cmd.OutOrStdout(), record)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", stdio, "plaintext input file")
	cmd.Flags().StringVar(&out, "out", stdio, "encrypted record output file")
	return cmd
}

func (c *cli) decryptCmd() *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt an encrypted record",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *App, p Prompter) error {
				var record models.EncryptedRecord
				if err := readJSON(in, cmd.InOrStdin(), &record); err != nil {
					return err
				}

				if err := a.Unlock(ctx, p); err != nil {
					return err
				}
				plaintext, err := a.Vault.Decrypt(record)
				if err != nil {
					return err
				}
				defer crypto.Zero(plaintext)
				return writeOutput(out, cmd.OutOrStdout(), plaintext)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", stdio, "encrypted record input file")
	cmd.Flags().StringVar(&out, "out", stdio, "plaintext output file")
	return cmd
}

func (c *cli) rotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate [RECORD_FILE...]",
		Short: "Change the passphrase and re-encrypt the given record files",
		Long: `rotate changes the vault passphrase. Every listed record file is
re-encrypted under the new key. Nothing is written unless all records
decrypt with the current passphrase.`,
		RunE: func(cmd *cobra.Command, paths []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *App, p Prompter) error {
				records := make([]models.EncryptedRecord, len(paths))
				for i, path := range paths {
					if path == stdio {
						return asUsageError(errors.New("rotate needs record files, not stdin"))
					}
					if err := readJSON(path, cmd.InOrStdin(), &records[i]); err != nil {
						return err
					}
				}

				current, err := p.ReadSecret("Current passphrase: ")
				if err != nil {
					return err
				}
				defer crypto.Zero(current)
				next, err := readNewSecret(p, a.core.ConstantTimeEquals, "New passphrase: ")
				if err != nil {
					return err
				}
				defer crypto.Zero(next)

				// the new files are on disk before the keyring changes, and
				// replace the old ones only after it did
				var staged []stagedFile
				_, err = a.Vault.RotateKeysStaged(ctx, current, next, records, func(rotated []models.EncryptedRecord) error {
					files := make([]fileContent, len(paths))
					for i, path := range paths {
						data, err := jsonLine(rotated[i])
						if err != nil {
							return err
						}
						files[i] = fileContent{path: path, data: data}
					}
					s, err := stageFiles(files)
					staged = s
					return err
				})
				if err != nil {
					return errors.Join(err, discardFiles(staged))
				}
				if err = commitFiles(staged); err != nil {
					return asUsageError(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), okMark(true), "passphrase changed,", len(paths), "record(s) re-encrypted")
				return nil
			})
		},
	}
}

func (c *cli) duressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duress",
		Short: "Set a passphrase that opens a decoy instead of the vault",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *App, p Prompter) error {
				if err := a.Unlock(ctx, p); err != nil {
					return err
				}
				duress, err := readNewSecret(p, a.core.ConstantTimeEquals, "Duress passphrase: ")
				if err != nil {
					return err
				}
				defer crypto.Zero(duress)

				if err = a.Vault.SetDuressPassphrase(ctx, duress); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okMark(true), "duress passphrase set")
				return nil
			})
		},
	}
}

func versionCmd(info models.AppBuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
		},
	}
}
