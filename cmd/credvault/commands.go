package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/credvault/internal/buildinfo"
	"github.com/dmitrijs2005/credvault/internal/cli"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/strength"
	"github.com/dmitrijs2005/credvault/internal/transfer"
	"github.com/spf13/cobra"
)

var errNotConfirmed = errors.New("refusing to replace local data without --yes")

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	o := &rootOptions{}

	root := &cobra.Command{
		Use:           "credvault",
		Short:         "Local multi-user password vault",
		Long:          "credvault keeps encrypted credentials for several local users in a SQLite file, with optional remote backup.",
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "Config file path (.json, .yaml or .yml)")
	pf.StringVar(&o.dbPath, "db", "", "Database file (overrides config)")
	pf.StringVar(&o.keyFile, "key", "", "Key file (overrides config)")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	shell := newShellCmd(o)
	root.RunE = shell.RunE

	root.AddCommand(
		shell,
		newExportCmd(o),
		newImportCmd(o),
		newBackupCmd(o),
		newRestoreCmd(o),
		newGenerateCmd(),
		newKeygenCmd(o),
	)
	return root
}

func newShellCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := setup(ctx, o, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer d.Close()

			app := cli.NewApp(cli.Options{
				Session:       d.session,
				Sync:          d.sync,
				Store:         d.store,
				ExportDir:     d.cfg.ExportDir,
				BackupOnLogin: d.cfg.BackupOnLogin,
				In:            cmd.InOrStdin(),
				Out:           cmd.OutOrStdout(),
				Logger:        d.log,
			})
			app.Run(ctx)
			return nil
		},
	}
}

func newExportCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "Write all accounts and secrets to CSV files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := setup(ctx, o, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer d.Close()

			dir := d.cfg.ExportDir
			if len(args) == 1 {
				dir = args[0]
			}
			if err := transfer.Export(ctx, d.store, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s.\n", dir)
			return nil
		},
	}
}

func newImportCmd(o *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import [dir]",
		Short: "Replace all local data with CSV files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			ctx := cmd.Context()
			d, err := setup(ctx, o, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer d.Close()

			dir := d.cfg.ExportDir
			if len(args) == 1 {
				dir = args[0]
			}
			if err := transfer.Import(ctx, d.store, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported from %s.\n", dir)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm replacing local data")
	return cmd
}

func newBackupCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Upload a snapshot of the vault to the configured remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := setup(ctx, o, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.sync.BackupErr(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Backup complete.")
			return nil
		},
	}
}

func newRestoreCmd(o *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace all local data with the remote snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			ctx := cmd.Context()
			d, err := setup(ctx, o, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.sync.RestoreErr(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Restore complete.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm replacing local data")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a random password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := strength.Generate(length)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", pw, strength.Rate(pw))
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "n", strength.DefaultLength, "Password length")
	return cmd
}

func newKeygenCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Create the vault key file if it does not exist",
		Long:  "Create the vault key file if it does not exist. An existing key is never overwritten; losing it makes stored secrets unreadable.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			if _, err := cryptox.LoadOrCreateKey(cfg.KeyFile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Key file: %s\n", cfg.KeyFile)
			return nil
		},
	}
}
