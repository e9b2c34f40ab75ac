// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vigia/vigia/internal/config"
	"github.com/vigia/vigia/internal/logging"
	"github.com/vigia/vigia/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the vigia CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vigia",
		Short: "Vigía - permission matrix for the company intranet",
		Long: `Vigía manages the module-permission matrix of the volunteer fire
company intranet: which cargo may open which module, with the
administrator outside the matrix and always in full control.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logging.SetDefault("vigia", cmd.Root().Version, cfg.Log.Format, cfg.Log.Level)
			return nil
		},
	}

	defaults := config.Default()
	pf := cmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path")
	pf.String("storage.driver", defaults.Storage.Driver, "storage backend: memory, file or postgres")
	pf.String("storage.path", defaults.Storage.Path, "matrix file path (file driver)")
	pf.String("storage.dsn", "", "PostgreSQL connection string (postgres driver)")
	pf.String("storage.key", defaults.Storage.Key, "backend key holding the matrix")
	pf.String("log.format", defaults.Log.Format, "log format: json or text")
	pf.String("log.level", defaults.Log.Level, "log level: debug, info, warn, error")
	pf.Bool("audit.enabled", defaults.Audit.Enabled, "record audit entries for matrix edits")

	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewGrantCmd())
	cmd.AddCommand(NewResetCmd())
	cmd.AddCommand(NewClearCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewValidateSnapshotCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig resolves the effective configuration for cmd.
// An unset --config falls back to the XDG location; a missing file
// there is fine.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := configFile
	if path == "" {
		path = filepath.Join(xdg.ConfigDir(), "config.yaml")
	}
	return config.Load(path, cmd.Root().PersistentFlags())
}
