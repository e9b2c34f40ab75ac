// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/vigia/vigia/internal/config"
	"github.com/vigia/vigia/internal/kv"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations (postgres driver)",
		Long:  `Run all pending schema migrations against the configured PostgreSQL database.`,
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		Args:  cobra.NoArgs,
		RunE:  runMigrateVersion,
	})

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	m, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }() //nolint:errcheck // best-effort cleanup

	cmd.Println("Running migrations...")
	if err := m.Up(); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}

func runMigrateVersion(cmd *cobra.Command, _ []string) error {
	m, err := openMigrator(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }() //nolint:errcheck // best-effort cleanup

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	cmd.Printf("version: %d  dirty: %v\n", version, dirty)
	return nil
}

func openMigrator(cmd *cobra.Command) (*kv.Migrator, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Driver != config.DriverPostgres || cfg.Storage.DSN == "" {
		return nil, oops.Code("CONFIG_INVALID").
			With("driver", cfg.Storage.Driver).
			New("migrate requires the postgres driver and storage.dsn")
	}
	return kv.NewMigrator(cfg.Storage.DSN)
}
