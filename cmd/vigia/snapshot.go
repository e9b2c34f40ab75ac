// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/vigia/vigia/internal/access"
)

// NewExportCmd creates the export subcommand.
func NewExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the effective matrix as a YAML snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			data, err := store.ExportSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				cmd.Print(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return oops.Code("SNAPSHOT_WRITE_FAILED").With("path", output).Wrap(err)
			}
			cmd.Printf("exported snapshot to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, or - for stdout")

	return cmd
}

// NewImportCmd creates the import subcommand.
func NewImportCmd() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a YAML snapshot as the new matrix",
		Long: `Validate a snapshot file against the snapshot schema and install it
as the new permission matrix. The usual repair rules apply: the
permisos module is stripped and system modules are restored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return oops.Code("SNAPSHOT_READ_FAILED").With("path", args[0]).Wrap(err)
			}

			store, cleanup, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.ImportSnapshot(cmd.Context(), data, access.Role(actor)); err != nil {
				return err
			}
			cmd.Printf("imported snapshot from %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", string(access.RoleAdministrador),
		"role performing the import (non-administrators are rejected)")

	return cmd
}

// NewValidateSnapshotCmd creates the validate-snapshot subcommand.
func NewValidateSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-snapshot <file>",
		Short: "Validate a snapshot file without importing it",
		Long: `Validates a snapshot file against the snapshot schema.
Does NOT touch the stored matrix. Exits with code 0 on success.

Useful in CI pipelines to catch broken snapshots early:
  vigia validate-snapshot matrix.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return oops.Code("SNAPSHOT_READ_FAILED").With("path", args[0]).Wrap(err)
			}
			if _, err := access.ValidateSnapshot(data); err != nil {
				return err
			}
			cmd.Printf("%s is a valid snapshot\n", args[0])
			return nil
		},
	}
}
