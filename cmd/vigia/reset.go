// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/vigia/vigia/internal/access"
)

// NewResetCmd creates the reset subcommand.
func NewResetCmd() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the permission matrix to defaults",
		Long:  `Replace the entire persisted matrix with the default configuration.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.ResetToDefaults(cmd.Context(), access.Role(actor)); err != nil {
				return err
			}
			cmd.Println("permission matrix reset to defaults")
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", string(access.RoleAdministrador),
		"role performing the reset (non-administrators are rejected)")

	return cmd
}

// NewClearCmd creates the clear subcommand.
func NewClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the persisted matrix (emergency escape hatch)",
		Long: `Unconditionally delete the persisted matrix. The next read reseeds
from defaults. Requires --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				cmd.Println("refusing to clear without --force")
				return nil
			}
			store, cleanup, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.ForceClear(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("persisted matrix cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "actually delete the persisted matrix")

	return cmd
}
