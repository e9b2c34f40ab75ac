// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/vigia/vigia/internal/access"
)

// NewCheckCmd creates the check subcommand.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <role> <module>",
		Short: "Check whether a role may open a module",
		Long: `Check whether the given role may open the given module.
Exits 0 when access is allowed and 1 when it is denied.`,
		Args: cobra.ExactArgs(2),
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	store, cleanup, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	role := access.Role(args[0])
	moduleID := access.ModuleID(args[1])

	allowed, err := store.CanAccess(cmd.Context(), role, moduleID)
	if err != nil {
		return err
	}
	if !allowed {
		cmd.Printf("denied: %s -> %s\n", role, moduleID)
		return oops.Code("ACCESS_DENIED").
			With("role", string(role)).
			With("module", string(moduleID)).
			New("access denied")
	}
	cmd.Printf("allowed: %s -> %s\n", role, moduleID)
	return nil
}
