// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vigia/vigia/internal/access"
)

// NewShowCmd creates the show subcommand.
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [role]",
		Short: "Show the effective permission matrix",
		Long: `Show the effective (repaired) permission matrix for all roles,
or the allowed modules for a single role.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	store, cleanup, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if len(args) == 1 {
		role := access.Role(args[0])
		allowed, err := store.AllowedModules(cmd.Context(), role)
		if err != nil {
			return err
		}
		for _, id := range allowed.Sorted() {
			cmd.Println(string(id))
		}
		return nil
	}

	matrix, err := store.Load(cmd.Context())
	if err != nil {
		return err
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tCATEGORY\tMODULES")
	for _, p := range access.Profiles() {
		entry := matrix[p.Role]
		ids := entry.Sorted()
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = string(id)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Role, p.Category, strings.Join(parts, ","))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	cmd.Print(sb.String())
	return nil
}
