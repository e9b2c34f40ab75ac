// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/vigia/vigia/internal/access"
)

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
	filter     string
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show permission matrix statistics",
		Long: `Show counts and per-module usage across all roles: how many roles
hold each module and which roles have broad access.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output statistics as JSON")
	cmd.Flags().StringVar(&cfg.filter, "filter", "", "glob over module ids (e.g. 'maquinas*')")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	store, cleanup, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}

	if cfg.filter != "" {
		g, err := glob.Compile(cfg.filter)
		if err != nil {
			return oops.Code("INVALID_PATTERN").With("pattern", cfg.filter).Wrap(err)
		}
		for id := range stats.ModuleUsage {
			if !g.Match(string(id)) {
				delete(stats.ModuleUsage, id)
			}
		}
	}

	if cfg.jsonOutput {
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		cmd.Println(string(out))
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "roles: %d  modules: %d\n", stats.RoleCount, stats.ModuleCount)
	if len(stats.BroadAccessRoles) > 0 {
		parts := make([]string, len(stats.BroadAccessRoles))
		for i, r := range stats.BroadAccessRoles {
			parts[i] = string(r)
		}
		fmt.Fprintf(&sb, "broad access: %s\n", strings.Join(parts, ","))
	}

	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODULE\tROLES")
	for _, id := range access.ModuleIDs() {
		count, ok := stats.ModuleUsage[id]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\n", id, count)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	cmd.Print(sb.String())
	return nil
}
