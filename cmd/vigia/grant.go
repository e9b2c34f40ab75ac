// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package main

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/vigia/vigia/internal/access"
)

// grantConfig holds configuration for the grant command.
type grantConfig struct {
	actor string
}

// NewGrantCmd creates the grant subcommand.
func NewGrantCmd() *cobra.Command {
	cfg := &grantConfig{}

	cmd := &cobra.Command{
		Use:   "grant <role> <module-pattern>...",
		Short: "Replace a role's module grants",
		Long: `Replace the role's entire module set with the modules matching the
given patterns. Patterns are globs over module ids, so "maquinas*"
expands to both the edit and the view module. This is a full
overwrite: modules not named are revoked, except system modules,
which are always kept.`,
		Example: `  vigia grant Ayudante dashboard 'citaciones*'
  vigia grant Bombero mi-perfil videos citaciones-view`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrant(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.actor, "actor", string(access.RoleAdministrador),
		"role performing the edit (non-administrators are rejected)")

	return cmd
}

func runGrant(cmd *cobra.Command, args []string, cfg *grantConfig) error {
	store, cleanup, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	role := access.Role(args[0])
	modules, err := expandModulePatterns(args[1:])
	if err != nil {
		return err
	}

	if err := store.UpdatePermissions(cmd.Context(), role, modules, access.Role(cfg.actor)); err != nil {
		return err
	}

	granted := modules.Sorted()
	parts := make([]string, len(granted))
	for i, id := range granted {
		parts[i] = string(id)
	}
	cmd.Printf("updated %s: %s\n", role, strings.Join(parts, ","))
	return nil
}

// expandModulePatterns resolves glob patterns over the module catalog.
// Every pattern must match at least one module id.
func expandModulePatterns(patterns []string) (access.ModuleSet, error) {
	set := access.NewModuleSet()
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, oops.Code("INVALID_PATTERN").
				With("pattern", pattern).
				Wrap(err)
		}
		matched := false
		for _, id := range access.ModuleIDs() {
			if g.Match(string(id)) {
				set.Add(id)
				matched = true
			}
		}
		if !matched {
			return nil, oops.Code("INVALID_PATTERN").
				With("pattern", pattern).
				New("pattern matches no module")
		}
	}
	return set, nil
}
