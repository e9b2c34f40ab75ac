// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/vigia/vigia/internal/access"
	"github.com/vigia/vigia/internal/config"
	"github.com/vigia/vigia/internal/kv"
)

// openStore builds the permission store from the effective config.
// The returned cleanup closes the backend and must always be called.
func openStore(ctx context.Context, cmd *cobra.Command) (*access.Store, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []access.Option{access.WithKey(cfg.Storage.Key)}
	if cfg.Audit.Enabled {
		opts = append(opts, access.WithAuditWriter(access.NewSlogAuditWriter(slog.Default())))
	}
	store := access.NewStore(backend, opts...)

	cleanup := func() {
		if err := backend.Close(); err != nil {
			slog.Warn("failed to close storage backend", "error", err)
		}
	}
	return store, cleanup, nil
}

// openBackend constructs the configured kv backend.
func openBackend(ctx context.Context, cfg config.Config) (kv.Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return kv.NewMemory(), nil
	case config.DriverFile:
		return kv.NewFile(cfg.Storage.Path)
	case config.DriverPostgres:
		return kv.NewPostgres(ctx, cfg.Storage.DSN)
	default:
		// config.Load validates the driver; reaching this is a bug.
		return nil, oops.Code("CONFIG_INVALID").
			With("driver", cfg.Storage.Driver).
			New("unknown storage driver")
	}
}
