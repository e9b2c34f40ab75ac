// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

// Package config loads Vigía configuration from defaults, an optional
// YAML file, and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/vigia/vigia/internal/xdg"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Config is the full runtime configuration.
type Config struct {
	Storage StorageConfig `koanf:"storage"`
	Log     LogConfig     `koanf:"log"`
	Audit   AuditConfig   `koanf:"audit"`
}

// StorageConfig selects and parameterizes the key-value backend.
type StorageConfig struct {
	// Driver is one of memory, file, postgres.
	Driver string `koanf:"driver"`
	// Path is the JSON document location for the file driver.
	Path string `koanf:"path"`
	// DSN is the PostgreSQL connection string for the postgres driver.
	DSN string `koanf:"dsn"`
	// Key is the backend key the matrix is stored under.
	Key string `koanf:"key"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Format string `koanf:"format"` // json or text
	Level  string `koanf:"level"`
}

// AuditConfig controls the mutation audit trail.
type AuditConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Driver: DriverFile,
			Path:   filepath.Join(xdg.DataDir(), "permissions.json"),
			Key:    "permission_matrix",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
		},
		Audit: AuditConfig{
			Enabled: true,
		},
	}
}

// Load builds the effective configuration. path may be empty (no file),
// and a missing file at the default location is not an error. flags may
// be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		_, statErr := os.Stat(path)
		switch {
		case errors.Is(statErr, fs.ErrNotExist):
			// Absent config file means defaults; only an explicit,
			// unreadable file is an error.
		case statErr != nil:
			return Config{}, oops.In("config").
				Code("CONFIG_INVALID").
				With("path", path).
				Wrap(statErr)
		default:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, oops.In("config").
					Code("CONFIG_INVALID").
					With("path", path).
					Wrap(err)
			}
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.In("config").
				Code("CONFIG_INVALID").
				Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.In("config").
			Code("CONFIG_INVALID").
			Wrap(err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate rejects configurations that cannot produce a working backend.
func (c Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Storage.Path == "" {
			return oops.In("config").
				Code("CONFIG_INVALID").
				New("storage.path is required for the file driver")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return oops.In("config").
				Code("CONFIG_INVALID").
				New("storage.dsn is required for the postgres driver")
		}
	default:
		return oops.In("config").
			Code("CONFIG_INVALID").
			With("driver", c.Storage.Driver).
			New("unknown storage driver")
	}
	if c.Storage.Key == "" {
		return oops.In("config").
			Code("CONFIG_INVALID").
			New("storage.key must not be empty")
	}
	return nil
}
