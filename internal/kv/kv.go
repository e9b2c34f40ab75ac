// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

// Package kv provides the key-value backends the permission Store
// persists to: an in-memory map for tests, a JSON file for single-host
// deployments, and a PostgreSQL table.
package kv

import "context"

// Backend is a minimal key-value store. The permission matrix lives
// under a single key; absence of the key is a valid state.
type Backend interface {
	// Get returns the value for key. ok is false when the key is
	// absent; absence is not an error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put replaces the value for key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
