// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package access

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// AuditEntry records one mutation of the permission matrix.
type AuditEntry struct {
	ID        ulid.ULID  `json:"id"`
	Actor     Role       `json:"actor"`
	Operation string     `json:"operation"`
	Target    Role       `json:"target,omitempty"`
	Granted   []ModuleID `json:"granted,omitempty"`
	Revoked   []ModuleID `json:"revoked,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Audit operations.
const (
	AuditOpUpdate = "update_permissions"
	AuditOpReset  = "reset_to_defaults"
	AuditOpClear  = "force_clear"
)

// AuditWriter receives audit entries for completed mutations.
// Write failures must not block or fail the mutation itself.
type AuditWriter interface {
	Write(ctx context.Context, entry AuditEntry) error
}

// SlogAuditWriter writes audit entries to a structured logger.
type SlogAuditWriter struct {
	logger *slog.Logger
}

// NewSlogAuditWriter creates an AuditWriter over logger.
// If logger is nil, slog.Default() is used.
func NewSlogAuditWriter(logger *slog.Logger) *SlogAuditWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAuditWriter{logger: logger}
}

// Write implements AuditWriter.
func (w *SlogAuditWriter) Write(ctx context.Context, entry AuditEntry) error {
	w.logger.LogAttrs(ctx, slog.LevelInfo, "permission matrix changed",
		slog.String("audit_id", entry.ID.String()),
		slog.String("actor", string(entry.Actor)),
		slog.String("operation", entry.Operation),
		slog.String("target", string(entry.Target)),
		slog.Any("granted", entry.Granted),
		slog.Any("revoked", entry.Revoked),
		slog.Time("at", entry.Timestamp),
	)
	return nil
}

// newAuditEntry stamps a fresh entry with a ULID and current time.
func newAuditEntry(actor Role, op string, target Role) AuditEntry {
	now := time.Now().UTC()
	return AuditEntry{
		ID:        ulid.Make(),
		Actor:     actor,
		Operation: op,
		Target:    target,
		Timestamp: now,
	}
}

// diffSets computes the grants and revocations between two sets,
// sorted for stable audit output.
func diffSets(before, after ModuleSet) (granted, revoked []ModuleID) {
	for _, id := range after.Sorted() {
		if !before.Has(id) {
			granted = append(granted, id)
		}
	}
	for _, id := range before.Sorted() {
		if !after.Has(id) {
			revoked = append(revoked, id)
		}
	}
	return granted, revoked
}
