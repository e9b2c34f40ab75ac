// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

// Package errutil provides helpers for logging and asserting on
// structured oops errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level with structured context.
// For oops errors the code and context map are attached as attributes;
// plain errors are logged as a bare string.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, attrsFor(err)...)
}

// LogWarn logs err at warn level with the same structure as LogError.
// Used for recovered conditions such as storage fallbacks.
func LogWarn(logger *slog.Logger, msg string, err error) {
	logger.Warn(msg, attrsFor(err)...)
}

func attrsFor(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}
	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != "" {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	return attrs
}
