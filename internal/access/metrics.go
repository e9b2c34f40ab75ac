// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package access

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for permission matrix operations.
var (
	// accessChecks counts CanAccess decisions by outcome.
	accessChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "permsvc_access_checks_total",
		Help: "Total number of access checks by decision",
	}, []string{"decision"})

	// loadDuration tracks the latency of Load() including repair.
	loadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "permsvc_matrix_load_duration_seconds",
		Help:    "Histogram of matrix load latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// repairActions counts individual repairs applied during Load.
	repairActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "permsvc_matrix_repairs_total",
		Help: "Total number of repair actions applied on load",
	}, []string{"kind"})

	// saveFailures counts persistence failures.
	saveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "permsvc_matrix_save_failures_total",
		Help: "Total number of failed matrix writes",
	})
)

// Repair kinds recorded by the Load reconciliation pass.
const (
	repairBackfillRole  = "backfill_role"
	repairStripPermisos = "strip_permisos"
	repairAddSystem     = "add_system_module"
	repairDropUnknown   = "drop_unknown_module"
)
