// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package access

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vigia/vigia/internal/kv"
)

// DefaultMatrixKey is the backend key holding the serialized matrix.
const DefaultMatrixKey = "permission_matrix"

// Store is the single source of truth for the effective permission
// matrix. It loads the persisted state, repairs it against the
// catalogs on every read, and is the only writer of the backend key.
//
// All operations take the store mutex for the full read-modify-write
// cycle, so concurrent callers within one process cannot interleave a
// stale load with a save.
type Store struct {
	backend kv.Backend
	key     string
	logger  *slog.Logger
	audit   AuditWriter
	tracer  trace.Tracer
	mu      sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the backend key the matrix is stored under.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger used for repair and fallback warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithAuditWriter sets the writer receiving mutation audit entries.
// Nil disables auditing.
func WithAuditWriter(w AuditWriter) Option {
	return func(s *Store) { s.audit = w }
}

// NewStore creates a Store over the given backend.
func NewStore(backend kv.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultMatrixKey,
		logger:  slog.Default(),
		tracer:  otel.Tracer("vigia/access"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the effective matrix: persisted state reconciled
// against the catalogs. Absent or unreadable state falls back to the
// default matrix; the failure mode always under-grants, never
// over-grants. The returned matrix is a fresh copy.
func (s *Store) Load(ctx context.Context) (Matrix, error) {
	ctx, span := s.tracer.Start(ctx, "access.Store.Load")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	// A failed backend read degrades to the defaults view; the read
	// error is swallowed here but fails the mutation paths.
	matrix, _ := s.loadLocked(ctx)
	return matrix, nil
}

// loadLocked implements Load. Callers must hold s.mu. A non-nil
// readErr means the backend read failed and matrix is the defaults
// fallback, not persisted state.
func (s *Store) loadLocked(ctx context.Context) (_ Matrix, readErr error) {
	start := time.Now()
	defer func() { loadDuration.Observe(time.Since(start).Seconds()) }()

	matrix, changed, readErr := s.readRaw(ctx)
	changed = s.repair(matrix) || changed

	// Write-back reconciliation. Only on actual change, and never when
	// the backend read itself failed: a degraded read must not clobber
	// state we could not see.
	if changed && readErr == nil {
		if err := s.persist(ctx, matrix); err != nil {
			saveFailures.Inc()
			s.logger.Warn("failed to write back repaired matrix", "error", err)
		}
	}

	return matrix.Clone(), readErr
}

// readRaw loads and parses the persisted blob.
// Returns the working matrix, whether it diverged from the persisted
// state (absent state counts, it must be seeded), and the backend read
// error if any.
func (s *Store) readRaw(ctx context.Context) (matrix Matrix, changed bool, readErr error) {
	data, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("permission matrix unreadable, using defaults",
			"key", s.key, "error", err)
		return DefaultMatrix(), false, err
	}
	if !ok {
		return DefaultMatrix(), true, nil
	}

	var raw map[Role]ModuleSet
	if err := json.Unmarshal(data, &raw); err != nil {
		// Malformed state is treated as absence, not a fatal error.
		s.logger.Warn("permission matrix malformed, reseeding from defaults",
			"key", s.key, "error", err)
		return DefaultMatrix(), true, nil
	}

	matrix = make(Matrix, len(raw))
	for role, set := range raw {
		if !KnownRole(role) {
			// Renamed or removed roles are harmless leftovers.
			s.logger.Warn("dropping unknown role from persisted matrix", "role", string(role))
			changed = true
			continue
		}
		matrix[role] = set
	}
	return matrix, changed, nil
}

// repair enforces the matrix invariants in place and reports whether
// anything was fixed:
//
//  1. every catalog role has an entry (back-filled from defaults)
//  2. no governed role holds ModulePermisos
//  3. every entry contains every system module
//
// plus dropping module ids no longer in the catalog.
func (s *Store) repair(matrix Matrix) bool {
	changed := false
	defaults := DefaultMatrix()
	system := SystemModuleIDs()

	for _, role := range Roles() {
		if _, ok := matrix[role]; !ok {
			matrix[role] = defaults[role]
			repairActions.WithLabelValues(repairBackfillRole).Inc()
			changed = true
		}
	}

	for role, set := range matrix {
		for _, id := range set.Sorted() {
			if !KnownModule(id) {
				set.Remove(id)
				repairActions.WithLabelValues(repairDropUnknown).Inc()
				s.logger.Warn("dropping unknown module from persisted matrix",
					"role", string(role), "module", string(id))
				changed = true
			}
		}
		if set.Has(ModulePermisos) {
			set.Remove(ModulePermisos)
			repairActions.WithLabelValues(repairStripPermisos).Inc()
			changed = true
		}
		for _, id := range system {
			if !set.Has(id) {
				set.Add(id)
				repairActions.WithLabelValues(repairAddSystem).Inc()
				changed = true
			}
		}
	}
	return changed
}

// Save serializes and writes the full matrix, replacing any prior
// state. Unlike the mutation operations it applies no repair; it is
// the low-level persistence primitive.
func (s *Store) Save(ctx context.Context, matrix Matrix) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, matrix)
}

// persist writes the matrix. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context, matrix Matrix) error {
	data, err := json.Marshal(matrix)
	if err != nil {
		saveFailures.Inc()
		return oops.In("access").Code("STORAGE_WRITE_FAILED").Wrap(err)
	}
	if err := s.backend.Put(ctx, s.key, data); err != nil {
		saveFailures.Inc()
		return oops.In("access").
			Code("STORAGE_WRITE_FAILED").
			With("key", s.key).
			Wrap(err)
	}
	return nil
}

// CanAccess reports whether role may enter the given module.
//
// RoleAdministrador is always allowed. ModulePermisos is denied to
// every other role regardless of matrix contents. Unknown ids surface
// as errors instead of a silent deny so configuration bugs are not
// masked as missing grants.
func (s *Store) CanAccess(ctx context.Context, role Role, moduleID ModuleID) (bool, error) {
	if !KnownModule(moduleID) {
		accessChecks.WithLabelValues("error").Inc()
		return false, oops.In("access").
			Code("INVALID_MODULE").
			With("module", string(moduleID)).
			New("unknown module id")
	}
	if role == RoleAdministrador {
		accessChecks.WithLabelValues("allow").Inc()
		return true, nil
	}
	if moduleID == ModulePermisos {
		accessChecks.WithLabelValues("deny").Inc()
		return false, nil
	}
	if !KnownRole(role) {
		accessChecks.WithLabelValues("error").Inc()
		return false, oops.In("access").
			Code("INVALID_ROLE").
			With("role", string(role)).
			New("unknown role")
	}

	matrix, err := s.Load(ctx)
	if err != nil {
		accessChecks.WithLabelValues("error").Inc()
		return false, err
	}
	allowed := matrix[role].Has(moduleID)
	if allowed {
		accessChecks.WithLabelValues("allow").Inc()
	} else {
		accessChecks.WithLabelValues("deny").Inc()
	}
	return allowed, nil
}

// AllowedModules returns the module set role may enter.
// RoleAdministrador gets the full catalog.
func (s *Store) AllowedModules(ctx context.Context, role Role) (ModuleSet, error) {
	if role == RoleAdministrador {
		return NewModuleSet(ModuleIDs()...), nil
	}
	if !KnownRole(role) {
		return nil, oops.In("access").
			Code("INVALID_ROLE").
			With("role", string(role)).
			New("unknown role")
	}
	matrix, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return matrix[role], nil
}

// UpdatePermissions replaces role's entire entry with modules.
//
// Only RoleAdministrador may call this. ModulePermisos is stripped
// from the input, and system modules are unioned back in: they are
// genuinely non-revocable, so an edit omitting them is corrected here
// instead of being silently undone on the next load.
func (s *Store) UpdatePermissions(ctx context.Context, role Role, modules ModuleSet, requestingRole Role) error {
	ctx, span := s.tracer.Start(ctx, "access.Store.UpdatePermissions")
	defer span.End()

	if requestingRole != RoleAdministrador {
		return oops.In("access").
			Code("UNAUTHORIZED").
			With("requesting_role", string(requestingRole)).
			New("only the administrator may edit permissions")
	}
	if !KnownRole(role) {
		return oops.In("access").
			Code("INVALID_ROLE").
			With("role", string(role)).
			New("unknown role")
	}
	for id := range modules {
		if !KnownModule(id) {
			return oops.In("access").
				Code("INVALID_MODULE").
				With("module", string(id)).
				New("unknown module id")
		}
	}

	entry := modules.Clone()
	entry.Remove(ModulePermisos)
	for _, id := range SystemModuleIDs() {
		entry.Add(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Unlike Load, an edit must not proceed over the defaults fallback:
	// merging into a view the backend never served could overwrite
	// state this process has not seen.
	matrix, err := s.loadLocked(ctx)
	if err != nil {
		return oops.In("access").
			Code("STORAGE_READ_FAILED").
			With("key", s.key).
			Wrap(err)
	}
	before := matrix[role]
	matrix[role] = entry
	if err := s.persist(ctx, matrix); err != nil {
		return err
	}

	s.writeAudit(ctx, func() AuditEntry {
		e := newAuditEntry(requestingRole, AuditOpUpdate, role)
		e.Granted, e.Revoked = diffSets(before, entry)
		return e
	})
	return nil
}

// ResetToDefaults replaces the entire persisted matrix with the
// default configuration. Only RoleAdministrador may call this.
func (s *Store) ResetToDefaults(ctx context.Context, requestingRole Role) error {
	ctx, span := s.tracer.Start(ctx, "access.Store.ResetToDefaults")
	defer span.End()

	if requestingRole != RoleAdministrador {
		return oops.In("access").
			Code("UNAUTHORIZED").
			With("requesting_role", string(requestingRole)).
			New("only the administrator may reset permissions")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, DefaultMatrix()); err != nil {
		return err
	}
	s.writeAudit(ctx, func() AuditEntry {
		return newAuditEntry(requestingRole, AuditOpReset, "")
	})
	return nil
}

// ForceClear unconditionally deletes the persisted matrix. The next
// Load reseeds from defaults. Emergency escape hatch; not gated.
func (s *Store) ForceClear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.key); err != nil {
		return oops.In("access").
			Code("STORAGE_WRITE_FAILED").
			With("key", s.key).
			Wrap(err)
	}
	s.writeAudit(ctx, func() AuditEntry {
		return newAuditEntry("", AuditOpClear, "")
	})
	return nil
}

// writeAudit builds and writes an audit entry if auditing is enabled.
// Audit failures are logged, never propagated.
func (s *Store) writeAudit(ctx context.Context, build func() AuditEntry) {
	if s.audit == nil {
		return
	}
	entry := build()
	if err := s.audit.Write(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit entry",
			"audit_id", entry.ID.String(),
			"operation", entry.Operation,
			"error", err)
	}
}

// Stats summarizes the effective matrix.
type Stats struct {
	RoleCount   int              `json:"role_count"`
	ModuleCount int              `json:"module_count"`
	ModuleUsage map[ModuleID]int `json:"module_usage"`
	// BroadAccessRoles lists roles granted all but at most one module.
	BroadAccessRoles []Role `json:"broad_access_roles"`
}

// Stats derives a read-only usage report from the effective matrix.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	matrix, err := s.Load(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		RoleCount:   len(matrix),
		ModuleCount: len(ModuleIDs()),
		ModuleUsage: make(map[ModuleID]int, len(ModuleIDs())),
	}
	for _, id := range ModuleIDs() {
		st.ModuleUsage[id] = 0
	}
	for role, entry := range matrix {
		for id := range entry {
			st.ModuleUsage[id]++
		}
		if len(entry) >= st.ModuleCount-1 {
			st.BroadAccessRoles = append(st.BroadAccessRoles, role)
		}
	}
	sort.Slice(st.BroadAccessRoles, func(i, j int) bool {
		return st.BroadAccessRoles[i] < st.BroadAccessRoles[j]
	})
	return st, nil
}
