// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package access

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SnapshotFormatVersion is stamped on every export. Imports accept any
// version with the same major.
const SnapshotFormatVersion = "1.0.0"

// snapshotConstraint accepts any snapshot with the current major.
var snapshotConstraint = func() *semver.Constraints {
	c, err := semver.NewConstraint("^1.0.0")
	if err != nil {
		panic("invalid snapshot version constraint: " + err.Error())
	}
	return c
}()

// Snapshot is the portable YAML representation of a permission matrix,
// used by the export/import CLI commands.
type Snapshot struct {
	FormatVersion string              `json:"format_version" yaml:"format_version" jsonschema:"required"`
	ExportedAt    time.Time           `json:"exported_at,omitempty" yaml:"exported_at"`
	Matrix        map[string][]string `json:"matrix" yaml:"matrix" jsonschema:"required"`
}

// schemaCache holds the compiled snapshot schema to avoid recompilation.
var schemaCache *jschema.Schema

// GenerateSnapshotSchema generates a JSON Schema for snapshot files.
func GenerateSnapshotSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Snapshot{})
	schema.ID = jsonschema.ID("https://vigia.dev/schemas/matrix-snapshot.schema.json")
	schema.Title = "Vigía Permission Matrix Snapshot"
	schema.Description = "Schema for exported permission matrix YAML files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.In("access").Code("SNAPSHOT_INVALID").Wrap(err)
	}
	return data, nil
}

// ValidateSnapshot validates raw YAML snapshot data against the
// generated schema and the format version constraint, returning the
// parsed snapshot on success.
func ValidateSnapshot(data []byte) (*Snapshot, error) {
	if len(data) == 0 {
		return nil, oops.In("access").Code("SNAPSHOT_INVALID").New("snapshot data is empty")
	}

	var yamlData any
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return nil, oops.In("access").Code("SNAPSHOT_INVALID").Wrapf(err, "invalid YAML")
	}

	sch, err := compiledSnapshotSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(convertToJSONTypes(yamlData)); err != nil {
		return nil, oops.In("access").Code("SNAPSHOT_INVALID").Wrapf(err, "schema validation failed")
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, oops.In("access").Code("SNAPSHOT_INVALID").Wrap(err)
	}

	v, err := semver.NewVersion(snap.FormatVersion)
	if err != nil {
		return nil, oops.In("access").
			Code("SNAPSHOT_INVALID").
			With("format_version", snap.FormatVersion).
			Wrapf(err, "invalid format version")
	}
	if !snapshotConstraint.Check(v) {
		return nil, oops.In("access").
			Code("SNAPSHOT_INVALID").
			With("format_version", snap.FormatVersion).
			With("supported", "^1.0.0").
			New("unsupported snapshot format version")
	}

	return &snap, nil
}

// ExportSnapshot serializes the effective matrix as a YAML snapshot.
func (s *Store) ExportSnapshot(ctx context.Context) ([]byte, error) {
	matrix, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	snap := Snapshot{
		FormatVersion: SnapshotFormatVersion,
		ExportedAt:    time.Now().UTC(),
		Matrix:        make(map[string][]string, len(matrix)),
	}
	for role, set := range matrix {
		ids := set.Sorted()
		entry := make([]string, len(ids))
		for i, id := range ids {
			entry[i] = string(id)
		}
		snap.Matrix[string(role)] = entry
	}

	out, err := yaml.Marshal(&snap)
	if err != nil {
		return nil, oops.In("access").Code("SNAPSHOT_INVALID").Wrap(err)
	}
	return out, nil
}

// ImportSnapshot validates and installs a snapshot as the new matrix.
// Admin-gated like any other edit; the subsequent load's repair pass
// re-establishes the invariants over the imported entries.
func (s *Store) ImportSnapshot(ctx context.Context, data []byte, requestingRole Role) error {
	if requestingRole != RoleAdministrador {
		return oops.In("access").
			Code("UNAUTHORIZED").
			With("requesting_role", string(requestingRole)).
			New("only the administrator may import a snapshot")
	}

	snap, err := ValidateSnapshot(data)
	if err != nil {
		return err
	}

	matrix := make(Matrix, len(snap.Matrix))
	for role, ids := range snap.Matrix {
		r := Role(role)
		if !KnownRole(r) {
			return oops.In("access").
				Code("INVALID_ROLE").
				With("role", role).
				New("snapshot names unknown role")
		}
		set := NewModuleSet()
		for _, id := range ids {
			m := ModuleID(id)
			if !KnownModule(m) {
				return oops.In("access").
					Code("INVALID_MODULE").
					With("role", role).
					With("module", id).
					New("snapshot names unknown module")
			}
			set.Add(m)
		}
		matrix[r] = set
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.repair(matrix)
	if err := s.persist(ctx, matrix); err != nil {
		return err
	}
	s.writeAudit(ctx, func() AuditEntry {
		return newAuditEntry(requestingRole, AuditOpUpdate, "")
	})
	return nil
}

// compiledSnapshotSchema returns the cached compiled schema.
func compiledSnapshotSchema() (*jschema.Schema, error) {
	if schemaCache != nil {
		return schemaCache, nil
	}

	schemaBytes, err := GenerateSnapshotSchema()
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, oops.In("access").Code("SNAPSHOT_INVALID").Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, oops.In("access").Code("SNAPSHOT_INVALID").Wrap(err)
	}
	sch, err := c.Compile("schema.json")
	if err != nil {
		return nil, oops.In("access").Code("SNAPSHOT_INVALID").Wrap(err)
	}

	schemaCache = sch
	return sch, nil
}

// convertToJSONTypes converts YAML-parsed data to JSON-compatible
// types for schema validation.
func convertToJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, inner := range val {
			result[k] = convertToJSONTypes(inner)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, inner := range val {
			result[i] = convertToJSONTypes(inner)
		}
		return result
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}
