// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package access

import (
	"encoding/json"
	"sort"
)

// ModuleSet is an unordered, deduplicated set of module ids.
// The zero value is not usable; use NewModuleSet.
type ModuleSet map[ModuleID]struct{}

// NewModuleSet builds a set from the given ids.
func NewModuleSet(ids ...ModuleID) ModuleSet {
	s := make(ModuleSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s ModuleSet) Has(id ModuleID) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s ModuleSet) Add(id ModuleID) { s[id] = struct{}{} }

// Remove deletes id from the set.
func (s ModuleSet) Remove(id ModuleID) { delete(s, id) }

// Clone returns an independent copy.
func (s ModuleSet) Clone() ModuleSet {
	out := make(ModuleSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same ids.
func (s ModuleSet) Equal(other ModuleSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the ids in lexical order. Insertion order carries no
// meaning; sorting keeps the wire format deterministic.
func (s ModuleSet) Sorted() []ModuleID {
	ids := make([]ModuleID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MarshalJSON encodes the set as a sorted string array.
func (s ModuleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a string array, deduplicating entries.
func (s *ModuleSet) UnmarshalJSON(data []byte) error {
	var ids []ModuleID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewModuleSet(ids...)
	return nil
}

// Matrix maps every governed role to its allowed module set.
// RoleAdministrador never appears as a key.
type Matrix map[Role]ModuleSet

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for role, set := range m {
		out[role] = set.Clone()
	}
	return out
}

// Equal reports whether both matrices hold identical role entries.
func (m Matrix) Equal(other Matrix) bool {
	if len(m) != len(other) {
		return false
	}
	for role, set := range m {
		o, ok := other[role]
		if !ok || !set.Equal(o) {
			return false
		}
	}
	return true
}
