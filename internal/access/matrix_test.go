// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package access_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigia/vigia/internal/access"
)

func TestModuleSet_Basics(t *testing.T) {
	s := access.NewModuleSet(access.ModuleVideos, access.ModuleVideos, access.ModuleDashboard)
	assert.Len(t, s, 2, "duplicates collapse")
	assert.True(t, s.Has(access.ModuleVideos))

	s.Remove(access.ModuleVideos)
	assert.False(t, s.Has(access.ModuleVideos))

	s.Add(access.ModuleReportes)
	assert.True(t, s.Has(access.ModuleReportes))
}

func TestModuleSet_CloneIsIndependent(t *testing.T) {
	orig := access.NewModuleSet(access.ModuleDashboard)
	clone := orig.Clone()
	clone.Add(access.ModuleVideos)

	assert.False(t, orig.Has(access.ModuleVideos))
	assert.True(t, orig.Equal(access.NewModuleSet(access.ModuleDashboard)))
}

func TestModuleSet_JSONIsSortedArray(t *testing.T) {
	s := access.NewModuleSet(access.ModuleVideos, access.ModuleDashboard, access.ModuleMiPerfil)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["dashboard","mi-perfil","videos"]`, string(data))

	var decoded access.ModuleSet
	require.NoError(t, json.Unmarshal([]byte(`["videos","videos","dashboard"]`), &decoded))
	assert.True(t, decoded.Equal(access.NewModuleSet(access.ModuleVideos, access.ModuleDashboard)))
}

func TestMatrix_CloneIsDeep(t *testing.T) {
	m := access.Matrix{
		access.RoleBombero: access.NewModuleSet(access.ModuleVideos),
	}
	clone := m.Clone()
	clone[access.RoleBombero].Add(access.ModuleDashboard)

	assert.False(t, m[access.RoleBombero].Has(access.ModuleDashboard))
}

func TestMatrix_Equal(t *testing.T) {
	a := access.DefaultMatrix()
	b := access.DefaultMatrix()
	assert.True(t, a.Equal(b))

	b[access.RoleBombero].Add(access.ModuleDashboard)
	assert.False(t, a.Equal(b))

	delete(b, access.RoleBombero)
	assert.False(t, a.Equal(b))
}
