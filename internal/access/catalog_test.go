// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigia/vigia/internal/access"
	"github.com/vigia/vigia/pkg/errutil"
)

func TestModuleByID(t *testing.T) {
	m, err := access.ModuleByID(access.ModuleCitacionesView)
	require.NoError(t, err)
	assert.Equal(t, "Citaciones (consulta)", m.Name)
	assert.True(t, m.System)
	assert.True(t, m.ReadOnly)
	assert.Equal(t, access.ModuleCitaciones, m.Parent)
}

func TestModuleByID_Unknown(t *testing.T) {
	_, err := access.ModuleByID("bodega")
	errutil.AssertErrorCode(t, err, "INVALID_MODULE")
}

func TestModuleIDs_CoversCatalog(t *testing.T) {
	ids := access.ModuleIDs()
	assert.Len(t, ids, 12)

	seen := make(map[access.ModuleID]bool, len(ids))
	for _, id := range ids {
		assert.True(t, access.KnownModule(id))
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSystemModuleIDs(t *testing.T) {
	assert.Equal(t,
		[]access.ModuleID{access.ModuleCitacionesView, access.ModuleMiPerfil},
		access.SystemModuleIDs())
}

func TestReadOnlyModulesNameAParent(t *testing.T) {
	for _, m := range access.Modules() {
		if !m.ReadOnly {
			continue
		}
		assert.True(t, access.KnownModule(m.Parent), "module %s", m.ID)
		assert.NotEqual(t, m.ID, m.Parent, "module %s", m.ID)
	}
}

func TestModules_ReturnsCopy(t *testing.T) {
	mods := access.Modules()
	mods[0].Name = "tampered"
	assert.NotEqual(t, "tampered", access.Modules()[0].Name)
}

func TestProfileByRole(t *testing.T) {
	p, err := access.ProfileByRole(access.RoleTesorero)
	require.NoError(t, err)
	assert.Equal(t, access.CategorySupport, p.Category)
}

func TestProfileByRole_AdministratorNotCataloged(t *testing.T) {
	_, err := access.ProfileByRole(access.RoleAdministrador)
	errutil.AssertErrorCode(t, err, "INVALID_ROLE")
}

func TestRoles_ExcludeAdministrator(t *testing.T) {
	roles := access.Roles()
	assert.Len(t, roles, 7)
	assert.NotContains(t, roles, access.RoleAdministrador)
	assert.False(t, access.KnownRole(access.RoleAdministrador))
}
