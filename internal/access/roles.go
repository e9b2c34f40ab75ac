// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package access

import "github.com/samber/oops"

// Role names one of the fixed company positions ("cargos").
type Role string

// RoleAdministrador is the privileged role. It sits outside the
// governed matrix: it always has full access, never appears as a
// matrix key, and is the only role that may hold ModulePermisos.
const RoleAdministrador Role = "Administrador"

// Governed roles (closed set).
const (
	RoleDirector   Role = "Director"
	RoleCapitan    Role = "Capitan"
	RoleTeniente   Role = "Teniente"
	RoleSecretario Role = "Secretario"
	RoleTesorero   Role = "Tesorero"
	RoleAyudante   Role = "Ayudante"
	RoleBombero    Role = "Bombero"
)

// Category is a declared attribute on a profile. Classification is a
// catalog fact, never derived from the size or shape of a role's
// module set.
type Category string

// Profile categories.
const (
	CategoryAdministrative Category = "administrative"
	CategorySupport        Category = "support"
	CategoryField          Category = "field"
)

// Profile is the descriptive catalog entry for one governed role.
type Profile struct {
	Role        Role
	Name        string
	Description string
	Category    Category
}

// profileCatalog lists every governed role. RoleAdministrador is
// deliberately absent.
var profileCatalog = []Profile{
	{Role: RoleDirector, Name: "Director", Description: "Dirección de la compañía", Category: CategoryAdministrative},
	{Role: RoleCapitan, Name: "Capitán", Description: "Mando activo de la compañía", Category: CategoryAdministrative},
	{Role: RoleTeniente, Name: "Teniente", Description: "Oficial de mando activo", Category: CategoryAdministrative},
	{Role: RoleSecretario, Name: "Secretario", Description: "Secretaría y actas", Category: CategoryAdministrative},
	{Role: RoleTesorero, Name: "Tesorero", Description: "Tesorería y finanzas", Category: CategorySupport},
	{Role: RoleAyudante, Name: "Ayudante", Description: "Apoyo a la oficialidad", Category: CategorySupport},
	{Role: RoleBombero, Name: "Bombero", Description: "Voluntario de la compañía", Category: CategoryField},
}

var profileIndex = func() map[Role]Profile {
	idx := make(map[Role]Profile, len(profileCatalog))
	for _, p := range profileCatalog {
		idx[p.Role] = p
	}
	return idx
}()

// ProfileByRole looks up a governed role's profile.
// RoleAdministrador is not a catalog entry and yields INVALID_ROLE.
func ProfileByRole(r Role) (Profile, error) {
	p, ok := profileIndex[r]
	if !ok {
		return Profile{}, oops.In("access").
			Code("INVALID_ROLE").
			With("role", string(r)).
			New("unknown role")
	}
	return p, nil
}

// KnownRole reports whether r is a governed catalog role.
func KnownRole(r Role) bool {
	_, ok := profileIndex[r]
	return ok
}

// Roles returns every governed role in catalog order.
func Roles() []Role {
	out := make([]Role, len(profileCatalog))
	for i, p := range profileCatalog {
		out[i] = p.Role
	}
	return out
}

// Profiles returns a copy of the profile catalog.
func Profiles() []Profile {
	out := make([]Profile, len(profileCatalog))
	copy(out, profileCatalog)
	return out
}
