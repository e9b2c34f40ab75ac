// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package access

// Role-classification predicates consumed by routing and menu code.
// Classification reads the declared profile category, never the shape
// of a role's module set; a default-matrix change cannot silently
// reclassify a role.

// IsAdministrativeRole reports whether role runs the company's desk
// work. True for RoleAdministrador and for catalog roles declared
// CategoryAdministrative.
func IsAdministrativeRole(role Role) bool {
	if role == RoleAdministrador {
		return true
	}
	p, err := ProfileByRole(role)
	if err != nil {
		return false
	}
	return p.Category == CategoryAdministrative
}

// IsFieldRole reports whether role is a regular volunteer with the
// limited field module set.
func IsFieldRole(role Role) bool {
	p, err := ProfileByRole(role)
	if err != nil {
		return false
	}
	return p.Category == CategoryField
}

// DefaultLandingModule returns the module a fresh session for role
// should land on.
func DefaultLandingModule(role Role) ModuleID {
	if role == RoleAdministrador {
		return ModulePermisos
	}
	p, err := ProfileByRole(role)
	if err != nil {
		return ModuleMiPerfil
	}
	switch p.Category {
	case CategoryAdministrative:
		return ModuleDashboard
	case CategoryField:
		return ModuleCitacionesView
	default:
		return ModuleMiPerfil
	}
}
