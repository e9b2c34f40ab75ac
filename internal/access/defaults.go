// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

package access

// Module groups define reusable grants.
// Roles compose these groups rather than inheriting.

var memberModules = []ModuleID{
	// Every volunteer sees duty notices, media and their own file.
	ModuleCitacionesView,
	ModuleVideos,
	ModuleMiPerfil,
}

var officeModules = []ModuleID{
	// Desk work: dashboard plus read access to the roster and fleet.
	ModuleDashboard,
	ModulePersonalView,
	ModuleMaquinasView,
}

var commandModules = []ModuleID{
	// Officers manage the roster and issue citaciones.
	ModulePersonal,
	ModuleCitaciones,
}

// DefaultMatrix returns the seed configuration: the fallback entry for
// every governed role. Each call returns a fresh deep copy so callers
// can never mutate the seed through a shared reference.
func DefaultMatrix() Matrix {
	return Matrix{
		RoleDirector:   NewModuleSet(compose(memberModules, officeModules, commandModules, []ModuleID{ModuleReportes, ModuleAdministracion})...),
		RoleCapitan:    NewModuleSet(compose(memberModules, officeModules, commandModules, []ModuleID{ModuleMaquinas, ModuleReportes})...),
		RoleTeniente:   NewModuleSet(compose(memberModules, officeModules, []ModuleID{ModulePersonal})...),
		RoleSecretario: NewModuleSet(compose(memberModules, []ModuleID{ModuleDashboard, ModulePersonalView}, commandModules, []ModuleID{ModuleReportes, ModuleAdministracion})...),
		RoleTesorero:   NewModuleSet(compose(memberModules, officeModules, []ModuleID{ModuleReportes, ModuleAdministracion})...),
		RoleAyudante:   NewModuleSet(compose(memberModules, []ModuleID{ModuleDashboard, ModuleMaquinasView})...),
		RoleBombero:    NewModuleSet(memberModules...),
	}
}

// compose merges multiple module id slices into one.
func compose(groups ...[]ModuleID) []ModuleID {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	result := make([]ModuleID, 0, total)
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}
