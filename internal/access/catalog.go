// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

// Package access owns the module-permission model for the intranet:
// the module and profile catalogs, the default permission matrix, and
// the Store that reconciles and persists the effective matrix.
//
// Module and role identifiers are stable wire strings; they are
// persisted verbatim and must never be renamed without a migration.
package access

import (
	"sort"

	"github.com/samber/oops"
)

// ModuleID identifies one addressable feature area of the intranet.
type ModuleID string

// Module identifiers (closed set).
const (
	ModuleDashboard      ModuleID = "dashboard"
	ModulePersonal       ModuleID = "personal"
	ModulePersonalView   ModuleID = "personal-view"
	ModuleCitaciones     ModuleID = "citaciones"
	ModuleCitacionesView ModuleID = "citaciones-view"
	ModuleMaquinas       ModuleID = "maquinas"
	ModuleMaquinasView   ModuleID = "maquinas-view"
	ModuleVideos         ModuleID = "videos"
	ModuleReportes       ModuleID = "reportes"
	ModuleAdministracion ModuleID = "administracion"
	ModuleMiPerfil       ModuleID = "mi-perfil"
	ModulePermisos       ModuleID = "permisos"
)

// Module describes one catalog entry. Name, Description, Icon and
// Category are display metadata with no behavioral effect.
type Module struct {
	ID          ModuleID
	Name        string
	Description string
	Icon        string
	Category    string

	// System modules are reachable by every role and can never be
	// revoked, not even by an explicit administrator edit.
	System bool

	// ReadOnly marks a view-only module that mirrors Parent.
	// Descriptive only; the Store attaches no semantics to it.
	ReadOnly bool
	Parent   ModuleID
}

// moduleCatalog is the closed registry of every module. Order here is
// the canonical display order used by ModuleIDs.
var moduleCatalog = []Module{
	{ID: ModuleDashboard, Name: "Panel Principal", Description: "Resumen general de la compañía", Icon: "home", Category: "general"},
	{ID: ModulePersonal, Name: "Personal", Description: "Gestión de fichas del personal", Icon: "users", Category: "gestion"},
	{ID: ModulePersonalView, Name: "Personal (consulta)", Description: "Consulta de fichas del personal", Icon: "users", Category: "consulta", ReadOnly: true, Parent: ModulePersonal},
	{ID: ModuleCitaciones, Name: "Citaciones", Description: "Creación y gestión de citaciones", Icon: "bell", Category: "gestion"},
	{ID: ModuleCitacionesView, Name: "Citaciones (consulta)", Description: "Consulta de citaciones vigentes", Icon: "bell", Category: "consulta", System: true, ReadOnly: true, Parent: ModuleCitaciones},
	{ID: ModuleMaquinas, Name: "Material Mayor", Description: "Gestión del material mayor", Icon: "truck", Category: "gestion"},
	{ID: ModuleMaquinasView, Name: "Material Mayor (consulta)", Description: "Consulta del estado de las máquinas", Icon: "truck", Category: "consulta", ReadOnly: true, Parent: ModuleMaquinas},
	{ID: ModuleVideos, Name: "Videos", Description: "Material audiovisual de la compañía", Icon: "film", Category: "general"},
	{ID: ModuleReportes, Name: "Reportes", Description: "Reportes e informes", Icon: "chart", Category: "gestion"},
	{ID: ModuleAdministracion, Name: "Administración", Description: "Administración de la compañía", Icon: "briefcase", Category: "gestion"},
	{ID: ModuleMiPerfil, Name: "Mi Perfil", Description: "Ficha personal del voluntario", Icon: "user", Category: "general", System: true},
	{ID: ModulePermisos, Name: "Permisos", Description: "Matriz de permisos por cargo", Icon: "lock", Category: "sistema"},
}

// moduleIndex is built once from moduleCatalog.
var moduleIndex = func() map[ModuleID]Module {
	idx := make(map[ModuleID]Module, len(moduleCatalog))
	for _, m := range moduleCatalog {
		idx[m.ID] = m
	}
	return idx
}()

// ModuleByID looks up a module by id.
// Returns an INVALID_MODULE error for ids outside the catalog; an
// unknown id here is a configuration bug, not a missing grant.
func ModuleByID(id ModuleID) (Module, error) {
	m, ok := moduleIndex[id]
	if !ok {
		return Module{}, oops.In("access").
			Code("INVALID_MODULE").
			With("module", string(id)).
			New("unknown module id")
	}
	return m, nil
}

// KnownModule reports whether id is in the catalog.
func KnownModule(id ModuleID) bool {
	_, ok := moduleIndex[id]
	return ok
}

// ModuleIDs returns every module id in canonical catalog order.
func ModuleIDs() []ModuleID {
	ids := make([]ModuleID, len(moduleCatalog))
	for i, m := range moduleCatalog {
		ids[i] = m.ID
	}
	return ids
}

// Modules returns a copy of the full catalog.
func Modules() []Module {
	out := make([]Module, len(moduleCatalog))
	copy(out, moduleCatalog)
	return out
}

// SystemModuleIDs returns the ids of modules flagged as system
// modules, sorted for deterministic iteration.
func SystemModuleIDs() []ModuleID {
	var ids []ModuleID
	for _, m := range moduleCatalog {
		if m.System {
			ids = append(ids, m.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
