// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vigía Contributors

//go:build integration

package access_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/vigia/vigia/internal/access"
	"github.com/vigia/vigia/internal/kv"
)

var _ = Describe("Permission store lifecycle", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	// The same behavior must hold over every backend; the store treats
	// the backend purely as a byte container.
	backends := []struct {
		name string
		open func() kv.Backend
	}{
		{
			name: "memory",
			open: func() kv.Backend { return kv.NewMemory() },
		},
		{
			name: "file",
			open: func() kv.Backend {
				backend, err := kv.NewFile(filepath.Join(GinkgoT().TempDir(), "permissions.json"))
				Expect(err).NotTo(HaveOccurred())
				return backend
			},
		},
	}

	for _, b := range backends {
		b := b

		Context(fmt.Sprintf("over the %s backend", b.name), func() {
			var store *access.Store

			BeforeEach(func() {
				store = access.NewStore(b.open())
			})

			It("seeds defaults and keeps reloads stable", func() {
				first, err := store.Load(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(first.Equal(access.DefaultMatrix())).To(BeTrue())

				second, err := store.Load(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(second.Equal(first)).To(BeTrue())
			})

			It("persists an edit across a full mutate-read cycle", func() {
				err := store.UpdatePermissions(ctx, access.RoleAyudante,
					access.NewModuleSet(access.ModuleDashboard, access.ModuleReportes),
					access.RoleAdministrador)
				Expect(err).NotTo(HaveOccurred())

				allowed, err := store.CanAccess(ctx, access.RoleAyudante, access.ModuleReportes)
				Expect(err).NotTo(HaveOccurred())
				Expect(allowed).To(BeTrue())

				allowed, err = store.CanAccess(ctx, access.RoleAyudante, access.ModuleVideos)
				Expect(err).NotTo(HaveOccurred())
				Expect(allowed).To(BeFalse(), "modules outside the new set are revoked")
			})

			It("keeps system modules reachable through any edit", func() {
				err := store.UpdatePermissions(ctx, access.RoleBombero,
					access.NewModuleSet(access.ModuleVideos), access.RoleAdministrador)
				Expect(err).NotTo(HaveOccurred())

				for _, id := range access.SystemModuleIDs() {
					allowed, err := store.CanAccess(ctx, access.RoleBombero, id)
					Expect(err).NotTo(HaveOccurred())
					Expect(allowed).To(BeTrue(), "module %s", id)
				}
			})

			It("round-trips reset back to the defaults", func() {
				err := store.UpdatePermissions(ctx, access.RoleTesorero,
					access.NewModuleSet(access.ModuleDashboard), access.RoleAdministrador)
				Expect(err).NotTo(HaveOccurred())

				Expect(store.ResetToDefaults(ctx, access.RoleAdministrador)).To(Succeed())

				matrix, err := store.Load(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(matrix.Equal(access.DefaultMatrix())).To(BeTrue())
			})

			It("serves concurrent checks and edits without corruption", func() {
				const workers = 16
				var wg sync.WaitGroup
				errs := make(chan error, workers*2)

				for i := 0; i < workers; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						defer GinkgoRecover()
						_, err := store.CanAccess(ctx, access.RoleBombero, access.ModuleVideos)
						errs <- err
					}()

					wg.Add(1)
					go func(n int) {
						defer wg.Done()
						defer GinkgoRecover()
						set := access.NewModuleSet(access.ModuleVideos)
						if n%2 == 0 {
							set.Add(access.ModuleDashboard)
						}
						errs <- store.UpdatePermissions(ctx, access.RoleAyudante, set, access.RoleAdministrador)
					}(i)
				}
				wg.Wait()
				close(errs)

				for err := range errs {
					Expect(err).NotTo(HaveOccurred())
				}

				// Whatever interleaving won, the matrix still honors the
				// repair invariants.
				matrix, err := store.Load(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(matrix).To(HaveLen(len(access.Roles())))
				for _, role := range access.Roles() {
					Expect(matrix[role].Has(access.ModulePermisos)).To(BeFalse())
					for _, id := range access.SystemModuleIDs() {
						Expect(matrix[role].Has(id)).To(BeTrue())
					}
				}
			})

			It("round-trips a snapshot export and import", func() {
				err := store.UpdatePermissions(ctx, access.RoleSecretario,
					access.NewModuleSet(access.ModuleDashboard, access.ModuleReportes),
					access.RoleAdministrador)
				Expect(err).NotTo(HaveOccurred())

				data, err := store.ExportSnapshot(ctx)
				Expect(err).NotTo(HaveOccurred())

				fresh := access.NewStore(kv.NewMemory())
				Expect(fresh.ImportSnapshot(ctx, data, access.RoleAdministrador)).To(Succeed())

				want, err := store.Load(ctx)
				Expect(err).NotTo(HaveOccurred())
				got, err := fresh.Load(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Equal(want)).To(BeTrue())
			})
		})
	}
})
