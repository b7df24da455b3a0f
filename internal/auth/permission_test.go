package auth

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Permission Catalog", func() {
	ginkgo.It("grants SALES exactly its nine tags", func() {
		gomega.Expect(PermissionsFor(RoleSales).Slice()).To(gomega.ConsistOf(
			PermViewClients, PermManageClients, PermViewContracts, PermCreateContracts,
			PermSignOwnContracts, PermUpdateOwnContracts, PermManageOwnContracts,
			PermViewOwnEvents, PermCreateOwnEvents,
		))
	})

	ginkgo.It("grants SUPPORT exactly its five tags", func() {
		gomega.Expect(PermissionsFor(RoleSupport).Slice()).To(gomega.ConsistOf(
			PermViewEvents, PermManageEvents, PermManageOwnEvents, PermViewClients, PermViewContracts,
		))
	})

	ginkgo.It("grants MANAGEMENT exactly its seven tags", func() {
		gomega.Expect(PermissionsFor(RoleManagement).Slice()).To(gomega.ConsistOf(
			PermViewAll, PermManageAll, PermManageUsers, PermManageContracts,
			PermManageEvents, PermViewReports, PermManagePermissions,
		))
	})

	ginkgo.It("returns the empty set for an unknown role", func() {
		gomega.Expect(PermissionsFor(Role("INTERN")).Len()).To(gomega.Equal(0))
		gomega.Expect(HasPermission(&Actor{Role: "INTERN"}, PermViewClients)).To(gomega.BeFalse())
	})

	ginkgo.It("does not leak the catalog through Slice", func() {
		tags := PermissionsFor(RoleSales).Slice()
		tags[0] = PermManageAll
		gomega.Expect(PermissionsFor(RoleSales).Has(PermManageAll)).To(gomega.BeFalse())
	})

	ginkgo.It("treats a nil actor as having nothing", func() {
		gomega.Expect(HasPermission(nil, PermViewClients)).To(gomega.BeFalse())
	})

	ginkgo.Describe("ParseRole", func() {
		ginkgo.It("accepts any casing", func() {
			role, err := ParseRole(" support ")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(role).To(gomega.Equal(RoleSupport))
		})

		ginkgo.It("rejects unknown departments", func() {
			_, err := ParseRole("finance")
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})
})
