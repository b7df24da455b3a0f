package auth

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/pkg/logger"
)

var _ = ginkgo.Describe("Policy", func() {
	var (
		ctx        = context.Background()
		policy     *Policy
		salesA     *Actor
		salesB     *Actor
		support    *Actor
		management *Actor
	)

	ginkgo.BeforeEach(func() {
		policy = NewPolicy(testLogger())
		salesA = &Actor{ID: 1, Role: RoleSales}
		salesB = &Actor{ID: 2, Role: RoleSales}
		support = &Actor{ID: 3, Role: RoleSupport}
		management = &Actor{ID: 4, Role: RoleManagement}
	})

	ginkgo.Describe("client ownership", func() {
		ginkgo.It("allows the owning salesperson", func() {
			// Given client C owned by salesperson A (commercial_id=1)
			// When A modifies C
			decision := policy.ModifyClient(ctx, salesA, 1)
			// Then the decision is allow
			gomega.Expect(decision.Allowed()).To(gomega.BeTrue())
		})

		ginkgo.It("denies another salesperson even though they hold manage_clients", func() {
			gomega.Expect(HasPermission(salesB, PermManageClients)).To(gomega.BeTrue())

			decision := policy.ModifyClient(ctx, salesB, 1)

			gomega.Expect(decision.Allowed()).To(gomega.BeFalse())
			gomega.Expect(decision.Permission).To(gomega.Equal(PermManageClients))
			gomega.Expect(internal.IsType(decision.Err(), internal.ErrorTypeForbidden)).To(gomega.BeTrue())
		})

		ginkgo.It("allows management", func() {
			gomega.Expect(policy.ModifyClient(ctx, management, 1).Allowed()).To(gomega.BeTrue())
		})

		ginkgo.It("denies support", func() {
			gomega.Expect(policy.ModifyClient(ctx, support, 1).Allowed()).To(gomega.BeFalse())
			gomega.Expect(policy.CreateClient(ctx, support).Allowed()).To(gomega.BeFalse())
			gomega.Expect(policy.ViewClients(ctx, support).Allowed()).To(gomega.BeTrue())
		})

		ginkgo.It("reserves reassignment for management", func() {
			gomega.Expect(policy.ReassignClient(ctx, salesA).Allowed()).To(gomega.BeFalse())
			gomega.Expect(policy.ReassignClient(ctx, management).Allowed()).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("contracts", func() {
		ginkgo.It("lets sales create only for their own clients", func() {
			gomega.Expect(policy.CreateContract(ctx, salesA, 1).Allowed()).To(gomega.BeTrue())
			gomega.Expect(policy.CreateContract(ctx, salesA, 2).Allowed()).To(gomega.BeFalse())
			gomega.Expect(policy.CreateContract(ctx, management, 2).Allowed()).To(gomega.BeTrue())
			gomega.Expect(policy.CreateContract(ctx, support, 2).Allowed()).To(gomega.BeFalse())
		})

		ginkgo.DescribeTable("modification by action",
			func(actor func() *Actor, action ContractAction, commercialID int64, allowed bool) {
				gomega.Expect(policy.ModifyContract(ctx, actor(), action, commercialID).Allowed()).To(gomega.Equal(allowed))
			},
			ginkgo.Entry("owner signs", func() *Actor { return salesA }, ContractSign, int64(1), true),
			ginkgo.Entry("non-owner signs", func() *Actor { return salesB }, ContractSign, int64(1), false),
			ginkgo.Entry("owner updates", func() *Actor { return salesA }, ContractUpdate, int64(1), true),
			ginkgo.Entry("owner records a payment", func() *Actor { return salesA }, ContractPay, int64(1), true),
			ginkgo.Entry("support signs", func() *Actor { return support }, ContractSign, int64(3), false),
			ginkgo.Entry("management deletes any", func() *Actor { return management }, ContractDelete, int64(1), true),
		)

		ginkgo.It("lets every role view contracts", func() {
			for _, actor := range []*Actor{salesA, support, management} {
				gomega.Expect(policy.ViewContracts(ctx, actor).Allowed()).To(gomega.BeTrue())
			}
		})
	})

	ginkgo.Describe("events", func() {
		ginkgo.It("lets sales create events only for their clients", func() {
			gomega.Expect(policy.CreateEvent(ctx, salesA, 1).Allowed()).To(gomega.BeTrue())
			gomega.Expect(policy.CreateEvent(ctx, salesB, 1).Allowed()).To(gomega.BeFalse())
			gomega.Expect(policy.CreateEvent(ctx, support, 1).Allowed()).To(gomega.BeFalse())
			gomega.Expect(policy.CreateEvent(ctx, management, 1).Allowed()).To(gomega.BeTrue())
		})

		ginkgo.It("lets support touch only assigned events", func() {
			assigned := support.ID
			other := int64(99)
			gomega.Expect(policy.AccessEvent(ctx, support, EventUpdate, &assigned).Allowed()).To(gomega.BeTrue())
			gomega.Expect(policy.AccessEvent(ctx, support, EventUpdate, &other).Allowed()).To(gomega.BeFalse())
			gomega.Expect(policy.AccessEvent(ctx, support, EventUpdate, nil).Allowed()).To(gomega.BeFalse())
		})

		ginkgo.It("lets management touch any event and assign support", func() {
			gomega.Expect(policy.AccessEvent(ctx, management, EventDelete, nil).Allowed()).To(gomega.BeTrue())
			gomega.Expect(policy.AssignSupport(ctx, management).Allowed()).To(gomega.BeTrue())
			gomega.Expect(policy.AssignSupport(ctx, support).Allowed()).To(gomega.BeFalse())
		})

		ginkgo.It("scopes event listings by role", func() {
			scope, d := policy.EventScope(ctx, management)
			gomega.Expect(d.Allowed()).To(gomega.BeTrue())
			gomega.Expect(scope.All).To(gomega.BeTrue())

			scope, d = policy.EventScope(ctx, support)
			gomega.Expect(d.Allowed()).To(gomega.BeTrue())
			gomega.Expect(scope).To(gomega.Equal(Scope{SupportID: support.ID}))

			scope, d = policy.EventScope(ctx, salesA)
			gomega.Expect(d.Allowed()).To(gomega.BeTrue())
			gomega.Expect(scope).To(gomega.Equal(Scope{CommercialID: salesA.ID}))
		})
	})

	ginkgo.Describe("users and roles", func() {
		ginkgo.It("reserves user management for management", func() {
			gomega.Expect(policy.ManageUsers(ctx, management).Allowed()).To(gomega.BeTrue())
			gomega.Expect(policy.ManageUsers(ctx, salesA).Allowed()).To(gomega.BeFalse())
		})

		ginkgo.It("forbids changing one's own role", func() {
			gomega.Expect(policy.ChangeRole(ctx, management, management.ID).Allowed()).To(gomega.BeFalse())
			gomega.Expect(policy.ChangeRole(ctx, management, salesA.ID).Allowed()).To(gomega.BeTrue())
			gomega.Expect(policy.ChangeRole(ctx, salesA, salesB.ID).Allowed()).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("reports", func() {
		ginkgo.It("gives management every report", func() {
			for _, r := range []Report{ReportContracts, ReportEvents, ReportUsers} {
				scope, d := policy.ReportScope(ctx, management, r)
				gomega.Expect(d.Allowed()).To(gomega.BeTrue())
				gomega.Expect(scope.All).To(gomega.BeTrue())
			}
		})

		ginkgo.It("scopes sales to their contracts and support to their events", func() {
			scope, d := policy.ReportScope(ctx, salesA, ReportContracts)
			gomega.Expect(d.Allowed()).To(gomega.BeTrue())
			gomega.Expect(scope.CommercialID).To(gomega.Equal(salesA.ID))

			scope, d = policy.ReportScope(ctx, support, ReportEvents)
			gomega.Expect(d.Allowed()).To(gomega.BeTrue())
			gomega.Expect(scope.SupportID).To(gomega.Equal(support.ID))

			_, d = policy.ReportScope(ctx, salesA, ReportUsers)
			gomega.Expect(d.Allowed()).To(gomega.BeFalse())
		})
	})
})

var _ = ginkgo.Describe("Policy.ViewEvent", func() {
	ginkgo.It("lets a salesperson read events of their own clients only", func() {
		ctx := context.Background()
		policy := NewPolicy(testLogger())
		sales := &Actor{ID: 1, Role: RoleSales}
		gomega.Expect(policy.ViewEvent(ctx, sales, nil, 1).Allowed()).To(gomega.BeTrue())
		gomega.Expect(policy.ViewEvent(ctx, sales, nil, 2).Allowed()).To(gomega.BeFalse())
		gomega.Expect(policy.AccessEvent(ctx, sales, EventUpdate, nil).Allowed()).To(gomega.BeFalse())
	})
})

var _ = ginkgo.Describe("Policy denial log", func() {
	ginkgo.It("carries the request fields of the caller's context", func() {
		var buf bytes.Buffer
		policy := NewPolicy(slog.New(logger.NewContextHandler(slog.NewTextHandler(&buf, nil))))
		ctx := logger.With(context.Background(), "request_id", "req-7")

		gomega.Expect(policy.ManageUsers(ctx, &Actor{ID: 9, Role: RoleSupport}).Allowed()).To(gomega.BeFalse())
		gomega.Expect(buf.String()).To(gomega.ContainSubstring("access denied"))
		gomega.Expect(buf.String()).To(gomega.ContainSubstring("request_id=req-7"))
		gomega.Expect(buf.String()).To(gomega.ContainSubstring("user_id=9"))
	})
})
