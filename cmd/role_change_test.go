package cmd

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/event"
	"github.com/frahmantamala/epic-events-crm/internal/user"
)

var _ = Describe("changing an employee's department", func() {
	var (
		deps    *Dependencies
		ctx     context.Context
		manager *auth.Actor
	)

	actorFor := func(email string) *auth.Actor {
		session, err := deps.Auth.Login(ctx, email, "password123")
		Expect(err).NotTo(HaveOccurred())
		return session.Actor
	}

	BeforeEach(func() {
		deps = newSeededDeps()
		ctx = cliContext(context.Background())
		manager = actorFor("manager@epicevents.test")
	})

	It("hands the events of a former support agent back to the unassigned pool", func() {
		support := actorFor("support@epicevents.test")
		assigned, err := deps.Events.List(ctx, manager, event.ListOptions{Filter: event.Filter{SupportID: support.ID}})
		Expect(err).NotTo(HaveOccurred())
		Expect(assigned).To(HaveLen(1))

		moved, err := deps.Users.ChangeRole(ctx, manager, support.ID, user.ChangeRoleDTO{Department: "SALES"})
		Expect(err).NotTo(HaveOccurred())
		Expect(moved.Role).To(Equal(auth.RoleSales))

		assigned, err = deps.Events.List(ctx, manager, event.ListOptions{Filter: event.Filter{SupportID: support.ID}})
		Expect(err).NotTo(HaveOccurred())
		Expect(assigned).To(BeEmpty())

		unassigned, err := deps.Events.List(ctx, manager, event.ListOptions{Filter: event.Filter{WithoutSupport: true}})
		Expect(err).NotTo(HaveOccurred())
		Expect(unassigned).To(HaveLen(2))
	})

	It("refuses to move a salesperson who still owns clients", func() {
		sales := actorFor("sales@epicevents.test")
		_, err := deps.Users.ChangeRole(ctx, manager, sales.ID, user.ChangeRoleDTO{Department: "SUPPORT"})
		Expect(internal.IsType(err, internal.ErrorTypeConflict)).To(BeTrue())

		still, err := deps.Users.Get(ctx, manager, sales.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(still.Role).To(Equal(auth.RoleSales))
	})
})
