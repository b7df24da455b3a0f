package auth

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/core/events"
)

var _ = ginkgo.Describe("Auth Service", func() {
	var (
		ctx       context.Context
		now       time.Time
		clock     func() time.Time
		repo      *mockAccountRepository
		store     TokenStore
		publisher *recordingPublisher
		service   *Service
	)

	build := func() *Service {
		tokens := NewTokenService("test-secret", time.Hour, testLogger(), WithClock(clock))
		guard := NewGuard(NewMemoryAttemptStore(), 5, 300*time.Second, testLogger(), WithGuardClock(clock))
		return NewService(repo, tokens, guard, store, publisher, testLogger())
	}

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
		clock = func() time.Time { return now }
		repo = newMockAccountRepository()
		store = &memoryTokenStore{}
		publisher = &recordingPublisher{}
		service = build()
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("issues and persists a token for valid credentials", func() {
			// Given a sales user with a known password
			// When they log in
			session, err := service.Login(ctx, "Sales@Epic.test", "correct_password")

			// Then a session is returned and stored
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(session.Actor.Role).To(gomega.Equal(RoleSales))
			gomega.Expect(session.ExpiresAt).To(gomega.Equal(now.Add(time.Hour)))

			saved, ok, _ := store.Load()
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(saved).To(gomega.Equal(session.Token))
			gomega.Expect(publisher.types()).To(gomega.ContainElement(events.EventTypeLoginSucceeded))
		})

		ginkgo.It("returns the same error for an unknown email and a wrong password", func() {
			_, unknownErr := service.Login(ctx, "ghost@epic.test", "whatever")
			_, wrongErr := service.Login(ctx, "sales@epic.test", "wrong")

			gomega.Expect(unknownErr).To(gomega.MatchError(internal.ErrInvalidCredentials))
			gomega.Expect(wrongErr).To(gomega.MatchError(internal.ErrInvalidCredentials))
			gomega.Expect(unknownErr.Error()).To(gomega.Equal(wrongErr.Error()))
		})

		ginkgo.It("rejects the sixth attempt at the throttle before any credential lookup", func() {
			// Given five failed logins for x@y.com
			for i := 0; i < 5; i++ {
				_, err := service.Login(ctx, "x@y.com", "bad")
				gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			}
			lookups := repo.lookupCount()

			// When a sixth attempt arrives within the window
			_, err := service.Login(ctx, "x@y.com", "bad")

			// Then it is locked out and the repository was never consulted
			gomega.Expect(internal.IsType(err, internal.ErrorTypeLocked)).To(gomega.BeTrue())
			gomega.Expect(repo.lookupCount()).To(gomega.Equal(lookups))
			gomega.Expect(publisher.types()).To(gomega.ContainElement(events.EventTypeLockedOut))

			appErr, _ := internal.IsAppError(err)
			details, ok := appErr.Details.(internal.LockoutDetails)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(details.RetryAfterSeconds).To(gomega.Equal(300))
		})

		ginkgo.It("locks out even the correct password until the window passes", func() {
			for i := 0; i < 5; i++ {
				_, _ = service.Login(ctx, "sales@epic.test", "bad")
			}
			_, err := service.Login(ctx, "sales@epic.test", "correct_password")
			gomega.Expect(internal.IsType(err, internal.ErrorTypeLocked)).To(gomega.BeTrue())

			now = now.Add(301 * time.Second)
			_, err = service.Login(ctx, "sales@epic.test", "correct_password")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("surfaces repository failures as internal errors and does not count them", func() {
			repo.errorToReturn = errors.New("connection refused")
			_, err := service.Login(ctx, "sales@epic.test", "correct_password")
			gomega.Expect(internal.IsType(err, internal.ErrorTypeInternal)).To(gomega.BeTrue())
		})

		ginkgo.It("requires both fields", func() {
			_, err := service.Login(ctx, "", "pw")
			gomega.Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("Restore", func() {
		ginkgo.It("resumes the identity from the token file in a new process", func() {
			// Given a sales user logs in and the token is written to disk
			path := filepath.Join(ginkgo.GinkgoT().TempDir(), ".crm_token")
			store = NewFileTokenStore(path)
			first := build()
			session, err := first.Login(ctx, "sales@epic.test", "correct_password")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			// When a fresh service starts later within the TTL
			now = now.Add(30 * time.Minute)
			store = NewFileTokenStore(path)
			lookupsBefore := repo.lookupCount()
			restored, err := build().Restore(ctx)

			// Then the same actor is restored without a credential prompt
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(restored.Actor.ID).To(gomega.Equal(session.Actor.ID))
			gomega.Expect(restored.Actor.Email).To(gomega.Equal("sales@epic.test"))
			gomega.Expect(repo.lookupCount()).To(gomega.Equal(lookupsBefore + 1))
		})

		ginkgo.It("reports no session when nothing is stored", func() {
			_, err := service.Restore(ctx)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrNoSession))
		})

		ginkgo.It("degrades an expired token to no session", func() {
			_, err := service.Login(ctx, "sales@epic.test", "correct_password")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			now = now.Add(2 * time.Hour)
			_, err = service.Restore(ctx)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrNoSession))
		})

		ginkgo.It("clears the token when the actor no longer exists", func() {
			_, err := service.Login(ctx, "support@epic.test", "correct_password")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			repo.remove("support@epic.test")

			_, err = service.Restore(ctx)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrNoSession))
			_, ok, _ := store.Load()
			gomega.Expect(ok).To(gomega.BeFalse())
		})

		ginkgo.It("picks up a role change made after the token was issued", func() {
			_, err := service.Login(ctx, "sales@epic.test", "correct_password")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			repo.byEmail["sales@epic.test"].Role = RoleSupport

			restored, err := service.Restore(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(restored.Actor.Role).To(gomega.Equal(RoleSupport))
		})
	})

	ginkgo.Describe("Logout", func() {
		ginkgo.It("clears the stored token", func() {
			session, err := service.Login(ctx, "manager@epic.test", "correct_password")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(service.Logout(ctx, session.Actor)).To(gomega.Succeed())
			_, err = service.Restore(ctx)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrNoSession))
		})
	})

	ginkgo.Describe("ActorFromToken", func() {
		ginkgo.It("resolves a bearer token to its actor", func() {
			session, err := service.Login(ctx, "manager@epic.test", "correct_password")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			actor, err := service.ActorFromToken(ctx, session.Token)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(actor.Role).To(gomega.Equal(RoleManagement))
		})

		ginkgo.It("distinguishes expired from invalid tokens", func() {
			session, _ := service.Login(ctx, "manager@epic.test", "correct_password")
			now = now.Add(2 * time.Hour)

			_, err := service.ActorFromToken(ctx, session.Token)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTokenExpired))

			_, err = service.ActorFromToken(ctx, "garbage")
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})
	})
})
