package auth

import (
	"context"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Guard", func() {
	const identity = "x@y.com"

	var (
		ctx   context.Context
		now   time.Time
		store *MemoryAttemptStore
		guard *Guard
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
		store = NewMemoryAttemptStore()
		guard = NewGuard(store, 5, 300*time.Second, testLogger(), WithGuardClock(func() time.Time { return now }))
	})

	fail := func(n int) ThrottleStatus {
		var status ThrottleStatus
		for i := 0; i < n; i++ {
			var err error
			status, err = guard.RecordFailure(ctx, identity)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		}
		return status
	}

	ginkgo.It("allows an identity with no record", func() {
		status, err := guard.Check(ctx, identity)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(status.Allowed).To(gomega.BeTrue())
	})

	ginkgo.It("stays open below the limit", func() {
		fail(4)
		status, err := guard.Check(ctx, identity)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(status.Allowed).To(gomega.BeTrue())
		gomega.Expect(status.Attempts).To(gomega.Equal(4))
	})

	ginkgo.It("locks after exactly max_attempts failures", func() {
		last := fail(5)
		gomega.Expect(last.Allowed).To(gomega.BeFalse())
		gomega.Expect(last.LockedUntil).To(gomega.Equal(now.Add(300 * time.Second)))

		status, err := guard.Check(ctx, identity)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(status.Allowed).To(gomega.BeFalse())
		gomega.Expect(status.RetryAfter).To(gomega.Equal(300 * time.Second))

		rec, ok, _ := store.Get(ctx, identity)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(rec.Count).To(gomega.Equal(5))
		gomega.Expect(rec.LockedUntil).NotTo(gomega.BeNil())
	})

	ginkgo.It("reopens and clears the record once the lockout elapses", func() {
		fail(5)
		now = now.Add(300 * time.Second)

		status, err := guard.Check(ctx, identity)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(status.Allowed).To(gomega.BeTrue())

		_, ok, _ := store.Get(ctx, identity)
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("restarts counting from one after a success", func() {
		fail(3)
		gomega.Expect(guard.RecordSuccess(ctx, identity)).To(gomega.Succeed())

		status := fail(1)
		gomega.Expect(status.Attempts).To(gomega.Equal(1))
	})

	ginkgo.It("tracks identities independently", func() {
		fail(5)
		status, err := guard.Check(ctx, "other@y.com")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(status.Allowed).To(gomega.BeTrue())
	})

	ginkgo.It("falls back to defaults for non-positive limits", func() {
		g := NewGuard(store, 0, 0, testLogger())
		gomega.Expect(g.MaxAttempts()).To(gomega.Equal(5))
	})
})
