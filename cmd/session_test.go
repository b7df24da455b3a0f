package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/epic-events-crm/internal"
)

var _ = Describe("interactiveLogin", func() {
	var (
		deps *Dependencies
		ctx  context.Context
	)

	BeforeEach(func() {
		deps = newSeededDeps()
		ctx = cliContext(context.Background())
	})

	It("logs in with credentials read from input", func() {
		p := newPrompter(strings.NewReader("sales@epicevents.test\npassword123\n"), io.Discard)
		session, err := interactiveLogin(ctx, deps.Auth, p, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(session.Actor.Email).To(Equal("sales@epicevents.test"))
		Expect(session.Token).NotTo(BeEmpty())
	})

	It("gives non-interactive input a single attempt", func() {
		p := newPrompter(strings.NewReader("wrong\npassword123\n"), io.Discard)
		_, err := interactiveLogin(ctx, deps.Auth, p, "sales@epicevents.test")
		Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(BeTrue())
	})

	It("refuses a locked identity before asking for the password", func() {
		for i := 0; i < 5; i++ {
			_, _ = deps.Auth.Login(ctx, "support@epicevents.test", "nope")
		}
		// Empty input: reaching the password prompt would fail with a read error.
		p := newPrompter(strings.NewReader(""), io.Discard)
		_, err := interactiveLogin(ctx, deps.Auth, p, "support@epicevents.test")
		Expect(internal.IsType(err, internal.ErrorTypeLocked)).To(BeTrue())
	})
})

var _ = Describe("describe", func() {
	It("lists field errors under a validation failure", func() {
		err := internal.NewValidationFieldError("email", "email is invalid", internal.ErrCodeValidationFailed)
		out := describe(err)
		Expect(out).To(HavePrefix("Error: "))
		Expect(out).To(ContainSubstring("  - email: email is invalid"))
	})

	It("adds the reason to a permission denial", func() {
		out := describe(internal.NewPermissionDeniedError("manage_users", "only management can manage users"))
		Expect(out).To(ContainSubstring("(only management can manage users)"))
	})

	It("prints plain errors as they are", func() {
		Expect(describe(fmt.Errorf("boom"))).To(Equal("Error: boom"))
	})
})

var _ = Describe("loadConfig", func() {
	BeforeEach(func() {
		GinkgoT().Setenv("APP_ENV", "")
		GinkgoT().Setenv("DOCKER_ENV", "")
	})

	It("layers environment variables over config.yml over defaults", func() {
		dir := GinkgoT().TempDir()
		yml := "database:\n  driver: sqlite\nthrottle:\n  max_login_attempts: 3\n  lockout_duration: 120\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600)).To(Succeed())
		GinkgoT().Setenv("LOCKOUT_DURATION", "60")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Driver).To(Equal("sqlite"))
		Expect(cfg.Throttle.MaxLoginAttempts).To(Equal(3))
		Expect(cfg.Throttle.LockoutDuration).To(Equal(60))
		Expect(cfg.Security.BCryptCost).To(Equal(12))
		Expect(cfg.Throttle.Store).To(Equal("memory"))
	})

	It("works without a config file", func() {
		cfg, err := loadConfig(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Throttle.MaxLoginAttempts).To(Equal(5))
		Expect(cfg.Throttle.LockoutDuration).To(Equal(300))
	})

	It("rejects an invalid value", func() {
		GinkgoT().Setenv("THROTTLE_STORE", "memcached")
		_, err := loadConfig(GinkgoT().TempDir())
		Expect(err).To(MatchError(ContainSubstring("unsupported attempt store")))
	})
})
