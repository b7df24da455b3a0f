package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("TokenService", func() {
	var (
		now     time.Time
		service *TokenService
		actor   *Actor
	)

	ginkgo.BeforeEach(func() {
		now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
		service = NewTokenService("test-secret", time.Hour, testLogger(), WithClock(func() time.Time { return now }))
		actor = &Actor{ID: 7, Email: "sales@epic.test", Role: RoleSales}
	})

	ginkgo.It("round-trips the actor identity", func() {
		token, expiresAt, err := service.Issue(actor)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(expiresAt).To(gomega.Equal(now.Add(time.Hour)))

		claims, ok := service.Validate(token)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(claims.Subject).To(gomega.Equal(actor.Email))
		gomega.Expect(claims.UserID).To(gomega.Equal(actor.ID))
		gomega.Expect(claims.Role).To(gomega.Equal(RoleSales))
	})

	ginkgo.It("rejects the token once the clock passes its expiry", func() {
		token, _, err := service.Issue(actor)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		now = now.Add(time.Hour + time.Second)

		_, ok := service.Validate(token)
		gomega.Expect(ok).To(gomega.BeFalse())
		_, err = service.Parse(token)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
	})

	ginkgo.It("rejects a token signed with another key", func() {
		other := NewTokenService("other-secret", time.Hour, testLogger(), WithClock(func() time.Time { return now }))
		token, _, err := other.Issue(actor)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = service.Parse(token)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenSignature))
	})

	ginkgo.It("rejects garbage", func() {
		_, err := service.Parse("not.a.token")
		gomega.Expect(err).To(gomega.MatchError(ErrTokenMalformed))
		_, ok := service.Validate("")
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("rejects a token missing user_id", func() {
		claims := Claims{
			Role: RoleSales,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "sales@epic.test",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = service.Parse(token)
		gomega.Expect(err).To(gomega.MatchError(ErrTokenClaims))
	})

	ginkgo.It("rejects a token with the none algorithm", func() {
		claims := Claims{
			Role:   RoleManagement,
			UserID: 1,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "manager@epic.test",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, ok := service.Validate(token)
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("produces a three-part compact token", func() {
		token, _, err := service.Issue(actor)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(strings.Count(token, ".")).To(gomega.Equal(2))
	})
})
