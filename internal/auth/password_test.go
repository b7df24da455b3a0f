package auth

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("Password hashing", func() {
	ginkgo.It("verifies the original password and nothing else", func() {
		hash, err := HashPassword("s3cret!", bcrypt.MinCost)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(VerifyPassword(hash, "s3cret!")).To(gomega.BeTrue())
		gomega.Expect(VerifyPassword(hash, "S3cret!")).To(gomega.BeFalse())
	})

	ginkgo.It("salts every hash", func() {
		a, _ := HashPassword("same", bcrypt.MinCost)
		b, _ := HashPassword("same", bcrypt.MinCost)
		gomega.Expect(a).NotTo(gomega.Equal(b))
	})

	ginkgo.It("rejects an empty password", func() {
		_, err := HashPassword("", bcrypt.MinCost)
		gomega.Expect(err).To(gomega.MatchError(ErrEmptyPassword))
	})

	ginkgo.It("never verifies against an empty hash", func() {
		gomega.Expect(VerifyPassword("", "")).To(gomega.BeFalse())
	})

	ginkgo.It("falls back to the default cost when given an invalid one", func() {
		hash, err := HashPassword("pw", 99)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		cost, err := bcrypt.Cost([]byte(hash))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(cost).To(gomega.Equal(bcrypt.DefaultCost))
	})
})
