package auth

import (
	"os"
	"path/filepath"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("FileTokenStore", func() {
	var (
		path  string
		store *FileTokenStore
	)

	ginkgo.BeforeEach(func() {
		path = filepath.Join(ginkgo.GinkgoT().TempDir(), ".crm_token")
		store = NewFileTokenStore(path)
	})

	ginkgo.It("reports no token before anything is saved", func() {
		token, ok, err := store.Load()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeFalse())
		gomega.Expect(token).To(gomega.BeEmpty())
	})

	ginkgo.It("saves the token readable only by its owner", func() {
		gomega.Expect(store.Save("abc.def.ghi")).To(gomega.Succeed())

		info, err := os.Stat(path)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(info.Mode().Perm()).To(gomega.Equal(os.FileMode(0o600)))

		token, ok, err := store.Load()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(token).To(gomega.Equal("abc.def.ghi"))
	})

	ginkgo.It("trims surrounding whitespace and treats a blank file as empty", func() {
		gomega.Expect(os.WriteFile(path, []byte("  tok\n"), 0o600)).To(gomega.Succeed())
		token, ok, _ := store.Load()
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(token).To(gomega.Equal("tok"))

		gomega.Expect(os.WriteFile(path, []byte("\n"), 0o600)).To(gomega.Succeed())
		_, ok, _ = store.Load()
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("clears the token and tolerates a missing file", func() {
		gomega.Expect(store.Save("tok")).To(gomega.Succeed())
		gomega.Expect(store.Clear()).To(gomega.Succeed())
		_, err := os.Stat(path)
		gomega.Expect(os.IsNotExist(err)).To(gomega.BeTrue())
		gomega.Expect(store.Clear()).To(gomega.Succeed())
	})
})
