package cmd

import (
	"bytes"
	"context"
	"io"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	clientDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/client"
	contractDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/contract"
	eventDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/event"
	userDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/user"
)

var _ = Describe("seed", func() {
	var (
		gdb  *gorm.DB
		opts seedOptions
	)

	count := func(model interface{}) int64 {
		var n int64
		Expect(gdb.Model(model).Count(&n).Error).To(Succeed())
		return n
	}

	BeforeEach(func() {
		var err error
		gdb, err = initDB(testConfig().Database)
		Expect(err).NotTo(HaveOccurred())
		Expect(autoMigrate(gdb)).To(Succeed())
		DeferCleanup(func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
		opts = seedOptions{Password: "password123", BCryptCost: 4, Now: time.Now()}
	})

	It("creates employees of every department with related records", func() {
		var out bytes.Buffer
		Expect(seed(context.Background(), gdb, opts, &out)).To(Succeed())

		Expect(count(&userDatamodel.User{})).To(Equal(int64(5)))
		Expect(count(&clientDatamodel.Client{})).To(Equal(int64(3)))
		Expect(count(&contractDatamodel.Contract{})).To(Equal(int64(3)))
		Expect(count(&eventDatamodel.Event{})).To(Equal(int64(2)))
		Expect(out.String()).To(ContainSubstring("Seeded MANAGEMENT user: manager@epicevents.test"))

		var departments []string
		Expect(gdb.Model(&userDatamodel.User{}).Distinct().Pluck("department", &departments).Error).To(Succeed())
		Expect(departments).To(ConsistOf("MANAGEMENT", "SALES", "SUPPORT"))
	})

	It("is safe to run twice", func() {
		Expect(seed(context.Background(), gdb, opts, io.Discard)).To(Succeed())
		var out bytes.Buffer
		Expect(seed(context.Background(), gdb, opts, &out)).To(Succeed())

		Expect(count(&userDatamodel.User{})).To(Equal(int64(5)))
		Expect(count(&clientDatamodel.Client{})).To(Equal(int64(3)))
		Expect(count(&contractDatamodel.Contract{})).To(Equal(int64(3)))
		Expect(out.String()).To(ContainSubstring("already exists"))
		Expect(out.String()).To(ContainSubstring("skipping contracts and events"))
	})

	It("replaces existing data when clearing", func() {
		Expect(seed(context.Background(), gdb, opts, io.Discard)).To(Succeed())
		opts.Clear = true
		var out bytes.Buffer
		Expect(seed(context.Background(), gdb, opts, &out)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("Cleared existing data"))
		Expect(count(&userDatamodel.User{})).To(Equal(int64(5)))
		Expect(count(&eventDatamodel.Event{})).To(Equal(int64(2)))
	})
})
