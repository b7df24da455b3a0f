package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/epic-events-crm/internal/auth"
	clientDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/client"
	contractDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/contract"
	eventDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/event"
	userDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/user"
	reportPostgres "github.com/frahmantamala/epic-events-crm/internal/report/postgres"
)

func TestReportPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Report Postgres Suite")
}

var _ = Describe("ReportRepository", func() {
	var (
		db   *gorm.DB
		repo *reportPostgres.ReportRepository
		ctx  context.Context
		now  time.Time
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&userDatamodel.User{}, &clientDatamodel.Client{}, &contractDatamodel.Contract{}, &eventDatamodel.Event{})).To(Succeed())
		repo = reportPostgres.NewReportRepository(sqlx.NewDb(sqlDB, "sqlite3"))
		ctx = context.Background()
		now = time.Now().UTC().Truncate(time.Second)
	})

	It("summarizes contracts, optionally for one salesperson", func() {
		for _, c := range []contractDatamodel.Contract{
			{TotalAmount: decimal.NewFromInt(100), RemainingAmount: decimal.Zero, IsSigned: true, ClientID: 1, CommercialID: 1},
			{TotalAmount: decimal.NewFromInt(300), RemainingAmount: decimal.NewFromInt(300), IsSigned: false, ClientID: 1, CommercialID: 1},
			{TotalAmount: decimal.NewFromInt(600), RemainingAmount: decimal.NewFromInt(200), IsSigned: true, ClientID: 2, CommercialID: 2},
		} {
			c := c
			Expect(db.Create(&c).Error).To(Succeed())
		}

		all, err := repo.ContractSummary(ctx, auth.Scope{All: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(all.Total).To(Equal(int64(3)))
		Expect(all.Signed).To(Equal(int64(2)))
		Expect(all.TotalAmount.Equal(decimal.NewFromInt(1000))).To(BeTrue())
		Expect(all.RemainingAmount.Equal(decimal.NewFromInt(500))).To(BeTrue())

		mine, err := repo.ContractSummary(ctx, auth.Scope{CommercialID: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(mine.Total).To(Equal(int64(2)))
		Expect(mine.Signed).To(Equal(int64(1)))
	})

	It("returns zeros on an empty table", func() {
		summary, err := repo.ContractSummary(ctx, auth.Scope{All: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Total).To(BeZero())
		Expect(summary.TotalAmount.IsZero()).To(BeTrue())
	})

	It("buckets events by support and timing", func() {
		sam := int64(3)
		for _, e := range []eventDatamodel.Event{
			{Name: "future", StartDate: now.Add(48 * time.Hour), EndDate: now.Add(50 * time.Hour), SupportID: &sam},
			{Name: "now", StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour)},
			{Name: "past", StartDate: now.Add(-50 * time.Hour), EndDate: now.Add(-48 * time.Hour), SupportID: &sam},
		} {
			e := e
			e.Location, e.ClientID, e.ContractID = "Paris", 1, 1
			Expect(db.Create(&e).Error).To(Succeed())
		}

		all, err := repo.EventSummary(ctx, auth.Scope{All: true}, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(all.Total).To(Equal(int64(3)))
		Expect(all.WithoutSupport).To(Equal(int64(1)))
		Expect(all.Upcoming).To(Equal(int64(1)))
		Expect(all.Past).To(Equal(int64(1)))

		assigned, err := repo.EventSummary(ctx, auth.Scope{SupportID: sam}, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(assigned.Total).To(Equal(int64(2)))
	})

	It("counts users grouped by department", func() {
		for i, d := range []string{"SALES", "SALES", "SUPPORT"} {
			u := userDatamodel.User{EmployeeID: string(rune('A' + i)), FullName: "x", Email: string(rune('a'+i)) + "@epic.test", Department: d, PasswordHash: "h"}
			Expect(db.Create(&u).Error).To(Succeed())
		}
		counts, err := repo.UserCounts(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(counts).To(HaveLen(2))
		Expect(counts[0].Department).To(Equal("SALES"))
		Expect(counts[0].Count).To(Equal(int64(2)))
	})
})
