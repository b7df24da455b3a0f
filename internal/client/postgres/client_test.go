package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/epic-events-crm/internal/client"
	clientPostgres "github.com/frahmantamala/epic-events-crm/internal/client/postgres"
	clientDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/client"
	contractDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/contract"
	eventDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/event"
)

func TestClientPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Client Postgres Suite")
}

var _ = Describe("ClientRepository", func() {
	var (
		db   *gorm.DB
		repo *clientPostgres.ClientRepository
		ctx  context.Context
	)

	newClient := func(name, company string, commercialID int64) *clientDatamodel.Client {
		c := &clientDatamodel.Client{
			FullName:     name,
			Email:        "contact@example.com",
			Phone:        "0612345678",
			CompanyName:  company,
			CommercialID: commercialID,
			LastContact:  time.Now(),
		}
		Expect(repo.Create(ctx, c)).To(Succeed())
		return c
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&clientDatamodel.Client{}, &contractDatamodel.Contract{}, &eventDatamodel.Event{})).To(Succeed())
		repo = clientPostgres.NewClientRepository(db)
		ctx = context.Background()
	})

	It("filters by commercial and searches name or company", func() {
		newClient("Kevin Casey", "Cool Startup", 1)
		newClient("John Ricoh", "Acme", 2)

		mine, err := repo.List(ctx, client.Filter{CommercialID: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(mine).To(HaveLen(1))
		Expect(mine[0].FullName).To(Equal("John Ricoh"))

		found, err := repo.List(ctx, client.Filter{Search: "STARTUP"})
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(HaveLen(1))
		Expect(found[0].FullName).To(Equal("Kevin Casey"))
	})

	It("updates mutable columns", func() {
		c := newClient("Kevin Casey", "Cool Startup", 1)
		c.CommercialID = 7
		c.Phone = "+33612345678"
		Expect(repo.Update(ctx, c)).To(Succeed())

		got, err := repo.GetByID(ctx, c.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.CommercialID).To(Equal(int64(7)))
		Expect(got.Phone).To(Equal("+33612345678"))
	})

	It("deletes the client with its contracts and events", func() {
		c := newClient("Kevin Casey", "Cool Startup", 1)
		k := &contractDatamodel.Contract{TotalAmount: decimal.NewFromInt(100), RemainingAmount: decimal.Zero, ClientID: c.ID, CommercialID: 1}
		Expect(db.Create(k).Error).To(Succeed())
		Expect(db.Create(&eventDatamodel.Event{Name: "Gala", StartDate: time.Now(), EndDate: time.Now().Add(time.Hour), Location: "Paris", ClientID: c.ID, ContractID: k.ID}).Error).To(Succeed())

		Expect(repo.Delete(ctx, c.ID)).To(Succeed())

		var contracts, evts int64
		db.Model(&contractDatamodel.Contract{}).Count(&contracts)
		db.Model(&eventDatamodel.Event{}).Count(&evts)
		Expect(contracts).To(BeZero())
		Expect(evts).To(BeZero())

		_, err := repo.GetByID(ctx, c.ID)
		Expect(err).To(MatchError(client.ErrNotFound))
		Expect(repo.Delete(ctx, c.ID)).To(MatchError(client.ErrNotFound))
	})
})
