package postgres_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/epic-events-crm/internal/auth"
	clientDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/client"
	contractDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/contract"
	eventDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/event"
	userDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/user"
	"github.com/frahmantamala/epic-events-crm/internal/user"
	userPostgres "github.com/frahmantamala/epic-events-crm/internal/user/postgres"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

var _ = Describe("UserRepository", func() {
	var (
		db   *gorm.DB
		repo *userPostgres.UserRepository
		ctx  context.Context
	)

	newUser := func(employeeID, email string, role auth.Role) *userDatamodel.User {
		u := &userDatamodel.User{EmployeeID: employeeID, FullName: employeeID, Email: email, Department: string(role), PasswordHash: "h"}
		Expect(repo.Create(ctx, u)).To(Succeed())
		return u
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
		Expect(db.AutoMigrate(&userDatamodel.User{}, &clientDatamodel.Client{}, &contractDatamodel.Contract{}, &eventDatamodel.Event{})).To(Succeed())
		repo = userPostgres.NewUserRepository(db)
		ctx = context.Background()
	})

	It("creates and looks users up by id, email and employee id", func() {
		u := newUser("S001", "sales@epic.test", auth.RoleSales)
		Expect(u.ID).NotTo(BeZero())

		byID, err := repo.GetByID(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(byID.Email).To(Equal("sales@epic.test"))

		byEmail, err := repo.GetByEmail(ctx, "SALES@epic.test")
		Expect(err).NotTo(HaveOccurred())
		Expect(byEmail.ID).To(Equal(u.ID))

		byEmployee, err := repo.GetByEmployeeID(ctx, "S001")
		Expect(err).NotTo(HaveOccurred())
		Expect(byEmployee.ID).To(Equal(u.ID))
	})

	It("maps missing rows to ErrNotFound", func() {
		_, err := repo.GetByID(ctx, 42)
		Expect(err).To(MatchError(user.ErrNotFound))
	})

	It("lists by department", func() {
		newUser("S001", "a@epic.test", auth.RoleSales)
		newUser("U001", "b@epic.test", auth.RoleSupport)

		sales, err := repo.List(ctx, auth.RoleSales)
		Expect(err).NotTo(HaveOccurred())
		Expect(sales).To(HaveLen(1))

		all, err := repo.List(ctx, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(2))
	})

	It("does not change the department through Update", func() {
		u := newUser("S001", "a@epic.test", auth.RoleSales)
		u.FullName = "Renamed"
		u.Department = string(auth.RoleManagement)
		Expect(repo.Update(ctx, u)).To(Succeed())

		got, _ := repo.GetByID(ctx, u.ID)
		Expect(got.FullName).To(Equal("Renamed"))
		Expect(got.Department).To(Equal("SALES"))

		_, err := repo.UpdateDepartment(ctx, u.ID, "SUPPORT")
		Expect(err).NotTo(HaveOccurred())
		got, _ = repo.GetByID(ctx, u.ID)
		Expect(got.Department).To(Equal("SUPPORT"))
	})

	It("refuses to move a user who still owns clients", func() {
		u := newUser("S001", "a@epic.test", auth.RoleSales)
		Expect(db.Create(&clientDatamodel.Client{FullName: "c", Email: "c@x.fr", Phone: "0102030405", CompanyName: "co", CommercialID: u.ID}).Error).To(Succeed())

		_, err := repo.UpdateDepartment(ctx, u.ID, "SUPPORT")
		Expect(err).To(MatchError(user.ErrHasDependents))
		got, _ := repo.GetByID(ctx, u.ID)
		Expect(got.Department).To(Equal("SALES"))
	})

	It("unassigns supported events when a user leaves support", func() {
		s := newUser("U001", "s@epic.test", auth.RoleSupport)
		ev := &eventDatamodel.Event{Name: "gala", Location: "Paris", ClientID: 1, ContractID: 1, SupportID: &s.ID}
		Expect(db.Create(ev).Error).To(Succeed())

		unassigned, err := repo.UpdateDepartment(ctx, s.ID, "SALES")
		Expect(err).NotTo(HaveOccurred())
		Expect(unassigned).To(Equal(int64(1)))

		var reloaded eventDatamodel.Event
		Expect(db.First(&reloaded, ev.ID).Error).To(Succeed())
		Expect(reloaded.SupportID).To(BeNil())
	})

	It("refuses to delete a user who still owns clients", func() {
		u := newUser("S001", "a@epic.test", auth.RoleSales)
		Expect(db.Create(&clientDatamodel.Client{FullName: "c", Email: "c@x.fr", Phone: "0102030405", CompanyName: "co", CommercialID: u.ID}).Error).To(Succeed())

		Expect(repo.Delete(ctx, u.ID)).To(MatchError(user.ErrHasDependents))
	})

	It("unassigns supported events on delete", func() {
		s := newUser("U001", "s@epic.test", auth.RoleSupport)
		ev := &eventDatamodel.Event{Name: "gala", Location: "Paris", ClientID: 1, ContractID: 1, SupportID: &s.ID}
		Expect(db.Create(ev).Error).To(Succeed())

		Expect(repo.Delete(ctx, s.ID)).To(Succeed())

		var reloaded eventDatamodel.Event
		Expect(db.First(&reloaded, ev.ID).Error).To(Succeed())
		Expect(reloaded.SupportID).To(BeNil())
	})
})
