package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/epic-events-crm/internal/auth"
	auditDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/audit"
	clientDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/client"
	contractDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/contract"
	eventDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/event"
	userDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/user"
)

var (
	clearData    bool
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with employees of every department, clients, contracts and events for development and testing.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		gdb, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		if sqlDB, err := gdb.DB(); err == nil {
			defer sqlDB.Close()
		}
		return seed(cliContext(cmd.Context()), gdb, seedOptions{
			Clear:      clearData,
			Password:   seedPassword,
			BCryptCost: cfg.Security.BCryptCost,
			Now:        time.Now(),
		}, cmd.OutOrStdout())
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
	seedCmd.Flags().StringVar(&seedPassword, "password", "password123", "password for every seeded employee")
}

type seedOptions struct {
	Clear      bool
	Password   string
	BCryptCost int
	Now        time.Time
}

type seedUser struct {
	EmployeeID string
	FullName   string
	Email      string
	Role       auth.Role
}

var seedUsers = []seedUser{
	{"M001", "Margaux Manager", "manager@epicevents.test", auth.RoleManagement},
	{"S001", "Sacha Sales", "sales@epicevents.test", auth.RoleSales},
	{"S002", "Selma Sales", "sales2@epicevents.test", auth.RoleSales},
	{"U001", "Ugo Support", "support@epicevents.test", auth.RoleSupport},
	{"U002", "Ulla Support", "support2@epicevents.test", auth.RoleSupport},
}

// seed is idempotent: rows are matched on their natural keys and only
// missing ones are inserted.
func seed(ctx context.Context, gdb *gorm.DB, opts seedOptions, out io.Writer) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Clear {
			for _, model := range []interface{}{
				&eventDatamodel.Event{}, &contractDatamodel.Contract{}, &clientDatamodel.Client{},
				&auditDatamodel.AuditLog{}, &userDatamodel.User{},
			} {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
					return fmt.Errorf("clear %T: %w", model, err)
				}
			}
			fmt.Fprintln(out, "Cleared existing data")
		}

		hash, err := auth.HashPassword(opts.Password, opts.BCryptCost)
		if err != nil {
			return err
		}

		ids := map[string]int64{}
		for _, su := range seedUsers {
			row := userDatamodel.User{
				EmployeeID:   su.EmployeeID,
				FullName:     su.FullName,
				Email:        su.Email,
				Department:   string(su.Role),
				PasswordHash: hash,
			}
			err := tx.Where("email = ?", su.Email).First(&row).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&row).Error; err != nil {
					return fmt.Errorf("seed user %s: %w", su.Email, err)
				}
				fmt.Fprintf(out, "Seeded %s user: %s\n", su.Role, su.Email)
			case err != nil:
				return fmt.Errorf("look up user %s: %w", su.Email, err)
			default:
				fmt.Fprintf(out, "%s already exists\n", su.Email)
			}
			ids[su.Email] = row.ID
		}

		clients := []clientDatamodel.Client{
			{FullName: "Kevin Casey", Email: "kevin@startup.io", Phone: "+33612345678", CompanyName: "Cool Startup LLC", CommercialID: ids["sales@epicevents.test"]},
			{FullName: "Claire Dubois", Email: "claire@lumiere.fr", Phone: "0145678901", CompanyName: "Lumiere SA", CommercialID: ids["sales@epicevents.test"]},
			{FullName: "Marc Petit", Email: "marc@vinsdufutur.fr", Phone: "0478123456", CompanyName: "Vins du Futur", CommercialID: ids["sales2@epicevents.test"]},
		}
		for i := range clients {
			c := &clients[i]
			c.LastContact = opts.Now
			if err := tx.Where("email = ?", c.Email).FirstOrCreate(c).Error; err != nil {
				return fmt.Errorf("seed client %s: %w", c.Email, err)
			}
		}

		var existing int64
		if err := tx.Model(&contractDatamodel.Contract{}).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			fmt.Fprintln(out, "Contracts already present; skipping contracts and events")
			return nil
		}

		contracts := []contractDatamodel.Contract{
			{ClientID: clients[0].ID, CommercialID: clients[0].CommercialID, TotalAmount: decimal.NewFromInt(10000), RemainingAmount: decimal.NewFromInt(2500), IsSigned: true},
			{ClientID: clients[1].ID, CommercialID: clients[1].CommercialID, TotalAmount: decimal.NewFromInt(4200), RemainingAmount: decimal.NewFromInt(4200), IsSigned: false},
			{ClientID: clients[2].ID, CommercialID: clients[2].CommercialID, TotalAmount: decimal.NewFromInt(7800), RemainingAmount: decimal.Zero, IsSigned: true},
		}
		if err := tx.Create(&contracts).Error; err != nil {
			return fmt.Errorf("seed contracts: %w", err)
		}

		support := ids["support@epicevents.test"]
		day := 24 * time.Hour
		events := []eventDatamodel.Event{
			{
				Name: "Cool Startup Launch Party", ClientID: clients[0].ID, ContractID: contracts[0].ID,
				StartDate: opts.Now.Add(14 * day), EndDate: opts.Now.Add(14*day + 5*time.Hour),
				Location: "Station F, Paris", Attendees: 150, Notes: "DJ and catering for 150", SupportID: &support,
			},
			{
				Name: "Harvest Tasting", ClientID: clients[2].ID, ContractID: contracts[2].ID,
				StartDate: opts.Now.Add(-30 * day), EndDate: opts.Now.Add(-30*day + 4*time.Hour),
				Location: "Lyon", Attendees: 60,
			},
		}
		if err := tx.Create(&events).Error; err != nil {
			return fmt.Errorf("seed events: %w", err)
		}

		fmt.Fprintf(out, "Seeded %d clients, %d contracts, %d events\n", len(clients), len(contracts), len(events))
		return nil
	})
}
