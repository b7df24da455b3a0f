package cmd

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/epic-events-crm/db"
	auditDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/audit"
	clientDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/client"
	contractDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/contract"
	eventDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/event"
	userDatamodel "github.com/frahmantamala/epic-events-crm/internal/core/datamodel/user"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "Apply the database schema (goose SQL migrations on postgres, auto migration on sqlite)",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the latest postgres migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cliContext(cmd.Context())
	cfg, err := setup()
	if err != nil {
		return err
	}

	if cfg.Database.Driver == "sqlite" {
		if migrateRollback {
			return fmt.Errorf("rollback is only supported on postgres")
		}
		gdb, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		if sqlDB, err := gdb.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := autoMigrate(gdb); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sqlite schema is up to date")
		return nil
	}

	sqlDB, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(db.Migrations)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose: %w", err)
	}

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// autoMigrate creates the schema from the gorm models. Used for sqlite,
// where the postgres SQL does not apply.
func autoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&userDatamodel.User{},
		&clientDatamodel.Client{},
		&contractDatamodel.Contract{},
		&eventDatamodel.Event{},
		&auditDatamodel.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

