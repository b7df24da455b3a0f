package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/audit"
	auditPostgres "github.com/frahmantamala/epic-events-crm/internal/audit/postgres"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	authPostgres "github.com/frahmantamala/epic-events-crm/internal/auth/postgres"
	authRedis "github.com/frahmantamala/epic-events-crm/internal/auth/redis"
	"github.com/frahmantamala/epic-events-crm/internal/client"
	clientPostgres "github.com/frahmantamala/epic-events-crm/internal/client/postgres"
	"github.com/frahmantamala/epic-events-crm/internal/contract"
	contractPostgres "github.com/frahmantamala/epic-events-crm/internal/contract/postgres"
	"github.com/frahmantamala/epic-events-crm/internal/core/events"
	"github.com/frahmantamala/epic-events-crm/internal/event"
	eventPostgres "github.com/frahmantamala/epic-events-crm/internal/event/postgres"
	"github.com/frahmantamala/epic-events-crm/internal/report"
	reportPostgres "github.com/frahmantamala/epic-events-crm/internal/report/postgres"
	"github.com/frahmantamala/epic-events-crm/internal/user"
	userPostgres "github.com/frahmantamala/epic-events-crm/internal/user/postgres"
	"github.com/frahmantamala/epic-events-crm/pkg/logger"
)

// Dependencies is everything a command needs, built once per invocation.
type Dependencies struct {
	Config *internal.Config
	DB     *gorm.DB
	SQL    *sql.DB
	Redis  goredis.UniversalClient
	Bus    *events.EventBus
	Policy *auth.Policy
	Logger *slog.Logger

	Auth      *auth.Service
	Users     *user.Service
	Clients   *client.Service
	Contracts *contract.Service
	Events    *event.Service
	Reports   *report.Service
	Audit     *audit.Service
}

// Options tune how the auth service is built for a given surface.
type Options struct {
	// SessionFile keeps the CLI token on disk. The HTTP server leaves it off
	// since clients carry bearer tokens.
	SessionFile bool
}

func initializeDependencies(ctx context.Context, opts Options) (*Dependencies, error) {
	cfg, err := setup()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var rdb goredis.UniversalClient
	if cfg.Throttle.Store == "redis" {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	var store auth.TokenStore
	if opts.SessionFile {
		path, err := cfg.Security.TokenPath()
		if err != nil {
			return nil, err
		}
		store = auth.NewFileTokenStore(path)
	}

	return buildDependencies(cfg, db, rdb, store, logger.LoggerWrapper())
}

// buildDependencies wires repositories and services over an open database.
func buildDependencies(cfg *internal.Config, db *gorm.DB, rdb goredis.UniversalClient, store auth.TokenStore, lg *slog.Logger) (*Dependencies, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}

	bus := events.NewEventBus(lg)
	policy := auth.NewPolicy(lg)

	auditSvc := audit.NewService(auditPostgres.NewAuditRepository(db), policy, lg)
	auditSvc.Subscribe(bus)

	var attempts auth.AttemptStore = auth.NewMemoryAttemptStore()
	if rdb != nil {
		attempts = authRedis.NewAttemptStore(rdb, "")
	}
	guard := auth.NewGuard(attempts, cfg.Throttle.MaxLoginAttempts, cfg.Throttle.Lockout(), lg)
	tokens := auth.NewTokenService(cfg.Security.SecretKey, cfg.Security.AccessTokenTTL(), lg)
	authSvc := auth.NewService(authPostgres.NewAccountRepository(db), tokens, guard, store, bus, lg)

	userRepo := userPostgres.NewUserRepository(db)
	userSvc := user.NewService(userRepo, policy, bus, cfg.Security.BCryptCost, lg)
	clientSvc := client.NewService(clientPostgres.NewClientRepository(db), userRepo, policy, bus, lg)
	contractSvc := contract.NewService(contractPostgres.NewContractRepository(db), clientSvc, policy, bus, lg)
	eventSvc := event.NewService(eventPostgres.NewEventRepository(db), clientSvc, contractSvc, userRepo, policy, bus, lg)

	reportDB := sqlx.NewDb(sqlDB, sqlxDriver(cfg.Database.Driver))
	reportSvc := report.NewService(reportPostgres.NewReportRepository(reportDB), policy, lg)

	return &Dependencies{
		Config:    cfg,
		DB:        db,
		SQL:       sqlDB,
		Redis:     rdb,
		Bus:       bus,
		Policy:    policy,
		Logger:    lg,
		Auth:      authSvc,
		Users:     userSvc,
		Clients:   clientSvc,
		Contracts: contractSvc,
		Events:    eventSvc,
		Reports:   reportSvc,
		Audit:     auditSvc,
	}, nil
}

func (d *Dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("redis close error", "error", err)
		}
	}
	if err := d.SQL.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

// initDB opens gorm on postgres (pgx) or sqlite and verifies the connection.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dsn := cfg.GetDSN()
		if dsn == "" {
			dsn = "crm.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		if cfg.GetDSN() == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		dialector = postgres.Open(cfg.GetDSN())
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// sqlxDriver names the driver sqlx should use for placeholder rebinding.
func sqlxDriver(driver string) string {
	if driver == "sqlite" {
		return "sqlite3"
	}
	return "pgx"
}
