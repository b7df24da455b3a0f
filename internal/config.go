package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// InsecureSecretKey is the development fallback for SECRET_KEY.
const InsecureSecretKey = "dev-secret-key-change-in-production"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Throttle      ThrottleConfig      `mapstructure:"throttle"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	LoginRateLimit    float64       `mapstructure:"login_rate_limit"`
	LoginRateBurst    int           `mapstructure:"login_rate_burst"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type SecurityConfig struct {
	SecretKey                string `mapstructure:"secret_key"`
	AccessTokenExpireMinutes int    `mapstructure:"access_token_expire_minutes"`
	BCryptCost               int    `mapstructure:"bcrypt_cost"`
	TokenFile                string `mapstructure:"token_file"`
}

type ThrottleConfig struct {
	MaxLoginAttempts int    `mapstructure:"max_login_attempts"`
	LockoutDuration  int    `mapstructure:"lockout_duration"`
	Store            string `mapstructure:"store"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns every key with its default value, keyed the way viper sees them.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.env":                              EnvDevelopment,
		"http_server.port":                     8080,
		"http_server.read_header_timeout":      5 * time.Second,
		"http_server.read_timeout":             15 * time.Second,
		"http_server.idle_timeout":             60 * time.Second,
		"http_server.write_timeout":            15 * time.Second,
		"http_server.login_rate_limit":         1.0,
		"http_server.login_rate_burst":         5,
		"http_server.allowed_origins":          []string{},
		"database.driver":                      "postgres",
		"database.source":                      "",
		"database.max_open_conns":              10,
		"database.max_idle_conns":              5,
		"database.conn_max_lifetime":           30 * time.Minute,
		"security.secret_key":                  InsecureSecretKey,
		"security.access_token_expire_minutes": 60,
		"security.bcrypt_cost":                 12,
		"security.token_file":                  "",
		"throttle.max_login_attempts":          5,
		"throttle.lockout_duration":            300,
		"throttle.store":                       "memory",
		"redis.addr":                           "localhost:6379",
		"redis.password":                       "",
		"redis.db":                             0,
		"observability.logging.level":          "error",
		"observability.logging.format":         "text",
	}
}

// EnvBindings maps config keys to the environment variable that overrides them.
func EnvBindings() map[string]string {
	return map[string]string{
		"app.env":                              "APP_ENV",
		"http_server.port":                     "HTTP_PORT",
		"http_server.allowed_origins":          "CORS_ALLOWED_ORIGINS",
		"database.driver":                      "DATABASE_DRIVER",
		"database.source":                      "DATABASE_URL",
		"security.secret_key":                  "SECRET_KEY",
		"security.access_token_expire_minutes": "ACCESS_TOKEN_EXPIRE_MINUTES",
		"security.bcrypt_cost":                 "BCRYPT_COST",
		"security.token_file":                  "SESSION_TOKEN_FILE",
		"throttle.max_login_attempts":          "MAX_LOGIN_ATTEMPTS",
		"throttle.lockout_duration":            "LOCKOUT_DURATION",
		"throttle.store":                       "THROTTLE_STORE",
		"redis.addr":                           "REDIS_ADDR",
		"redis.password":                       "REDIS_PASSWORD",
		"redis.db":                             "REDIS_DB",
		"observability.logging.level":          "LOG_LEVEL",
		"observability.logging.format":         "LOG_FORMAT",
	}
}

// LoadConfigFromEnv builds the configuration straight from the process
// environment. Used for container deployments where no config file exists.
func LoadConfigFromEnv() *Config {
	return &Config{
		App: AppConfig{Env: getEnv("APP_ENV", EnvProduction)},
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      15 * time.Second,
			LoginRateLimit:    1.0,
			LoginRateBurst:    5,
			AllowedOrigins:    getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DATABASE_DRIVER", "postgres"),
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: 30 * time.Minute,
		},
		Security: SecurityConfig{
			SecretKey:                getEnv("SECRET_KEY", InsecureSecretKey),
			AccessTokenExpireMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60),
			BCryptCost:               getEnvAsInt("BCRYPT_COST", 12),
			TokenFile:                getEnv("SESSION_TOKEN_FILE", ""),
		},
		Throttle: ThrottleConfig{
			MaxLoginAttempts: getEnvAsInt("MAX_LOGIN_ATTEMPTS", 5),
			LockoutDuration:  getEnvAsInt("LOCKOUT_DURATION", 300),
			Store:            getEnv("THROTTLE_STORE", "memory"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "error"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, EnvProduction)
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(c.IsProduction()); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Throttle.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("throttle config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate(production bool) error {
	if c.SecretKey == "" {
		return errors.New("secret_key is required")
	}
	if production && c.UsesInsecureSecret() {
		return errors.New("secret_key must be changed from the development default")
	}
	if c.AccessTokenExpireMinutes <= 0 {
		return errors.New("access_token_expire_minutes must be positive")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		return errors.New("bcrypt_cost must be between 4 and 31")
	}
	return nil
}

func (c *SecurityConfig) UsesInsecureSecret() bool {
	return c.SecretKey == InsecureSecretKey
}

func (c *SecurityConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// TokenPath resolves the session file, defaulting to ~/.crm_token.
func (c *SecurityConfig) TokenPath() (string, error) {
	if c.TokenFile != "" {
		return c.TokenFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".crm_token"), nil
}

func (c *ThrottleConfig) Validate() error {
	if c.MaxLoginAttempts <= 0 {
		return errors.New("max_login_attempts must be positive")
	}
	if c.LockoutDuration <= 0 {
		return errors.New("lockout_duration must be positive")
	}
	if c.Store != "memory" && c.Store != "redis" {
		return fmt.Errorf("unsupported attempt store %q", c.Store)
	}
	return nil
}

func (c *ThrottleConfig) Lockout() time.Duration {
	return time.Duration(c.LockoutDuration) * time.Second
}

func (c *LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format %q", c.Format)
	}
	return nil
}
