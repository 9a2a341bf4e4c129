package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/learnhub/course-portal/internal/core/domain"
)

// DevelopmentSecret is the placeholder session secret. It must be overridden
// in production.
const DevelopmentSecret = "your_development_secret_key"

const (
	EnvProduction = "production"

	DriverPostgres = "postgres"
	DriverMongo    = "mongo"

	APIAuthToken   = "token"
	APIAuthPayload = "payload"
)

type Config struct {
	Port      string `env:"PORT,      default=8000"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	SecretKey string `env:"SECRET_KEY, default=your_development_secret_key"`
	JWTSecret string `env:"JWT_SECRET"`

	LoginMode   domain.LoginMode  `env:"LOGIN_MODE,         default=credentials"`
	APIAuthMode string            `env:"API_AUTH_MODE,      default=token"`
	EditPolicy  domain.EditPolicy `env:"COURSE_EDIT_POLICY, default=any_educator"`

	SessionTTL time.Duration `env:"SESSION_TTL, default=12h"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,   default=24h"`

	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`

	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type StoreConfig struct {
	Driver           string `env:"STORE_DRIVER,          default=postgres"`
	ConnectionString string `env:"SQL_CONNECTION_STRING"`
	AutoMigrate      bool   `env:"SQL_AUTO_MIGRATE,      default=true"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=course_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through an arbitrary lookuper and applies
// derived defaults.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = cfg.SecretKey
	}
	return &cfg, nil
}

// Validate rejects combinations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if !c.LoginMode.Valid() {
		errs = append(errs, fmt.Errorf("LOGIN_MODE %q: want credentials or assertion", c.LoginMode))
	}
	if c.APIAuthMode != APIAuthToken && c.APIAuthMode != APIAuthPayload {
		errs = append(errs, fmt.Errorf("API_AUTH_MODE %q: want token or payload", c.APIAuthMode))
	}
	if !c.EditPolicy.Valid() {
		errs = append(errs, fmt.Errorf("COURSE_EDIT_POLICY %q: want any_educator or owner_only", c.EditPolicy))
	}
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.ConnectionString == "" {
			errs = append(errs, errors.New("SQL_CONNECTION_STRING is required for the postgres store"))
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q: want postgres or mongo", c.Store.Driver))
	}
	if c.IsProduction() && c.SecretKey == DevelopmentSecret {
		errs = append(errs, errors.New("SECRET_KEY must be overridden in production"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// AuditEnabled reports whether a Mongo deployment is available for the
// course audit trail.
func (c *Config) AuditEnabled() bool {
	return c.Mongo.URI != ""
}
