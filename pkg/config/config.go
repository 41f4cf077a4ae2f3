package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BALCAO_APP_ENV" required:"true"`
	Port         string `envconfig:"BALCAO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BALCAO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BALCAO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BALCAO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BALCAO_DB_DSN"`
	Driver string `envconfig:"BALCAO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BALCAO_DB_HOST"`
	LegacyPort     int    `envconfig:"BALCAO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BALCAO_DB_USER"`
	LegacyPassword string `envconfig:"BALCAO_DB_PASSWORD"`
	LegacyName     string `envconfig:"BALCAO_DB_NAME"`
	LegacySSLMode  string `envconfig:"BALCAO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BALCAO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BALCAO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BALCAO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BALCAO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BALCAO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BALCAO_REDIS_ADDR"`
	Password     string        `envconfig:"BALCAO_REDIS_PASSWORD"`
	DB           int           `envconfig:"BALCAO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BALCAO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BALCAO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BALCAO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BALCAO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BALCAO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig bounds in-memory order composition sessions.
type SessionConfig struct {
	IdleTTLMinutes int `envconfig:"BALCAO_SESSION_IDLE_TTL_MINUTES" default:"240"`
}

// IdleTTL returns the idle session TTL configured in minutes.
func (s SessionConfig) IdleTTL() time.Duration {
	if s.IdleTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.IdleTTLMinutes) * time.Minute
}

type CronConfig struct {
	Interval time.Duration `envconfig:"BALCAO_CRON_INTERVAL" default:"15m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BALCAO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BALCAO_AUTO_MIGRATE" default:"false"`
	SeedDemo    bool `envconfig:"BALCAO_SEED_DEMO" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		return fmt.Errorf("%s is required when the sqlite driver is selected", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
