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
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Orders       OrdersConfig
	Cron         CronConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ISLADELCAFE_APP_ENV" required:"true"`
	Port         string `envconfig:"ISLADELCAFE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ISLADELCAFE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ISLADELCAFE_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"ISLADELCAFE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ISLADELCAFE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ISLADELCAFE_DB_DSN"`
	Driver string `envconfig:"ISLADELCAFE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ISLADELCAFE_DB_HOST"`
	LegacyPort     int    `envconfig:"ISLADELCAFE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ISLADELCAFE_DB_USER"`
	LegacyPassword string `envconfig:"ISLADELCAFE_DB_PASSWORD"`
	LegacyName     string `envconfig:"ISLADELCAFE_DB_NAME"`
	LegacySSLMode  string `envconfig:"ISLADELCAFE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ISLADELCAFE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ISLADELCAFE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ISLADELCAFE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ISLADELCAFE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite dialector should be used.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"ISLADELCAFE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ISLADELCAFE_REDIS_ADDR"`
	Password     string        `envconfig:"ISLADELCAFE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ISLADELCAFE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ISLADELCAFE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ISLADELCAFE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ISLADELCAFE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ISLADELCAFE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ISLADELCAFE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ISLADELCAFE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ISLADELCAFE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ISLADELCAFE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ISLADELCAFE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ISLADELCAFE_AUTO_MIGRATE" default:"false"`
	OrderEvents bool `envconfig:"ISLADELCAFE_ORDER_EVENTS" default:"false"`
}

type OrdersConfig struct {
	ServiceCity    string        `envconfig:"ISLADELCAFE_ORDERS_SERVICE_CITY" default:"Cebu City"`
	PendingTimeout time.Duration `envconfig:"ISLADELCAFE_ORDERS_PENDING_TIMEOUT" default:"30m"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"ISLADELCAFE_CRON_INTERVAL" default:"1m"`
	LockTTL             time.Duration `envconfig:"ISLADELCAFE_CRON_LOCK_TTL" default:"5m"`
	OutboxRetentionDays int           `envconfig:"ISLADELCAFE_OUTBOX_RETENTION_DAYS" default:"30"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"ISLADELCAFE_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"ISLADELCAFE_PUBSUB_ORDERS_TOPIC" default:"isladelcafe-order-events"`
	OrdersSubscription string `envconfig:"ISLADELCAFE_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ISLADELCAFE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ISLADELCAFE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ISLADELCAFE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = defaultSQLiteDSN
		}
		return nil
	}
	if db.DSN != "" {
		return nil
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
