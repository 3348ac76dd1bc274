package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "ISLADELCAFE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:isladelcafe.db?_busy_timeout=5000"
)

const (
	EnvAppEnv   = "ISLADELCAFE_APP_ENV"
	EnvPort     = "ISLADELCAFE_APP_PORT"
	EnvLogLevel = "ISLADELCAFE_LOG_LEVEL"

	EnvDBDSN  = "ISLADELCAFE_DB_DSN"
	EnvDBHost = "ISLADELCAFE_DB_HOST"
	EnvDBPort = "ISLADELCAFE_DB_PORT"
	EnvDBUser = "ISLADELCAFE_DB_USER"
	EnvDBPass = "ISLADELCAFE_DB_PASSWORD"
	EnvDBName = "ISLADELCAFE_DB_NAME"

	EnvRedisURL = "ISLADELCAFE_REDIS_URL"

	EnvJWTSecret  = "ISLADELCAFE_JWT_SECRET"
	EnvJWTIssuer  = "ISLADELCAFE_JWT_ISSUER"
	EnvJWTExpMins = "ISLADELCAFE_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite   = "ISLADELCAFE_USE_SQLITE"
	EnvOrderEvents = "ISLADELCAFE_ORDER_EVENTS"

	EnvServiceCity    = "ISLADELCAFE_ORDERS_SERVICE_CITY"
	EnvPendingTimeout = "ISLADELCAFE_ORDERS_PENDING_TIMEOUT"

	EnvPubSubOrdersTopic = "ISLADELCAFE_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
