package config

// EnvPrefix scopes every environment variable the service reads.
const EnvPrefix = "AUTOCARE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "AUTOCARE_APP_ENV"
	EnvPort     = "AUTOCARE_APP_PORT"
	EnvDBDSN    = "AUTOCARE_DB_DSN"
	EnvDBDriver = "AUTOCARE_DB_DRIVER"
	EnvDBHost   = "AUTOCARE_DB_HOST"
	EnvDBUser   = "AUTOCARE_DB_USER"
	EnvDBName   = "AUTOCARE_DB_NAME"

	EnvRedisURL           = "AUTOCARE_REDIS_URL"
	EnvJWTSecret          = "AUTOCARE_JWT_SECRET"
	EnvJWTIssuer          = "AUTOCARE_JWT_ISSUER"
	EnvJWTExpMins         = "AUTOCARE_JWT_EXPIRATION_MINUTES"
	EnvSessionTTLMinutes  = "AUTOCARE_SESSION_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
