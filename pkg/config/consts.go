package config

// EnvPrefix is applied by envconfig to every variable lookup.
const EnvPrefix = "BALCAO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "BALCAO_DB_DSN"
	EnvDBHost = "BALCAO_DB_HOST"
	EnvDBUser = "BALCAO_DB_USER"
	EnvDBName = "BALCAO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
