package config

const (
	EnvPrefix = "barpos"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BARPOS_DB_DSN"
	EnvDBHost = "BARPOS_DB_HOST"
	EnvDBUser = "BARPOS_DB_USER"
	EnvDBName = "BARPOS_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
