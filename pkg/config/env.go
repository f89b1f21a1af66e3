package config

const EnvPrefix = "AIAZENT"

const (
	EnvAppEnv             = "AIAZENT_APP_ENV"
	EnvPort               = "AIAZENT_APP_PORT"
	EnvDBDSN              = "AIAZENT_DB_DSN"
	EnvDBHost             = "AIAZENT_DB_HOST"
	EnvDBUser             = "AIAZENT_DB_USER"
	EnvDBName             = "AIAZENT_DB_NAME"
	EnvRedisURL           = "AIAZENT_REDIS_URL"
	EnvJWTSecret          = "AIAZENT_JWT_SECRET"
	EnvJWTIssuer          = "AIAZENT_JWT_ISSUER"
	EnvJWTExpMins         = "AIAZENT_JWT_EXPIRATION_MINUTES"
	EnvAssetsBackend      = "AIAZENT_ASSETS_BACKEND"
	EnvS3Bucket           = "AIAZENT_S3_BUCKET"
	EnvMailTransport      = "AIAZENT_MAIL_TRANSPORT"
	EnvCORSAllowedOrigins = "AIAZENT_CORS_ALLOWED_ORIGINS"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	AssetsBackendS3  = "s3"
	AssetsBackendGCS = "gcs"
)

const (
	MailTransportSMTP   = "smtp"
	MailTransportPubSub = "pubsub"
	MailTransportNone   = "none"
)
