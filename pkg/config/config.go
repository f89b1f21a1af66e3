package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Cookie        CookieConfig
	CORS          CORSConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Assets        AssetsConfig
	S3            S3Config
	GCP           GCPConfig
	GCS           GCSConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Mail          MailConfig
	SMTP          SMTPConfig
	GoogleOAuth   GoogleOAuthConfig
	News          NewsConfig
	Cron          CronConfig
}

// Load reads every setting from the environment. All semantic problems are
// reported together so a broken deploy can be fixed in one pass.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	err := multierr.Combine(
		cfg.DB.ensureDSN(),
		cfg.Assets.validate(),
		cfg.Mail.validate(),
	)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AIAZENT_APP_ENV" required:"true"`
	Port         string `envconfig:"AIAZENT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AIAZENT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"AIAZENT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"AIAZENT_LOG_WARN_STACK" default:"false"`
	FrontendURL  string `envconfig:"AIAZENT_FRONTEND_URL" default:"https://www.aiazent.ai"`
	MaxUploadMB  int    `envconfig:"AIAZENT_MAX_UPLOAD_MB" default:"5"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// MaxUploadBytes returns the per-file upload limit.
func (a AppConfig) MaxUploadBytes() int64 {
	if a.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return int64(a.MaxUploadMB) << 20
}

type ServiceConfig struct {
	Kind       string `envconfig:"AIAZENT_SERVICE_KIND" default:"api"`
	InstanceID string `envconfig:"AIAZENT_INSTANCE_ID"`
}

// Instance names this process in logs and lock ownership. It falls back to
// the host name, then to "<kind>-0".
func (s ServiceConfig) Instance() string {
	if id := strings.TrimSpace(s.InstanceID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	kind := s.Kind
	if kind == "" {
		kind = "api"
	}
	return kind + "-0"
}

type DBConfig struct {
	DSN    string `envconfig:"AIAZENT_DB_DSN"`
	Driver string `envconfig:"AIAZENT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AIAZENT_DB_HOST"`
	LegacyPort     int    `envconfig:"AIAZENT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AIAZENT_DB_USER"`
	LegacyPassword string `envconfig:"AIAZENT_DB_PASSWORD"`
	LegacyName     string `envconfig:"AIAZENT_DB_NAME"`
	LegacySSLMode  string `envconfig:"AIAZENT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AIAZENT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AIAZENT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AIAZENT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AIAZENT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"AIAZENT_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AIAZENT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AIAZENT_REDIS_ADDR"`
	Password     string        `envconfig:"AIAZENT_REDIS_PASSWORD"`
	DB           int           `envconfig:"AIAZENT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AIAZENT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AIAZENT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AIAZENT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AIAZENT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AIAZENT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AIAZENT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AIAZENT_JWT_ISSUER" default:"aiazent"`
	ExpirationMinutes int    `envconfig:"AIAZENT_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int           `envconfig:"AIAZENT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int           `envconfig:"AIAZENT_ARGON_TIME" default:"3"`
	ArgonParallelism int           `envconfig:"AIAZENT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int           `envconfig:"AIAZENT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int           `envconfig:"AIAZENT_ARGON_KEY_LEN" default:"32"`
	ResetTokenTTL    time.Duration `envconfig:"AIAZENT_PASSWORD_RESET_TTL" default:"1h"`
}

type CookieConfig struct {
	Name   string `envconfig:"AIAZENT_COOKIE_NAME" default:"token"`
	Domain string `envconfig:"AIAZENT_COOKIE_DOMAIN"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"AIAZENT_CORS_ALLOWED_ORIGINS" default:"http://localhost:1234,http://localhost:63647,https://www.aiazent.ai"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"AIAZENT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"AIAZENT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"AIAZENT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"AIAZENT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"AIAZENT_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"AIAZENT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	ForgotWindow       time.Duration `envconfig:"AIAZENT_AUTH_RATE_LIMIT_FORGOT_WINDOW" default:"15m"`
	ForgotEmailLimit   int           `envconfig:"AIAZENT_AUTH_RATE_LIMIT_FORGOT_EMAIL_LIMIT" default:"3"`
	ForgotIPLimit      int           `envconfig:"AIAZENT_AUTH_RATE_LIMIT_FORGOT_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AIAZENT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AIAZENT_AUTO_MIGRATE" default:"false"`
	Engagement  bool `envconfig:"AIAZENT_FEATURE_ENGAGEMENT_EVENTS" default:"false"`
}

type AssetsConfig struct {
	Backend       string        `envconfig:"AIAZENT_ASSETS_BACKEND" default:"s3"`
	Timeout       time.Duration `envconfig:"AIAZENT_ASSETS_TIMEOUT" default:"20s"`
	TempRetention time.Duration `envconfig:"AIAZENT_ASSETS_TEMP_RETENTION" default:"168h"`
}

func (a AssetsConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.Backend)) {
	case AssetsBackendS3, AssetsBackendGCS:
		return nil
	default:
		return fmt.Errorf("unsupported assets backend %q", a.Backend)
	}
}

type S3Config struct {
	Region          string `envconfig:"AIAZENT_S3_REGION" default:"us-east-1"`
	Bucket          string `envconfig:"AIAZENT_S3_BUCKET"`
	AccessKeyID     string `envconfig:"AIAZENT_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"AIAZENT_S3_SECRET_ACCESS_KEY"`
	Endpoint        string `envconfig:"AIAZENT_S3_ENDPOINT"`
	PublicBaseURL   string `envconfig:"AIAZENT_S3_PUBLIC_BASE_URL"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AIAZENT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"AIAZENT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AIAZENT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"AIAZENT_GCS_BUCKET_NAME"`
}

type PubSubConfig struct {
	MailTopic        string `envconfig:"AIAZENT_PUBSUB_MAIL_TOPIC" default:"aiazent-mail"`
	MailSubscription string `envconfig:"AIAZENT_PUBSUB_MAIL_SUBSCRIPTION" default:"aiazent-mail-sub"`
}

type BigQueryConfig struct {
	Dataset         string `envconfig:"AIAZENT_BIGQUERY_DATASET" default:"aiazent"`
	EngagementTable string `envconfig:"AIAZENT_BIGQUERY_ENGAGEMENT_TABLE" default:"listing_engagement"`
}

type MailConfig struct {
	Transport string        `envconfig:"AIAZENT_MAIL_TRANSPORT" default:"smtp"`
	From      string        `envconfig:"AIAZENT_MAIL_FROM"`
	FromName  string        `envconfig:"AIAZENT_MAIL_FROM_NAME" default:"AiAzent"`
	Timeout   time.Duration `envconfig:"AIAZENT_MAIL_TIMEOUT" default:"15s"`
}

func (m MailConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(m.Transport)) {
	case MailTransportSMTP, MailTransportPubSub, MailTransportNone:
		return nil
	default:
		return fmt.Errorf("unsupported mail transport %q", m.Transport)
	}
}

type SMTPConfig struct {
	Host     string `envconfig:"AIAZENT_SMTP_HOST" default:"smtp.gmail.com"`
	Port     int    `envconfig:"AIAZENT_SMTP_PORT" default:"587"`
	TLSMode  string `envconfig:"AIAZENT_SMTP_TLS" default:"starttls"`
	Username string `envconfig:"AIAZENT_SMTP_USERNAME"`
	Password string `envconfig:"AIAZENT_SMTP_PASSWORD"`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.Port > 0
}

type GoogleOAuthConfig struct {
	ClientID     string        `envconfig:"AIAZENT_GOOGLE_CLIENT_ID"`
	ClientSecret string        `envconfig:"AIAZENT_GOOGLE_CLIENT_SECRET"`
	RedirectURL  string        `envconfig:"AIAZENT_GOOGLE_REDIRECT_URL"`
	Issuer       string        `envconfig:"AIAZENT_GOOGLE_ISSUER" default:"https://accounts.google.com"`
	StateTTL     time.Duration `envconfig:"AIAZENT_GOOGLE_STATE_TTL" default:"10m"`
}

// Enabled reports whether Google sign-in is configured.
func (g GoogleOAuthConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURL != ""
}

type NewsConfig struct {
	APIKey      string        `envconfig:"AIAZENT_NEWS_API_KEY"`
	BaseURL     string        `envconfig:"AIAZENT_NEWS_API_BASE_URL" default:"https://newsapi.org/v2"`
	Timeout     time.Duration `envconfig:"AIAZENT_NEWS_API_TIMEOUT" default:"10s"`
	ArticlesTTL time.Duration `envconfig:"AIAZENT_NEWS_ARTICLES_TTL" default:"1h"`
	SourcesTTL  time.Duration `envconfig:"AIAZENT_NEWS_SOURCES_TTL" default:"24h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"AIAZENT_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"AIAZENT_CRON_LOCK_TTL" default:"10m"`
}

// ensureDSN assembles a postgres URL from the discrete AIAZENT_DB_* parts
// when no DSN is set.
func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	parts := []struct{ env, value string }{
		{EnvDBHost, db.LegacyHost},
		{EnvDBUser, db.LegacyUser},
		{EnvDBName, db.LegacyName},
	}
	var missing []string
	for _, p := range parts {
		if strings.TrimSpace(p.value) == "" {
			missing = append(missing, p.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.User(db.LegacyUser),
		Host:   db.LegacyHost + ":" + strconv.Itoa(db.LegacyPort),
		Path:   db.LegacyName,
	}
	if db.LegacyPassword != "" {
		u.User = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}
	if db.LegacySSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.LegacySSLMode}}.Encode()
	}
	db.DSN = u.String()
	return nil
}
