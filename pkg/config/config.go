package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "amicofritto"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "AMICOFRITTO_DB_DSN"
	EnvDBHost = "AMICOFRITTO_DB_HOST"
	EnvDBUser = "AMICOFRITTO_DB_USER"
	EnvDBName = "AMICOFRITTO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	Captcha      CaptchaConfig
	Firebase     FirebaseConfig
	Admin        AdminConfig
	Store        StoreConfig
	Maintenance  MaintenanceConfig
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
	Env          string `envconfig:"AMICOFRITTO_APP_ENV" required:"true"`
	Port         string `envconfig:"AMICOFRITTO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AMICOFRITTO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AMICOFRITTO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AMICOFRITTO_DB_DSN"`
	Driver string `envconfig:"AMICOFRITTO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AMICOFRITTO_DB_HOST"`
	LegacyPort     int    `envconfig:"AMICOFRITTO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AMICOFRITTO_DB_USER"`
	LegacyPassword string `envconfig:"AMICOFRITTO_DB_PASSWORD"`
	LegacyName     string `envconfig:"AMICOFRITTO_DB_NAME"`
	LegacySSLMode  string `envconfig:"AMICOFRITTO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AMICOFRITTO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AMICOFRITTO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AMICOFRITTO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AMICOFRITTO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AMICOFRITTO_REDIS_URL"`
	Address      string        `envconfig:"AMICOFRITTO_REDIS_ADDR"`
	Password     string        `envconfig:"AMICOFRITTO_REDIS_PASSWORD"`
	DB           int           `envconfig:"AMICOFRITTO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AMICOFRITTO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AMICOFRITTO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AMICOFRITTO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AMICOFRITTO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AMICOFRITTO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured at all. When it is
// not, the rate limiter falls back to process-local counters.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// RateLimitConfig carries the fixed-window policies per endpoint class.
type RateLimitConfig struct {
	OrderWindow time.Duration `envconfig:"AMICOFRITTO_RATE_LIMIT_ORDER_WINDOW" default:"10m"`
	OrderMax    int           `envconfig:"AMICOFRITTO_RATE_LIMIT_ORDER_MAX" default:"10"`

	ReadWindow time.Duration `envconfig:"AMICOFRITTO_RATE_LIMIT_READ_WINDOW" default:"1m"`
	ReadMax    int           `envconfig:"AMICOFRITTO_RATE_LIMIT_READ_MAX" default:"60"`

	PushWindow time.Duration `envconfig:"AMICOFRITTO_RATE_LIMIT_PUSH_WINDOW" default:"10m"`
	PushMax    int           `envconfig:"AMICOFRITTO_RATE_LIMIT_PUSH_MAX" default:"30"`

	DiscountWindow time.Duration `envconfig:"AMICOFRITTO_RATE_LIMIT_DISCOUNT_WINDOW" default:"5m"`
	DiscountMax    int           `envconfig:"AMICOFRITTO_RATE_LIMIT_DISCOUNT_MAX" default:"30"`
}

type CaptchaConfig struct {
	Secret    string        `envconfig:"AMICOFRITTO_RECAPTCHA_SECRET"`
	VerifyURL string        `envconfig:"AMICOFRITTO_RECAPTCHA_VERIFY_URL" default:"https://www.google.com/recaptcha/api/siteverify"`
	Timeout   time.Duration `envconfig:"AMICOFRITTO_RECAPTCHA_TIMEOUT" default:"8s"`
}

type FirebaseConfig struct {
	ProjectID   string        `envconfig:"AMICOFRITTO_FIREBASE_PROJECT_ID"`
	ClientEmail string        `envconfig:"AMICOFRITTO_FIREBASE_CLIENT_EMAIL"`
	PrivateKey  string        `envconfig:"AMICOFRITTO_FIREBASE_PRIVATE_KEY"`
	Timeout     time.Duration `envconfig:"AMICOFRITTO_FIREBASE_TIMEOUT" default:"5s"`
}

// NormalizedPrivateKey restores real newlines in keys passed through env vars.
func (f FirebaseConfig) NormalizedPrivateKey() string {
	return strings.ReplaceAll(f.PrivateKey, `\n`, "\n")
}

// Enabled reports whether push messaging credentials are present.
func (f FirebaseConfig) Enabled() bool {
	return f.ProjectID != "" && f.ClientEmail != "" && f.PrivateKey != ""
}

type AdminConfig struct {
	JWTSecret string `envconfig:"AMICOFRITTO_ADMIN_JWT_SECRET" required:"true"`
	JWTIssuer string `envconfig:"AMICOFRITTO_ADMIN_JWT_ISSUER" default:"amicofritto"`
}

// StoreConfig holds fallbacks used when no store_settings row exists yet.
type StoreConfig struct {
	DeliveryFee      string `envconfig:"AMICOFRITTO_STORE_DELIVERY_FEE" default:"2.50"`
	MinOrderDelivery string `envconfig:"AMICOFRITTO_STORE_MIN_ORDER_DELIVERY" default:"15.00"`
}

// MaintenanceConfig tunes the background cleanup worker.
type MaintenanceConfig struct {
	Interval       time.Duration `envconfig:"AMICOFRITTO_MAINTENANCE_INTERVAL" default:"1h"`
	TokenRetention time.Duration `envconfig:"AMICOFRITTO_MAINTENANCE_TOKEN_RETENTION" default:"1440h"`
	PendingTTL     time.Duration `envconfig:"AMICOFRITTO_MAINTENANCE_PENDING_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AMICOFRITTO_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
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
