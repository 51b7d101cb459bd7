package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "drobe"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "DROBE_DB_DSN"
	EnvDBHost = "DROBE_DB_HOST"
	EnvDBUser = "DROBE_DB_USER"
	EnvDBName = "DROBE_DB_NAME"

	StorageBackendFS  = "fs"
	StorageBackendGCS = "gcs"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Storage       StorageConfig
	Upload        UploadConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Scripts       ScriptsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DROBE_APP_ENV" required:"true"`
	Port         string `envconfig:"DROBE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DROBE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DROBE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DROBE_DB_DSN"`
	Driver string `envconfig:"DROBE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DROBE_DB_HOST"`
	LegacyPort     int    `envconfig:"DROBE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DROBE_DB_USER"`
	LegacyPassword string `envconfig:"DROBE_DB_PASSWORD"`
	LegacyName     string `envconfig:"DROBE_DB_NAME"`
	LegacySSLMode  string `envconfig:"DROBE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DROBE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DROBE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DROBE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DROBE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DROBE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DROBE_REDIS_ADDR"`
	Password     string        `envconfig:"DROBE_REDIS_PASSWORD"`
	DB           int           `envconfig:"DROBE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DROBE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DROBE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DROBE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DROBE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DROBE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DROBE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DROBE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DROBE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"DROBE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DROBE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DROBE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DROBE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DROBE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DROBE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DROBE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DROBE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DROBE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DROBE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DROBE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DROBE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DROBE_AUTO_MIGRATE" default:"false"`
}

type StorageConfig struct {
	Backend       string `envconfig:"DROBE_STORAGE_BACKEND" default:"fs"`
	UploadsDir    string `envconfig:"DROBE_STORAGE_UPLOADS_DIR" default:"uploads"`
	ContentPrefix string `envconfig:"DROBE_STORAGE_CONTENT_PREFIX" default:"/content"`
}

func (s StorageConfig) validate() error {
	switch s.Backend {
	case StorageBackendFS, StorageBackendGCS:
		return nil
	}
	return fmt.Errorf("unknown storage backend %q", s.Backend)
}

type UploadConfig struct {
	MaxUploadMB       int      `envconfig:"DROBE_MAX_UPLOAD_MB" default:"5"`
	AllowedExtensions []string `envconfig:"DROBE_UPLOAD_ALLOWED_EXTENSIONS" default:"jpg,jpeg,png,gif"`
}

// MaxUploadBytes returns the configured image size ceiling in bytes.
func (u UploadConfig) MaxUploadBytes() int64 {
	return int64(u.MaxUploadMB) * 1024 * 1024
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DROBE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"DROBE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DROBE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"DROBE_GCS_BUCKET_NAME"`
	PublicBase string `envconfig:"DROBE_GCS_PUBLIC_BASE"`
}

type ScriptsConfig struct {
	WeatherCommand   []string      `envconfig:"DROBE_WEATHER_COMMAND" default:"python3,scripts/weather.py"`
	RecommendCommand []string      `envconfig:"DROBE_RECOMMEND_COMMAND" default:"python3,scripts/recommendation.py"`
	Timeout          time.Duration `envconfig:"DROBE_SCRIPT_TIMEOUT" default:"30s"`
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
