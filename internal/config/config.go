package config

import (
	"strings"
	"time"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Store       StoreConfig       `yaml:"store"`
	Auth        AuthConfig        `yaml:"auth"`
	Audit       AuditConfig       `yaml:"audit"`
	Idempotency IdempotencyConfig `yaml:"idempotency"`
	Usage       UsageConfig       `yaml:"usage"`
	Storage     StorageConfig     `yaml:"storage"`
	Log         LogConfig         `yaml:"log"`
	CORS        CORSConfig        `yaml:"cors"`
	RateLimit   RateLimitConfig   `yaml:"ratelimit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"   env:"DATABASE_MIGRATE_ON_START"   env-default:"false"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver" env:"STORE_DRIVER" env-default:"memory"`
}

// AuthConfig holds token and login lockout settings.
type AuthConfig struct {
	JWTSecret         string        `yaml:"jwt_secret"          env:"AUTH_JWT_SECRET"          env-required:"true"`
	JWTIssuer         string        `yaml:"jwt_issuer"          env:"AUTH_JWT_ISSUER"          env-default:"entitlements"`
	AccessTokenTTL    time.Duration `yaml:"access_token_ttl"    env:"AUTH_ACCESS_TOKEN_TTL"    env-default:"15m"`
	MaxLoginAttempts  int           `yaml:"max_login_attempts"  env:"AUTH_MAX_LOGIN_ATTEMPTS"  env-default:"5"`
	LockoutDuration   time.Duration `yaml:"lockout_duration"    env:"AUTH_LOCKOUT_DURATION"    env-default:"15m"`
	BcryptCost        int           `yaml:"bcrypt_cost"         env:"AUTH_BCRYPT_COST"         env-default:"10"`
	BootstrapAdmin    string        `yaml:"bootstrap_admin"     env:"AUTH_BOOTSTRAP_ADMIN"`
	BootstrapPassword string        `yaml:"bootstrap_password"  env:"AUTH_BOOTSTRAP_PASSWORD"`
}

// AuditConfig holds audit log retention.
type AuditConfig struct {
	Capacity int `yaml:"capacity" env:"AUDIT_CAPACITY" env-default:"10000"`
}

// IdempotencyConfig holds purchase key retention. Zero keeps keys forever.
type IdempotencyConfig struct {
	Retention     time.Duration `yaml:"retention"      env:"IDEMPOTENCY_RETENTION"      env-default:"0s"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"IDEMPOTENCY_SWEEP_INTERVAL" env-default:"1h"`
}

// UsageConfig holds usage tracking settings.
type UsageConfig struct {
	HistoryCap int `yaml:"history_cap" env:"USAGE_HISTORY_CAP" env-default:"5000"`
}

// StorageConfig holds S3 object storage settings for media uploads.
// An empty Bucket selects the in-memory object store.
type StorageConfig struct {
	Bucket          string `yaml:"bucket"            env:"STORAGE_BUCKET"`
	Region          string `yaml:"region"            env:"STORAGE_REGION"            env-default:"us-east-1"`
	Endpoint        string `yaml:"endpoint"          env:"STORAGE_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id"     env:"STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"STORAGE_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `yaml:"use_path_style"    env:"STORAGE_USE_PATH_STYLE"    env-default:"true"`
	MaxUploadMB     int    `yaml:"max_upload_mb"     env:"STORAGE_MAX_UPLOAD_MB"     env-default:"512"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// RateLimitConfig holds token bucket settings for abuse-prone endpoints.
type RateLimitConfig struct {
	LoginPerMinute    int           `yaml:"login_per_minute"    env:"RATELIMIT_LOGIN_PER_MINUTE"    env-default:"10"`
	PurchasePerMinute int           `yaml:"purchase_per_minute" env:"RATELIMIT_PURCHASE_PER_MINUTE" env-default:"30"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"    env:"RATELIMIT_CLEANUP_INTERVAL"    env-default:"5m"`
}

// SplitList splits a comma-separated setting into trimmed, non-empty parts.
func SplitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
