package app

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrConfig is returned by Config.Validate.
var ErrConfig = errors.New("invalid config")

// Session store backends.
const (
	SessionStoreAuto     = "auto"
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
	SessionStoreMemory   = "memory"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string // json | pretty
	LogColor  bool

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBSchema    string
	DBMaxConns  int32
	DBMinConns  int32

	RedisURL    string
	RedisPrefix string

	// SessionStore picks the session backend. "auto" prefers Redis, then
	// Postgres, then memory.
	SessionStore string

	// LayoutsFile overrides the embedded page skeleton layouts.
	LayoutsFile string

	MetricsEnabled bool

	// If true, /readyz returns 503 unless a database is configured and reachable.
	ReadinessRequireDB bool

	// If true, STOREFRONT_TOKEN_HMAC_KEY must be set (>= 32 bytes) and session
	// token digests are HMAC-based.
	RequireTokenHMAC bool

	// SeedEmail and SeedPassword create an account at startup if it does
	// not exist yet.
	SeedEmail    string
	SeedPassword string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("STOREFRONT_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("STOREFRONT_LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(EnvString("STOREFRONT_LOG_FORMAT", "json")),
		LogColor:  EnvBool("STOREFRONT_LOG_COLOR", false),

		ReadHeaderTimeout: EnvDuration("STOREFRONT_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("STOREFRONT_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("STOREFRONT_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("STOREFRONT_HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   EnvDuration("STOREFRONT_HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),

		MaxHeaderBytes: EnvInt("STOREFRONT_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("STOREFRONT_DATABASE_URL", ""),
		DBSchema:    EnvString("STOREFRONT_DB_SCHEMA", "storefront"),
		DBMaxConns:  EnvInt32("STOREFRONT_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("STOREFRONT_DB_MIN_CONNS", 0),

		RedisURL:    EnvString("STOREFRONT_REDIS_URL", ""),
		RedisPrefix: EnvString("STOREFRONT_REDIS_PREFIX", "sf:sess"),

		SessionStore: strings.ToLower(EnvString("STOREFRONT_SESSION_STORE", SessionStoreAuto)),
		LayoutsFile:  EnvString("STOREFRONT_LAYOUTS_FILE", ""),

		MetricsEnabled: EnvBool("STOREFRONT_METRICS_ENABLED", true),

		ReadinessRequireDB: EnvBool("STOREFRONT_READINESS_REQUIRE_DB", false),
		RequireTokenHMAC:   EnvBool("STOREFRONT_REQUIRE_TOKEN_HMAC", false),

		SeedEmail:    EnvString("STOREFRONT_SEED_EMAIL", ""),
		SeedPassword: EnvString("STOREFRONT_SEED_PASSWORD", ""),
	}
}

// Validate rejects inconsistent settings.
func (c Config) Validate() error {
	switch c.LogFormat {
	case "", "json", "pretty":
	default:
		return fmt.Errorf("%w: STOREFRONT_LOG_FORMAT=%q", ErrConfig, c.LogFormat)
	}

	switch c.SessionStore {
	case "", SessionStoreAuto, SessionStoreMemory:
	case SessionStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: session store postgres needs STOREFRONT_DATABASE_URL", ErrConfig)
		}
	case SessionStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: session store redis needs STOREFRONT_REDIS_URL", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: STOREFRONT_SESSION_STORE=%q", ErrConfig, c.SessionStore)
	}

	if (c.SeedEmail == "") != (c.SeedPassword == "") {
		return fmt.Errorf("%w: STOREFRONT_SEED_EMAIL and STOREFRONT_SEED_PASSWORD go together", ErrConfig)
	}
	return nil
}

// sessionBackend resolves "auto" against the configured connections.
func (c Config) sessionBackend() string {
	switch c.SessionStore {
	case SessionStorePostgres, SessionStoreRedis, SessionStoreMemory:
		return c.SessionStore
	}
	switch {
	case c.RedisURL != "":
		return SessionStoreRedis
	case c.DatabaseURL != "":
		return SessionStorePostgres
	default:
		return SessionStoreMemory
	}
}
