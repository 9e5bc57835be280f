package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"ibancheck/pkg/platform/middleware/metadata"
	strutil "ibancheck/pkg/platform/strings"
)

// Audit backends.
// DevSigningKey is the JWT_SIGNING_KEY used when none is configured. It is
// only acceptable while authentication is optional.
const DevSigningKey = "dev-secret-key-change-in-production"

const (
	AuditBackendNone     = "none"
	AuditBackendMemory   = "memory"
	AuditBackendPostgres = "postgres"
	AuditBackendKafka    = "kafka"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr      string
	LogLevel  string
	LogFormat string

	// Validation tuning
	Workers  int
	MaxBatch int

	// TrustedProxies lists the peers whose X-Forwarded-For and X-Real-IP
	// headers name the client; anyone else is keyed on its own address.
	TrustedProxies []string

	Auth      AuthConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Audit     AuditConfig
}

// AuthConfig controls bearer-token authentication of API callers.
type AuthConfig struct {
	Required      bool
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	AdminToken    string
}

// RateLimitConfig bounds requests per caller in a window.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// RedisConfig configures the optional Redis connection. An empty URL means
// rate limiting stays in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuditConfig selects where validation audit events go.
type AuditConfig struct {
	Backend        string
	DatabaseURL    string
	KafkaBrokers   []string
	KafkaTopic     string
	BufferSize     int
	FingerprintKey string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:      getEnv("IBANCHECK_ADDR", ":8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		Workers:   getEnvInt("IBAN_WORKERS", runtime.GOMAXPROCS(0)),
		MaxBatch:  getEnvInt("IBAN_MAX_BATCH", 1000),

		TrustedProxies: strutil.SplitList(os.Getenv("TRUSTED_PROXIES"), ","),

		Auth: AuthConfig{
			Required:      os.Getenv("AUTH_REQUIRED") == "true",
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", DevSigningKey),
			JWTIssuer:     getEnv("JWT_ISSUER", "ibancheck"),
			JWTAudience:   getEnv("JWT_AUDIENCE", "ibancheck-api"),
			AdminToken:    os.Getenv("ADMIN_API_TOKEN"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getEnv("RATELIMIT_ENABLED", "true") == "true",
			Requests: getEnvInt("RATELIMIT_REQUESTS", 120),
			Window:   getEnvDuration("RATELIMIT_WINDOW", time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Audit: AuditConfig{
			Backend:        getEnv("AUDIT_BACKEND", AuditBackendMemory),
			DatabaseURL:    os.Getenv("DATABASE_URL"),
			KafkaBrokers:   strutil.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			KafkaTopic:     getEnv("KAFKA_AUDIT_TOPIC", "ibancheck.audit"),
			BufferSize:     getEnvInt("AUDIT_BUFFER_SIZE", 10000),
			FingerprintKey: os.Getenv("AUDIT_FINGERPRINT_KEY"),
		},
	}
}

// Validate rejects settings that cannot work together.
func (s Server) Validate() error {
	var errs []error
	if s.Workers < 1 {
		errs = append(errs, fmt.Errorf("IBAN_WORKERS must be at least 1, got %d", s.Workers))
	}
	if s.MaxBatch < 1 {
		errs = append(errs, fmt.Errorf("IBAN_MAX_BATCH must be at least 1, got %d", s.MaxBatch))
	}
	if s.Auth.Required && (s.Auth.JWTSigningKey == "" || s.Auth.JWTSigningKey == DevSigningKey) {
		errs = append(errs, errors.New("JWT_SIGNING_KEY must be set to a non-default key when AUTH_REQUIRED=true"))
	}
	if _, err := metadata.ParseTrustedProxies(s.TrustedProxies); err != nil {
		errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}
	if s.RateLimit.Enabled && (s.RateLimit.Requests < 1 || s.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("RATELIMIT_REQUESTS and RATELIMIT_WINDOW must be positive"))
	}
	switch s.Audit.Backend {
	case AuditBackendNone, AuditBackendMemory:
	case AuditBackendPostgres:
		if s.Audit.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres audit backend"))
		}
	case AuditBackendKafka:
		if len(s.Audit.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS is required for the kafka audit backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUDIT_BACKEND %q", s.Audit.Backend))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
