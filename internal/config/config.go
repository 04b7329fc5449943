package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string

	// Identity provider settings. Both must be present for session
	// resolution to succeed; their absence fails resolution closed at
	// runtime instead of failing Load, so the process still serves
	// health endpoints and redirects to login.
	IdentityURL     string
	IdentityAnonKey string
	IdentityTimeout time.Duration

	CookieDomain   string
	CookieSecure   bool
	CookieSameSite string
	LoginPath      string

	CORSAllowedOrigins []string

	APIRateLimitPerMin  int
	AuthRateLimitPerMin int

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	StatsCacheTTL time.Duration

	BootstrapAdminUserID string
	BootstrapAdminRole   string

	ReadinessProbeTimeout  time.Duration
	ServerStartGracePeriod time.Duration

	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:                  env,
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		IdentityURL:          strings.TrimRight(os.Getenv("IDENTITY_URL"), "/"),
		IdentityAnonKey:      os.Getenv("IDENTITY_ANON_KEY"),
		CookieDomain:         os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:         getEnvBool("COOKIE_SECURE", env == "production"),
		CookieSameSite:       strings.ToLower(getEnv("COOKIE_SAMESITE", "lax")),
		LoginPath:            getEnv("LOGIN_PATH", "/admin/login"),
		CORSAllowedOrigins:   splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		APIRateLimitPerMin:   getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
		AuthRateLimitPerMin:  getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		RedisEnabled:         getEnvBool("REDIS_ENABLED", false),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisPrefix:          getEnv("REDIS_PREFIX", "admin_api"),
		BootstrapAdminUserID: strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_USER_ID")),
		BootstrapAdminRole:   strings.ToLower(getEnv("BOOTSTRAP_ADMIN_ROLE", "super_admin")),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "squadup-admin-api"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	var err error
	if cfg.IdentityTimeout, err = time.ParseDuration(getEnv("IDENTITY_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("parse IDENTITY_TIMEOUT: %w", err)
	}
	if cfg.StatsCacheTTL, err = time.ParseDuration(getEnv("STATS_CACHE_TTL", "30s")); err != nil {
		return nil, fmt.Errorf("parse STATS_CACHE_TTL: %w", err)
	}
	if cfg.OTELMetricsExportInterval, err = time.ParseDuration(getEnv("OTEL_METRICS_EXPORT_INTERVAL", "10s")); err != nil {
		return nil, fmt.Errorf("parse OTEL_METRICS_EXPORT_INTERVAL: %w", err)
	}
	if cfg.ReadinessProbeTimeout, err = time.ParseDuration(getEnv("READINESS_PROBE_TIMEOUT", "2s")); err != nil {
		return nil, fmt.Errorf("parse READINESS_PROBE_TIMEOUT: %w", err)
	}
	if cfg.ServerStartGracePeriod, err = time.ParseDuration(getEnv("SERVER_START_GRACE_PERIOD", "0s")); err != nil {
		return nil, fmt.Errorf("parse SERVER_START_GRACE_PERIOD: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "20s")); err != nil {
		return nil, fmt.Errorf("parse SHUTDOWN_TIMEOUT: %w", err)
	}
	if cfg.ShutdownHTTPDrainTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("parse SHUTDOWN_HTTP_DRAIN_TIMEOUT: %w", err)
	}
	if cfg.ShutdownObservabilityTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s")); err != nil {
		return nil, fmt.Errorf("parse SHUTDOWN_OBSERVABILITY_TIMEOUT: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.IdentityURL != "" {
		if _, err := url.Parse(c.IdentityURL); err != nil {
			errs = append(errs, "IDENTITY_URL must be a valid URL")
		}
	}
	if c.CookieSameSite != "lax" && c.CookieSameSite != "strict" && c.CookieSameSite != "none" {
		errs = append(errs, "COOKIE_SAMESITE must be one of lax, strict, none")
	}
	if !strings.HasPrefix(c.LoginPath, "/") {
		errs = append(errs, "LOGIN_PATH must start with /")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.BootstrapAdminRole != "moderator" && c.BootstrapAdminRole != "admin" && c.BootstrapAdminRole != "super_admin" {
		errs = append(errs, "BOOTSTRAP_ADMIN_ROLE must be one of moderator, admin, super_admin")
	}
	if c.IdentityTimeout <= 0 {
		errs = append(errs, "IDENTITY_TIMEOUT must be > 0")
	}
	if c.StatsCacheTTL < 0 {
		errs = append(errs, "STATS_CACHE_TTL must be >= 0")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// IdentityConfigured reports whether session resolution can reach the
// identity provider at all. False means every resolve fails closed.
func (c *Config) IdentityConfigured() bool {
	return c.IdentityURL != "" && c.IdentityAnonKey != ""
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
