// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings such as
// server timeouts, logging, the backing store, identity tokens, sessions,
// realtime chat limits, rate limiting, and observability.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/game-catalog-backend/internal/sysutil"
)

// Environment names accepted by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store drivers accepted by DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Session backends accepted by SESSION_BACKEND.
const (
	SessionBackendDB    = "db"
	SessionBackendRedis = "redis"
)

// CORSConfig defines Cross-Origin Resource Sharing settings. The same
// allow-list is used to check the Origin of realtime upgrades.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "game-catalog-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// AuthConfig holds identity token settings.
type AuthConfig struct {
	JWTSecret string        // JWT_SECRET (required)
	TokenTTL  time.Duration // JWT_TTL
	Issuer    string        // JWT_ISSUER
}

// SessionConfig holds server-side session settings.
type SessionConfig struct {
	Backend    string        // db|redis
	TTL        time.Duration // sliding expiry
	CookieName string
	RedisAddr  string
}

// ChatConfig holds realtime channel limits.
type ChatConfig struct {
	MaxBodyRunes  int           // longest accepted message body
	MaxFrameBytes int64         // per-frame budget; 0 derives it from MaxBodyRunes
	SendBuffer    int           // per-connection outbound queue
	RateRPS       float64       // inbound events per second per connection
	RateBurst     int           // inbound burst per connection
	NATSURL       string        // optional cross-instance relay
	PingInterval  time.Duration // keepalive ping period
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test
	AppEnv            string        // development|production

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Store
	DBDriver string // sqlite|postgres
	DBDSN    string // file path for sqlite, connection string for postgres

	// Identity
	Auth    AuthConfig
	Session SessionConfig

	// Realtime
	Chat ChatConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// IsProduction reports whether the app runs with production cookie policy.
// ChatFrameOverhead is the frame allowance beyond the message body: the
// envelope keys, the author, and the display time.
const ChatFrameOverhead = 4 << 10

// MinChatFrameBytes is the smallest frame budget that holds a body of
// bodyRunes runes even when every rune arrives as a JSON surrogate-pair
// escape (12 bytes).
func MinChatFrameBytes(bodyRunes int) int64 {
	return int64(bodyRunes)*12 + ChatFrameOverhead
}

func (c Config) IsProduction() bool { return c.AppEnv == EnvProduction }

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),
		AppEnv:            strings.ToLower(getenv("APP_ENV", EnvDevelopment)),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// Store
		DBDriver: strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
		DBDSN:    getenv("DB_DSN", ""),

		// Identity
		Auth: AuthConfig{
			JWTSecret: getenv("JWT_SECRET", ""),
			TokenTTL:  getdur("JWT_TTL", time.Hour),
			Issuer:    getenv("JWT_ISSUER", "game-catalog-backend"),
		},
		Session: SessionConfig{
			Backend:    strings.ToLower(getenv("SESSION_BACKEND", SessionBackendDB)),
			TTL:        getdur("SESSION_TTL", 30*time.Minute),
			CookieName: getenv("SESSION_COOKIE_NAME", "sid"),
			RedisAddr:  getenv("REDIS_ADDR", "localhost:6379"),
		},

		// Realtime
		Chat: ChatConfig{
			MaxBodyRunes:  getint("CHAT_MAX_BODY_RUNES", 2000),
			MaxFrameBytes: int64(getint("CHAT_MAX_FRAME_BYTES", 0)),
			SendBuffer:    getint("CHAT_SEND_BUFFER", 256),
			RateRPS:       getfloat("CHAT_RATE_RPS", 10),
			RateBurst:     getint("CHAT_RATE_BURST", 20),
			NATSURL:       getenv("NATS_URL", ""),
			PingInterval:  getdur("CHAT_PING_INTERVAL", 54*time.Second),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "game-catalog-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	switch cfg.AppEnv {
	case "prod":
		cfg.AppEnv = EnvProduction
	case "dev", "":
		cfg.AppEnv = EnvDevelopment
	}
	if cfg.DBDriver == "sqlite3" {
		cfg.DBDriver = DriverSQLite
	}
	if cfg.DBDriver == "postgresql" || cfg.DBDriver == "pgx" {
		cfg.DBDriver = DriverPostgres
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	switch cfg.AppEnv {
	case EnvDevelopment, EnvProduction:
	default:
		return cfg, errors.New("APP_ENV must be one of: development, production")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if strings.TrimSpace(cfg.DBDSN) == "" {
		return cfg, errors.New("DB_DSN must not be empty")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return cfg, errors.New("JWT_SECRET must not be empty")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return cfg, errors.New("JWT_TTL must be > 0")
	}
	switch cfg.Session.Backend {
	case SessionBackendDB:
	case SessionBackendRedis:
		if strings.TrimSpace(cfg.Session.RedisAddr) == "" {
			return cfg, errors.New("REDIS_ADDR must not be empty when SESSION_BACKEND=redis")
		}
	default:
		return cfg, errors.New("SESSION_BACKEND must be one of: db, redis")
	}
	if cfg.Session.TTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if strings.TrimSpace(cfg.Session.CookieName) == "" {
		return cfg, errors.New("SESSION_COOKIE_NAME must not be empty")
	}
	if cfg.Chat.MaxBodyRunes <= 0 || cfg.Chat.MaxFrameBytes < 0 || cfg.Chat.SendBuffer <= 0 {
		return cfg, errors.New("chat limits must be > 0")
	}
	minFrame := MinChatFrameBytes(cfg.Chat.MaxBodyRunes)
	if cfg.Chat.MaxFrameBytes == 0 {
		cfg.Chat.MaxFrameBytes = minFrame
	}
	if cfg.Chat.MaxFrameBytes < minFrame {
		return cfg, fmt.Errorf("CHAT_MAX_FRAME_BYTES must be >= %d for CHAT_MAX_BODY_RUNES=%d", minFrame, cfg.Chat.MaxBodyRunes)
	}
	if cfg.Chat.RateRPS < 0 || cfg.Chat.RateBurst < 1 {
		return cfg, errors.New("CHAT_RATE_RPS must be >= 0 and CHAT_RATE_BURST >= 1")
	}
	if cfg.Chat.PingInterval <= 0 {
		return cfg, errors.New("CHAT_PING_INTERVAL must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if b, known := sysutil.ParseBool(v); known {
			return b
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
