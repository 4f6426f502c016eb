package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port        int
	LogLevel    string
	ServiceName string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Bonus report: agents loaded in parallel
	BonusConcurrency int

	// Session cache
	SessionTTL time.Duration
	RedisURL   string

	// Observability
	OTLPEndpoint string

	// Supabase
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string
	JWTSecret          string

	// UseEdgeFunctions forwards user management to the deployed edge
	// functions instead of calling the auth admin API directly.
	UseEdgeFunctions bool

	// Calendar
	CalendarSaturdayRest   bool
	CalendarComputeMovable bool

	// Vacation reminders look this many days ahead
	ReminderDaysAhead int

	// Rate limiting (auth and user-management routes, per client IP)
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:        getEnvInt("PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ServiceName: getEnv("SERVICE_NAME", "agendamento-bff"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		BonusConcurrency: getEnvInt("BONUS_CONCURRENCY", 8),

		SessionTTL: getEnvDuration("SESSION_TTL", time.Hour),
		RedisURL:   getEnv("REDIS_URL", ""),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		JWTSecret:          getEnv("SUPABASE_JWT_SECRET", getEnv("JWT_SECRET", "")),

		UseEdgeFunctions: getEnvBool("USE_EDGE_FUNCTIONS", false),

		CalendarSaturdayRest:   getEnvBool("CALENDAR_SATURDAY_REST", false),
		CalendarComputeMovable: getEnvBool("CALENDAR_COMPUTE_MOVABLE", false),

		ReminderDaysAhead: getEnvInt("REMINDER_DAYS_AHEAD", 30),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
