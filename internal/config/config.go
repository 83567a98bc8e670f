package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported reasoning service providers.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT issued by the auth provider
	JWTSecret   string
	JWTAudience string

	// Reasoning service
	AIProvider  string
	GroqAPIKey  string
	GroqAPIURL  string
	GroqModel   string
	GeminiKey   string
	GeminiModel string
	AITimeout   time.Duration

	// Detection
	DetectionWindow time.Duration

	// Staleness windows. These bound different trade-offs and are tuned separately.
	KnowledgeFreshness time.Duration
	BargainCacheTTL    time.Duration
	BargainRefreshAge  time.Duration

	BargainRefreshSchedule string
	SeedBenchmarks         bool

	// Logging
	LogLevel         string
	LogRetentionDays int

	// Server
	Port        string
	CORSOrigins string
	SentryDSN   string
	AppEnv      string
}

// Load reads configuration from the environment, after applying a local .env
// file when one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "subscriptcheck"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTAudience: getEnv("JWT_AUDIENCE", "authenticated"),

		AIProvider:  strings.ToLower(getEnv("AI_PROVIDER", ProviderGroq)),
		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqAPIURL:  getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1"),
		GroqModel:   getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GeminiKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel: getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AITimeout:   parseDuration(getEnv("AI_TIMEOUT", "60s"), 60*time.Second),

		DetectionWindow: parseDuration(getEnv("DETECTION_WINDOW", "4320h"), 180*24*time.Hour),

		KnowledgeFreshness: parseDuration(getEnv("KNOWLEDGE_FRESHNESS", "24h"), 24*time.Hour),
		BargainCacheTTL:    parseDuration(getEnv("BARGAIN_CACHE_TTL", "12h"), 12*time.Hour),
		BargainRefreshAge:  parseDuration(getEnv("BARGAIN_REFRESH_AGE", "24h"), 24*time.Hour),

		BargainRefreshSchedule: getEnv("BARGAIN_REFRESH_SCHEDULE", "0 4 * * *"),
		SeedBenchmarks:         getEnv("SEED_BENCHMARKS", "false") == "true",

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),

		Port:        getEnv("PORT", "8000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		AppEnv:      getEnv("APP_ENV", "development"),
	}
}

// Validate reports the first missing credential. Missing credentials are
// fatal at startup.
func (c *Config) Validate() error {
	if c.DBPassword == "" {
		return errors.New("DB_PASSWORD environment variable is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.AIProvider {
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			return errors.New("GROQ_API_KEY environment variable is required")
		}
	case ProviderGemini:
		if c.GeminiKey == "" {
			return errors.New("GEMINI_API_KEY environment variable is required")
		}
	default:
		return errors.New("AI_PROVIDER must be one of: groq, gemini")
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
