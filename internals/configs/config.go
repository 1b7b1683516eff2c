package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string
	Release  string

	JWTSecret string
	AccessTTL time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL  string
	SentryDSN string

	CurrencyURL     string
	CurrencyTimeout time.Duration
	FallbackUSDRate float64

	CenterUTCOffsetHours int
	MigrateOnStart       bool
	CORSOrigins          []string

	SuperAdminUsername string
	SuperAdminPassword string
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			zap.S().Info(".env not found, using system environment")
		} else {
			zap.S().Info(".env loaded")
		}
	} else {
		zap.S().Info("running in Railway, using system environment")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || value == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// Load reads the process environment into a Config. Call LoadEnv first
// when a .env file should be honoured.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      GetEnv("APP_ENV", "dev"),
		Port:     GetEnv("PORT", "3000"),
		LogLevel: GetEnv("LOG_LEVEL", "info"),
		Release:  GetEnv("RELEASE"),

		JWTSecret: GetEnv("JWT_SECRET"),
		AccessTTL: durationEnv("ACCESS_TOKEN_TTL", 24*time.Hour),

		DBHost:     GetEnv("DB_HOST", "localhost"),
		DBPort:     GetEnv("DB_PORT", "5432"),
		DBUser:     GetEnv("DB_USER", "postgres"),
		DBPassword: GetEnv("DB_PASSWORD"),
		DBName:     GetEnv("DB_NAME", "educenter"),
		DBSSLMode:  GetEnv("DB_SSLMODE", "disable"),

		RedisURL:  GetEnv("REDIS_URL"),
		SentryDSN: GetEnv("SENTRY_DSN"),

		CurrencyURL:     GetEnv("CURRENCY_URL", "https://www.floatrates.com/daily/uzs.json"),
		CurrencyTimeout: durationEnv("CURRENCY_TIMEOUT", 3*time.Second),
		FallbackUSDRate: floatEnv("FALLBACK_USD_RATE", 0.000079),

		CenterUTCOffsetHours: intEnv("CENTER_UTC_OFFSET_HOURS", 5),
		MigrateOnStart:       boolEnv("MIGRATE_ON_START", false),
		CORSOrigins:          splitList(GetEnv("CORS_ORIGINS", "http://localhost:5173")),

		SuperAdminUsername: GetEnv("SUPERADMIN_USERNAME"),
		SuperAdminPassword: GetEnv("SUPERADMIN_PASSWORD"),
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}

// DSN keeps the per-statement timeout at the connection level.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=educenter&options=-c%%20statement_timeout=5000",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) IsProd() bool {
	return strings.EqualFold(c.Env, "prod")
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(GetEnv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func intEnv(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(GetEnv(key)))
	if err != nil {
		return def
	}
	return n
}

func floatEnv(key string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(GetEnv(key)), 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

func boolEnv(key string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(GetEnv(key)))
	if err != nil {
		return def
	}
	return b
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
