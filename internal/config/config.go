package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Server
	Port string

	// Session store
	StoreDriver string // "memory" | "sqlite" | "postgres" | "redis"
	DBPath      string // SQLite path
	DBUrl       string // Postgres DSN
	RedisAddr   string
	RedisPass   string
	RedisDB     int

	// Upstream auth service
	AuthBaseURL string

	// Cookies
	TokenCookieName  string
	SessionCookie    string
	CookieExpiryDays int

	// Navigation
	NavTreePath string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		StoreDriver:      getEnv("DASHGATE_STORE_DRIVER", "memory"),
		DBPath:           getEnv("DASHGATE_DB_PATH", "./data/sessions.db"),
		DBUrl:            getEnv("DASHGATE_DATABASE_URL", ""),
		RedisAddr:        getEnv("DASHGATE_REDIS_ADDR", "localhost:6379"),
		RedisPass:        getEnv("DASHGATE_REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("DASHGATE_REDIS_DB", 0),
		AuthBaseURL:      getEnv("DASHGATE_AUTH_BASE_URL", "http://localhost:9000"),
		TokenCookieName:  getEnv("DASHGATE_TOKEN_COOKIE", "token"),
		SessionCookie:    getEnv("DASHGATE_SESSION_COOKIE", "dashgate_sid"),
		CookieExpiryDays: getEnvInt("DASHGATE_COOKIE_EXPIRY_DAYS", 7),
		NavTreePath:      getEnv("DASHGATE_NAV_TREE", "./configs/navigation.yaml"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
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
