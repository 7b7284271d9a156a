package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string

	// FrontendOrigin is the base URL embedded in invite links.
	FrontendOrigin string

	// InviteTTLHours is the invite expiry window in hours.
	InviteTTLHours int

	// HierarchyDepth caps the breadth-first expansion of a group's
	// delegation tree.
	HierarchyDepth int

	EmailHost string
	EmailPort int
	EmailUser string
	EmailPass string
}

func Load() *Config {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBUser:         getEnv("DB_USER", "nudgr"),
		DBPassword:     getEnv("DB_PASSWORD", "nudgrpassword"),
		DBName:         getEnv("DB_NAME", "nudgr"),
		RedisHost:      getEnv("REDIS_HOST", "localhost"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		SessionSecret:  getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		InviteTTLHours: getEnvInt("INVITE_TTL_HOURS", 24),
		HierarchyDepth: getEnvInt("HIERARCHY_DEPTH", 5),
		EmailHost:      getEnv("EMAIL_HOST", "smtp.gmail.com"),
		EmailPort:      getEnvInt("EMAIL_PORT", 587),
		EmailUser:      getEnv("EMAIL_USER", ""),
		EmailPass:      getEnv("EMAIL_PASS", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
