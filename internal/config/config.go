package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	SQLitePath    string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	SessionSecret string
	SessionStore  string
	GinMode       string
	OpenAIAPIKey  string
	KVBackend     string
	KVBoltPath    string
	LogLevel      string
	LogEncoding   string
	Timezone      string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "studyuser"),
		DBPassword:    getEnv("DB_PASSWORD", "studypassword"),
		DBName:        getEnv("DB_NAME", "study_tracker"),
		SQLitePath:    getEnv("SQLITE_PATH", "study_tracker.db"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		SessionStore:  getEnv("SESSION_STORE", "redis"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		KVBackend:     getEnv("KV_BACKEND", "bolt"),
		KVBoltPath:    getEnv("KV_BOLT_PATH", "data/guests.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogEncoding:   getEnv("LOG_ENCODING", "json"),
		Timezone:      getEnv("TIMEZONE", "Local"),
	}
}

// RedisAddr returns the host:port pair used by both session and KV clients.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
