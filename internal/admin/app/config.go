package app

import (
	"os"
	"strconv"
	"time"

	"github.com/katsuhira/adminlite/pkg/sessionx"
)

// defaultAdminPassword is only suitable for local development. Startup
// warns loudly whenever it is in effect.
const defaultAdminPassword = "admin123!"

type Config struct {
	AppName       string // Optional: issuer claim for session tokens (default: adminlite)
	AdminPassword string // Optional: bootstrap admin password (default: dev-only fallback)

	DatabaseFile  string        // Optional: path to SQLite database file (default: ./adminlite.db)
	MasterKey     string        // Optional: inline master key for sealing signing keys
	MasterKeyFile string        // Optional: path to master key file (default: ./master.key, created if missing)
	SessionTTL    time.Duration // Optional: session cookie lifetime (default: 8h)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// UsingDefaultAdminPassword reports whether the insecure fallback password
// is in effect.
func (c Config) UsingDefaultAdminPassword() bool {
	return c.AdminPassword == defaultAdminPassword
}

func LoadConfig() Config {
	return Config{
		AppName:       getEnvOrDefault("ADMIN_APP_NAME", "adminlite"),
		AdminPassword: getEnvOrDefault("ADMIN_PASSWORD", defaultAdminPassword),

		DatabaseFile:  getEnvOrDefault("ADMIN_DATABASE_FILE", "adminlite.db"),
		MasterKey:     os.Getenv("ADMIN_MASTER_KEY"), // Optional: wins over the key file
		MasterKeyFile: getEnvOrDefault("ADMIN_MASTER_KEY_FILE", "master.key"),
		SessionTTL:    getEnvDurationOrDefault("ADMIN_SESSION_TTL", sessionx.DefaultSessionTTL),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
