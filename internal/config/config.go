package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates the runtime settings the service needs to boot.
type Config struct {
	Port            string
	DBPath          string
	LogLevel        string
	JWTSecret       string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	PushSubscriber  string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, optionally seeded
// from a .env file, and applies defaults.
func Load() Config {
	_ = godotenv.Load(".env")

	return Config{
		Port:            getString("HEARTH_PORT", "8080"),
		DBPath:          getString("HEARTH_DB_PATH", "hearth.db"),
		LogLevel:        getString("HEARTH_LOG_LEVEL", "info"),
		JWTSecret:       os.Getenv("HEARTH_JWT_SECRET"),
		VAPIDPublicKey:  os.Getenv("HEARTH_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("HEARTH_VAPID_PRIVATE_KEY"),
		PushSubscriber:  getString("HEARTH_PUSH_SUBSCRIBER", "mailto:noreply@hearth.app"),
		ReadTimeout:     getDuration("HEARTH_READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("HEARTH_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:     getDuration("HEARTH_IDLE_TIMEOUT", 120*time.Second),
		ShutdownTimeout: getDuration("HEARTH_SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
