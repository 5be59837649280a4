package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreMemory    = "memory"
)

// Config holds runtime configuration read from the environment.
type Config struct {
	Port   string
	AppEnv string

	FirebaseProjectID          string
	FirebaseServiceAccountPath string

	DeviceStore         string
	DevicesCollection   string
	DevicesPathTemplate string
	DefaultLanguage     string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ReminderSchedule is a cron spec evaluated in UTC. Empty disables reminders.
	ReminderSchedule string
	// ReminderContentFile is a JSON file with the reminder title and messages.
	// Empty uses the built-in content.
	ReminderContentFile string
}

// Load reads the configuration and validates the few settings that have a
// closed set of values.
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	cfg := &Config{
		Port:                       getEnvOrDefault("PORT", "9091"),
		AppEnv:                     getEnvOrDefault("APP_ENV", "development"),
		FirebaseProjectID:          os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseServiceAccountPath: os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
		DeviceStore:                strings.ToLower(getEnvOrDefault("DEVICE_STORE", StoreFirestore)),
		DevicesCollection:          getEnvOrDefault("DEVICES_COLLECTION", "devices"),
		DevicesPathTemplate:        getEnvOrDefault("DEVICES_PATH_TEMPLATE", "users/{userId}/devices"),
		DefaultLanguage:            getEnvOrDefault("DEFAULT_LANGUAGE", "en"),
		DatabaseURL:                databaseURL(),
		RedisAddr:                  fmt.Sprintf("%s:%s", getEnvOrDefault("REDIS_HOST", "localhost"), getEnvOrDefault("REDIS_PORT", "6379")),
		RedisPassword:              os.Getenv("REDIS_PASSWORD"),
		RedisDB:                    redisDB,
		ReminderSchedule:           os.Getenv("REMINDER_SCHEDULE"),
		ReminderContentFile:        os.Getenv("REMINDER_CONTENT_FILE"),
	}

	switch cfg.DeviceStore {
	case StoreFirestore, StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown DEVICE_STORE %q", cfg.DeviceStore)
	}
	if !strings.Contains(cfg.DevicesPathTemplate, "{userId}") {
		return nil, fmt.Errorf("DEVICES_PATH_TEMPLATE must contain {userId}: %q", cfg.DevicesPathTemplate)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := getEnvOrDefault("POSTGRES_HOST", "localhost")
	port := getEnvOrDefault("POSTGRES_PORT", "5432")
	user := getEnvOrDefault("POSTGRES_USER", "postgres")
	password := getEnvOrDefault("POSTGRES_PASSWORD", "")
	dbname := getEnvOrDefault("POSTGRES_DB", "devices")
	sslmode := getEnvOrDefault("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}

// getEnvOrDefault returns the environment variable value or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
