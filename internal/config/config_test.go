package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "APP_ENV", "DEVICE_STORE", "DEVICES_COLLECTION", "DEVICES_PATH_TEMPLATE",
		"DEFAULT_LANGUAGE", "DATABASE_URL", "REDIS_HOST", "REDIS_PORT", "REDIS_DB", "REMINDER_SCHEDULE", "REMINDER_CONTENT_FILE",
		"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_SSLMODE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9091", cfg.Port)
	assert.Equal(t, StoreFirestore, cfg.DeviceStore)
	assert.Equal(t, "devices", cfg.DevicesCollection)
	assert.Equal(t, "users/{userId}/devices", cfg.DevicesPathTemplate)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "postgres://postgres:@localhost:5432/devices?sslmode=disable", cfg.DatabaseURL)
	assert.Empty(t, cfg.ReminderSchedule)
	assert.Empty(t, cfg.ReminderContentFile)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DEVICE_STORE", "Memory")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("APP_ENV", "production")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REMINDER_CONTENT_FILE", "/etc/devices/reminder.json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.DeviceStore)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "/etc/devices/reminder.json", cfg.ReminderContentFile)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("store", func(t *testing.T) {
		t.Setenv("DEVICE_STORE", "mongo")
		_, err := Load()
		assert.ErrorContains(t, err, "unknown DEVICE_STORE")
	})
	t.Run("redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "zero")
		_, err := Load()
		assert.ErrorContains(t, err, "invalid REDIS_DB")
	})
	t.Run("path template", func(t *testing.T) {
		t.Setenv("DEVICES_PATH_TEMPLATE", "devices")
		_, err := Load()
		assert.ErrorContains(t, err, "{userId}")
	})
}
