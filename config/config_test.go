package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "http:\n  address: \":8081\"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTP.Address)
	assert.Equal(t, ":9090", cfg.GRPC.Address)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "America/New_York", cfg.Booking.TimeZone)
	assert.Equal(t, "main", cfg.Booking.DefaultResource)
	assert.Equal(t, 15*time.Second, cfg.Assistant.Timeout())
	assert.Equal(t, time.Hour, cfg.Session.TTL())
	assert.False(t, cfg.Weather.Enabled())
	assert.Equal(t, "booking-notifications", cfg.Kafka.NotificationsTopic)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadConfig_Rooms(t *testing.T) {
	path := writeConfig(t, `
booking:
  time_zone: Europe/Berlin
  rooms:
    - key: room-1
      name: Room 1
      capacity: 12
    - key: room-2
      name: Room 2
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.Booking.TimeZone)
	require.Len(t, cfg.Booking.Rooms, 2)
	assert.Equal(t, RoomConfig{Key: "room-1", Name: "Room 1", Capacity: 12}, cfg.Booking.Rooms[0])
}

func TestLoadConfig_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("OPENWEATHER_API_KEY", "ow-key")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/rooms")
	path := writeConfig(t, "assistant:\n  api_key: from-file\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "gem-key", cfg.Assistant.APIKey)
	assert.True(t, cfg.Weather.Enabled())
	assert.Equal(t, "postgres://u:p@db/rooms", cfg.Storage.Database.DSN())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	path := writeConfig(t, "http: [")
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "localhost", Port: 5432, User: "app", Password: "secret", Name: "rooms", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=app password=secret dbname=rooms sslmode=disable", d.DSN())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Env: "production", Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	logger, err = NewLogger(LogConfig{Env: "development", Level: "nonsense"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
