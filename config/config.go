package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Booking   BookingConfig   `yaml:"booking"`
	Assistant AssistantConfig `yaml:"assistant"`
	Weather   WeatherConfig   `yaml:"weather"`
	Session   SessionConfig   `yaml:"session"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Address     string   `yaml:"address"`
	SwaggerDir  string   `yaml:"swagger_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

// StorageConfig selects the booking store: memory, postgres or mongo.
type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	Database DatabaseConfig `yaml:"database"`
	Mongo    MongoConfig    `yaml:"mongo"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type RoomConfig struct {
	Key      string `yaml:"key"`
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
}

type BookingConfig struct {
	TimeZone        string       `yaml:"time_zone"`
	DefaultResource string       `yaml:"default_resource"`
	Rooms           []RoomConfig `yaml:"rooms"`
}

type AssistantConfig struct {
	Model               string   `yaml:"model"`
	APIKey              string   `yaml:"api_key"`
	TimeoutSeconds      int      `yaml:"timeout_seconds"`
	Greeting            string   `yaml:"greeting"`
	MaxHistory          int      `yaml:"max_history"`
	Confirmations       []string `yaml:"confirmations"`
	StrictSinglePayload bool     `yaml:"strict_single_payload"`
	WholeWordConfirm    bool     `yaml:"whole_word_confirmations"`
	RatePerMinute       int      `yaml:"rate_per_minute"`
}

func (a AssistantConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

type WeatherConfig struct {
	URL             string  `yaml:"url"`
	APIKey          string  `yaml:"api_key"`
	Lat             float64 `yaml:"lat"`
	Lon             float64 `yaml:"lon"`
	Units           string  `yaml:"units"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	CacheTTLMinutes int     `yaml:"cache_ttl_minutes"`
}

func (w WeatherConfig) Enabled() bool {
	return w.APIKey != ""
}

type SessionConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"`
}

func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

type LogConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

// LoadConfig reads the YAML file at path, overlays secrets from the
// environment (and a .env file when one exists) and fills defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"GEMINI_API_KEY", &c.Assistant.APIKey},
		{"OPENWEATHER_API_KEY", &c.Weather.APIKey},
		{"DATABASE_URL", &c.Storage.Database.URL},
		{"MONGODB_URI", &c.Storage.Mongo.URI},
		{"REDIS_ADDR", &c.Redis.Addr},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	setDefault(&c.HTTP.Address, ":8080")
	setDefault(&c.GRPC.Address, ":9090")
	setDefault(&c.Storage.Driver, "memory")
	setDefault(&c.Storage.Mongo.Database, "scheduler")
	setDefault(&c.Kafka.BookingTopic, "booking-events")
	setDefault(&c.Kafka.NotificationsTopic, "booking-notifications")
	setDefault(&c.Kafka.GroupID, "roombooking-notify")
	setDefault(&c.Booking.TimeZone, "America/New_York")
	setDefault(&c.Booking.DefaultResource, "main")
	setDefault(&c.Assistant.Model, "gemini-1.5-flash")
	setDefault(&c.Assistant.Greeting, "Hey there! I'm Sunny, your booking assistant. Want to know the best time to plan an event?")
	setDefault(&c.Weather.URL, "https://api.openweathermap.org/data/3.0/onecall")
	setDefault(&c.Weather.Units, "imperial")
	setDefault(&c.Log.Env, "development")
	setDefault(&c.Log.Level, "info")

	if c.Assistant.TimeoutSeconds <= 0 {
		c.Assistant.TimeoutSeconds = 15
	}
	if c.Assistant.MaxHistory <= 0 {
		c.Assistant.MaxHistory = 20
	}
	if c.Assistant.RatePerMinute <= 0 {
		c.Assistant.RatePerMinute = 30
	}
	if c.Weather.TimeoutSeconds <= 0 {
		c.Weather.TimeoutSeconds = 5
	}
	if c.Weather.CacheTTLMinutes <= 0 {
		c.Weather.CacheTTLMinutes = 30
	}
	if c.Session.TTLMinutes <= 0 {
		c.Session.TTLMinutes = 60
	}
}

func setDefault(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}
