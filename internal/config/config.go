package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Hub Config
	HubURL             string `env:"HUB_URL"`
	HubSkipNegotiation bool   `env:"HUB_SKIP_NEGOTIATION" envDefault:"false"`
	HubAccessToken     string `env:"HUB_ACCESS_TOKEN"`

	// Snapshot Config
	IncidentsURL           string        `env:"INCIDENTS_URL"`
	UnitsURL               string        `env:"UNITS_URL"`
	SnapshotAPIKey         string        `env:"SNAPSHOT_API_KEY"`
	SnapshotTimeout        time.Duration `env:"SNAPSHOT_TIMEOUT" envDefault:"10s"`
	SnapshotResyncSchedule string        `env:"SNAPSHOT_RESYNC_SCHEDULE"`

	// Dashboard Config
	Station              string        `env:"STATION"`
	AlertForAllIncidents bool          `env:"ALERT_FOR_ALL_INCIDENTS" envDefault:"false"`
	AlertTimeout         time.Duration `env:"ALERT_TIMEOUT" envDefault:"120"`
	ReconnectBackoff     time.Duration `env:"RECONNECT_BACKOFF" envDefault:"5s"`
	SubscribeGroups      []string      `env:"SUBSCRIBE_GROUPS"`

	// Alert log, пустой DATABASE_URL отключает историю
	DatabaseURL string `env:"DATABASE_URL"`

	// Redis Config, пустой REDIS_ADDR отключает вебхуки
	RedisAddr string `env:"REDIS_ADDR"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"5"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		HubURL:                 os.Getenv("HUB_URL"),
		HubSkipNegotiation:     getEnvAsBool("HUB_SKIP_NEGOTIATION", false),
		HubAccessToken:         os.Getenv("HUB_ACCESS_TOKEN"),
		IncidentsURL:           os.Getenv("INCIDENTS_URL"),
		UnitsURL:               os.Getenv("UNITS_URL"),
		SnapshotAPIKey:         os.Getenv("SNAPSHOT_API_KEY"),
		SnapshotTimeout:        getEnvAsDuration("SNAPSHOT_TIMEOUT", 10*time.Second),
		SnapshotResyncSchedule: os.Getenv("SNAPSHOT_RESYNC_SCHEDULE"),
		Station:                strings.TrimSpace(os.Getenv("STATION")),
		AlertForAllIncidents:   getEnvAsBool("ALERT_FOR_ALL_INCIDENTS", false),
		AlertTimeout:           time.Duration(getEnvAsInt("ALERT_TIMEOUT", 120)) * time.Second,
		ReconnectBackoff:       getEnvAsDuration("RECONNECT_BACKOFF", 5*time.Second),
		SubscribeGroups:        getEnvAsList("SUBSCRIBE_GROUPS"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPass:              os.Getenv("REDIS_PASSWORD"),
		RedisDB:                getEnvAsInt("REDIS_DB", 0),
		WebhookURL:             os.Getenv("WEBHOOK_URL"),
		WebhookSecret:          os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:         getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:      getEnvAsInt("WEBHOOK_MAX_RETRIES", 5),
		WebhookBaseDelay:       getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		APIKeys:                getEnvAsList("API_KEYS"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"HUB_URL", c.HubURL},
		{"INCIDENTS_URL", c.IncidentsURL},
		{"UNITS_URL", c.UnitsURL},
		{"STATION", c.Station},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s environment variable is required", r.name)
		}
	}
	if c.AlertTimeout <= 0 {
		return fmt.Errorf("ALERT_TIMEOUT must be positive")
	}
	if c.WebhookMaxRetries < 1 {
		c.WebhookMaxRetries = 1
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool возвращает значение переменной окружения как bool или значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsList разбирает список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
