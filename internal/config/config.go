// Package config содержит загрузку и валидацию конфигурации.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config представляет конфигурацию приложения
type Config struct {
	// Database
	DatabaseURL string

	// Telegram
	BotToken      string
	AdminUsername string
	NotifyChatID  int64

	// Spotify
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyMarket       string
	SpotifySearchLimit  int
	CatalogTimeout      time.Duration

	// Pipeline
	PipelineConfig PipelineConfig

	// Health
	HealthPort         string
	HealthCheckEnabled bool

	// Logging
	LogLevel string
	LogPath  string

	// Timezone
	Timezone string

	// App Data Directory
	AppDataDir string
}

// PipelineConfig представляет конфигурацию конвейера уведомлений
type PipelineConfig struct {
	Schedule  string
	Workers   int
	Timeout   time.Duration
	SeedOnAdd bool
}

// Load загружает конфигурацию из переменных окружения и проверяет ее
func Load() (*Config, error) {
	config := load()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// LoadStorage загружает конфигурацию, требуя только доступ к хранилищу
func LoadStorage() (*Config, error) {
	config := load()

	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("config validation failed: DB_DSN is required")
	}

	return config, nil
}

func load() *Config {
	// .env необязателен
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:         getEnv("DB_DSN", ""),
		BotToken:            getEnv("BOT_TOKEN", ""),
		AdminUsername:       getEnv("ADMIN_USERNAME", ""),
		NotifyChatID:        getEnvInt64("NOTIFY_CHAT_ID", 0),
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		SpotifyMarket:       getEnv("SPOTIFY_MARKET", "US"),
		SpotifySearchLimit:  getEnvInt("SPOTIFY_SEARCH_LIMIT", 5),
		CatalogTimeout:      getEnvDuration("CATALOG_TIMEOUT", 15*time.Second),
		PipelineConfig: PipelineConfig{
			Schedule:  getEnv("PIPELINE_SCHEDULE", "0 12 * * SUN"),
			Workers:   getEnvInt("PIPELINE_WORKERS", 4),
			Timeout:   getEnvDuration("PIPELINE_TIMEOUT", 30*time.Minute),
			SeedOnAdd: getEnvBool("SEED_ON_ADD", true),
		},
		HealthPort:         getEnv("HEALTH_PORT", "8080"),
		HealthCheckEnabled: getEnvBool("HEALTH_CHECK_ENABLED", true),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPath:            getEnv("LOG_PATH", ""),
		Timezone:           getEnv("TIMEZONE", "UTC"),
		AppDataDir:         getEnv("APP_DATA_DIR", "./data"),
	}
}

// GetAppDataDir возвращает директорию данных приложения
func (c *Config) GetAppDataDir() string {
	return c.AppDataDir
}

// LockPath возвращает путь к файлу блокировки запусков конвейера
func (c *Config) LockPath() string {
	return filepath.Join(c.AppDataDir, "pipeline.lock")
}

// Location возвращает часовой пояс расписания
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DB_DSN is required")
	}

	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	if c.NotifyChatID == 0 {
		return fmt.Errorf("NOTIFY_CHAT_ID is required")
	}

	if c.SpotifyClientID == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID is required")
	}

	if c.SpotifyClientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_SECRET is required")
	}

	if c.SpotifySearchLimit < 1 || c.SpotifySearchLimit > 50 {
		return fmt.Errorf("SPOTIFY_SEARCH_LIMIT must be between 1 and 50")
	}

	if c.PipelineConfig.Workers < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be positive")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// ValidateServe дополнительно проверяет параметры режима бота
func (c *Config) ValidateServe() error {
	if c.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required")
	}
	return nil
}

// getEnv получает переменную окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvInt64 получает переменную окружения как int64
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как time.Duration
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvBool получает переменную окружения как bool
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
