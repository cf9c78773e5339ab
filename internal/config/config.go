package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Weather WeatherConfig
	DB      DBConfig
	Server  ServerConfig
	Log     LogConfig
}

// WeatherConfig holds settings for the weather provider
type WeatherConfig struct {
	APIKey      string
	BaseURL     string
	Units       string
	IconBaseURL string
	// HTTPTimeout of zero leaves the transport default in place
	HTTPTimeout time.Duration
}

const (
	DefaultWeatherBaseURL = "https://api.openweathermap.org/data/2.5"
	DefaultIconBaseURL    = "https://openweathermap.org/img/wn"
	DefaultUnits          = "imperial"
)

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds database configuration for the city catalog
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		if c.Name != "" && c.Name != "cityweather" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	timeout, err := getEnvAsDuration("WEATHER_HTTP_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Weather: WeatherConfig{
			APIKey:      os.Getenv("WEATHER_API_KEY"),
			BaseURL:     strings.TrimRight(getEnv("WEATHER_BASE_URL", DefaultWeatherBaseURL), "/"),
			Units:       getEnv("WEATHER_UNITS", DefaultUnits),
			IconBaseURL: strings.TrimRight(getEnv("WEATHER_ICON_BASE_URL", DefaultIconBaseURL), "/"),
			HTTPTimeout: timeout,
		},
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "cityweather"),
			Password: getEnv("DB_PASSWORD", "cityweather_password"),
			Name:     getEnv("DB_NAME", "cityweather"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	// bare integers are seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
