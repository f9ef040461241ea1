package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	API        APIConfig
	Allocation AllocationConfig
}

type ServerConfig struct {
	AppEnv string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AllocationConfig struct {
	RecomputeDebounce time.Duration
	BulkAddLimit      int
}

// Load reads a .env file when one exists, then the environment
func Load(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)
	return LoadEnv()
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv: getEnv("APP_ENV", "dev"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "info"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		API: APIConfig{
			BaseURL: getEnv("SUBSIDY_API_BASE_URL", "http://localhost:8000/api"),
			Timeout: time.Duration(getEnvInt("SUBSIDY_API_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Allocation: AllocationConfig{
			RecomputeDebounce: time.Duration(getEnvInt("SUBSIDY_RECOMPUTE_DEBOUNCE_MS", 200)) * time.Millisecond,
			BulkAddLimit:      getEnvInt("SUBSIDY_BULK_ADD_LIMIT", 50),
		},
	}
}

// IsDevelopment reports whether the app runs in a development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "dev" || c.Server.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
