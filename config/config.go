package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Sync    SyncConfig
	KPI     KPIConfig
	Notify  NotifyConfig
	Redis   RedisConfig
	App     AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type BackendConfig struct {
	URL       string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

type SyncConfig struct {
	Transports       []string
	RefreshInterval  time.Duration
	ReconnectEnabled bool
	ReconnectInitial time.Duration
	ReconnectMax     time.Duration
	// zero retries forever
	ReconnectMaxAttempts int
}

// KPIConfig holds the optimistic acceptance adjustments
type KPIConfig struct {
	DelayStep      float64
	AcceptanceStep float64
	AcceptanceCap  float64
}

type NotifyConfig struct {
	Enabled bool
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	AlertChannel string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		},
		Backend: BackendConfig{
			URL:       getEnv("RAILOPTIX_BACKEND_URL", "https://railoptx-sih25.onrender.com"),
			Timeout:   getEnvAsDuration("BACKEND_TIMEOUT", 30*time.Second),
			RateLimit: getEnvAsFloat("BACKEND_RATE_LIMIT", 5),
			RateBurst: getEnvAsInt("BACKEND_RATE_BURST", 10),
		},
		Sync: SyncConfig{
			Transports:           getEnvAsList("SYNC_TRANSPORTS", []string{"websocket", "polling"}),
			RefreshInterval:      getEnvAsDuration("SYNC_REFRESH_INTERVAL", 10*time.Second),
			ReconnectEnabled:     getEnvAsBool("SYNC_RECONNECT_ENABLED", true),
			ReconnectInitial:     getEnvAsDuration("SYNC_RECONNECT_INITIAL", time.Second),
			ReconnectMax:         getEnvAsDuration("SYNC_RECONNECT_MAX", 30*time.Second),
			ReconnectMaxAttempts: getEnvAsInt("SYNC_RECONNECT_MAX_ATTEMPTS", 0),
		},
		KPI: KPIConfig{
			DelayStep:      getEnvAsFloat("KPI_DELAY_STEP", 2),
			AcceptanceStep: getEnvAsFloat("KPI_ACCEPTANCE_STEP", 1),
			AcceptanceCap:  getEnvAsFloat("KPI_ACCEPTANCE_CAP", 95),
		},
		Notify: NotifyConfig{
			Enabled: getEnvAsBool("NOTIFY_ENABLED", true),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", ""),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			AlertChannel: getEnv("REDIS_ALERT_CHANNEL", "railoptix:alerts"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("RAILOPTIX_BACKEND_URL must be an absolute http(s) url, got %q", c.Backend.URL)
	}

	if len(c.Sync.Transports) == 0 {
		return fmt.Errorf("SYNC_TRANSPORTS must name at least one transport")
	}
	for _, t := range c.Sync.Transports {
		if t != "websocket" && t != "polling" {
			return fmt.Errorf("SYNC_TRANSPORTS: unsupported transport %q", t)
		}
	}

	if c.Sync.RefreshInterval < time.Second {
		return fmt.Errorf("SYNC_REFRESH_INTERVAL must be at least 1s")
	}
	if c.Sync.ReconnectMaxAttempts < 0 {
		return fmt.Errorf("SYNC_RECONNECT_MAX_ATTEMPTS must not be negative")
	}

	if c.KPI.AcceptanceCap <= 0 || c.KPI.AcceptanceCap > 100 {
		return fmt.Errorf("KPI_ACCEPTANCE_CAP must be in (0, 100]")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
