package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gatehouse-auth/gatehouse/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Store configuration
	Store StoreConfig `yaml:"store"`

	// Security configuration
	Security SecurityConfig `yaml:"security"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	BaseURL         string        `yaml:"base_url"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`
}

// StoreConfig holds token store configuration
type StoreConfig struct {
	// Backend selects the token store implementation: memory or redis.
	Backend string `yaml:"backend"`

	// Memory backend.
	MaxEntries int           `yaml:"max_entries"`
	TTL        time.Duration `yaml:"ttl"`

	// Redis backend.
	RedisURL        string `yaml:"redis_url"`
	RedisPassword   string `yaml:"-"`
	RedisDB         int    `yaml:"redis_db"`
	RedisMaxRetries int    `yaml:"redis_max_retries"`
	RedisPoolSize   int    `yaml:"redis_pool_size"`
	RedisPrefix     string `yaml:"redis_prefix"`

	// ReaperSchedule is a cron expression for the explicit cleanup pass.
	// Empty disables the reaper; both built-in backends expire entries
	// natively.
	ReaperSchedule string `yaml:"reaper_schedule"`
}

// SecurityConfig holds the security core settings
type SecurityConfig struct {
	// StateTTL bounds how long a persisted anti-forgery token stays valid.
	StateTTL time.Duration `yaml:"state_ttl"`

	// StateTokenLength is the length of generated state tokens.
	StateTokenLength int `yaml:"state_token_length"`

	// ReplayTTL is the default retention for consumed one-time artifacts.
	ReplayTTL time.Duration `yaml:"replay_ttl"`

	// TicketWaitTimeout bounds how long ticket validation waits for the
	// proxy granting ticket callback to land.
	TicketWaitTimeout time.Duration `yaml:"ticket_wait_timeout"`

	// Strategy selects the profile storage strategy: always or never.
	Strategy string `yaml:"strategy"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel `yaml:"-"`

	// LogLevelName is the YAML-facing level name, parsed into LogLevel.
	LogLevelName string `yaml:"log_level"`

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// OpenTelemetry
	OTelEnabled        bool   `yaml:"otel_enabled"`
	OTelEndpoint       string `yaml:"otel_endpoint"`
	OTelServiceName    string `yaml:"otel_service_name"`
	OTelServiceVersion string `yaml:"otel_service_version"`
	OTelInsecure       bool   `yaml:"otel_insecure"`
}

// LoadConfig loads configuration. Defaults are overlaid first with the
// YAML file named by GATEHOUSE_CONFIG_FILE (when set), then with
// environment variables, which always win.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("GATEHOUSE_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadEnv()

	if cfg.Observability.LogLevelName != "" {
		cfg.Observability.LogLevel = observability.ParseLogLevel(cfg.Observability.LogLevelName)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			BaseURL:         "http://localhost:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",
		},
		Store: StoreConfig{
			Backend:    "memory",
			MaxEntries: 10000,
			TTL:        time.Hour,
			RedisDB:    -1,
		},
		Security: SecurityConfig{
			StateTTL:          10 * time.Minute,
			StateTokenLength:  10,
			ReplayTTL:         time.Hour,
			TicketWaitTimeout: 5 * time.Second,
			Strategy:          "always",
		},
		Observability: ObservabilityConfig{
			LogLevel:           observability.InfoLevel,
			LogLevelName:       "info",
			MetricsEnabled:     true,
			OTelEnabled:        false,
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "gatehouse",
			OTelServiceVersion: "1.0.0",
			OTelInsecure:       true,
		},
	}
}

// loadFile overlays the YAML file at path onto the config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays environment variables onto the config.
func (c *Config) loadEnv() {
	c.Server.Host = getEnv("GATEHOUSE_HOST", c.Server.Host)
	c.Server.Port = getEnv("GATEHOUSE_PORT", c.Server.Port)
	c.Server.BaseURL = getEnv("GATEHOUSE_BASE_URL", c.Server.BaseURL)
	c.Server.ReadTimeout = getEnvDuration("GATEHOUSE_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("GATEHOUSE_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("GATEHOUSE_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("GATEHOUSE_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.HealthPort = getEnv("GATEHOUSE_HEALTH_PORT", c.Server.HealthPort)

	c.Store.Backend = getEnv("GATEHOUSE_STORE_BACKEND", c.Store.Backend)
	c.Store.MaxEntries = getEnvInt("GATEHOUSE_STORE_MAX_ENTRIES", c.Store.MaxEntries)
	c.Store.TTL = getEnvDuration("GATEHOUSE_STORE_TTL", c.Store.TTL)
	c.Store.RedisURL = getEnv("GATEHOUSE_REDIS_URL", c.Store.RedisURL)
	c.Store.RedisPassword = getEnv("GATEHOUSE_REDIS_PASSWORD", c.Store.RedisPassword)
	c.Store.RedisDB = getEnvInt("GATEHOUSE_REDIS_DB", c.Store.RedisDB)
	c.Store.RedisMaxRetries = getEnvInt("GATEHOUSE_REDIS_MAX_RETRIES", c.Store.RedisMaxRetries)
	c.Store.RedisPoolSize = getEnvInt("GATEHOUSE_REDIS_POOL_SIZE", c.Store.RedisPoolSize)
	c.Store.RedisPrefix = getEnv("GATEHOUSE_REDIS_PREFIX", c.Store.RedisPrefix)
	c.Store.ReaperSchedule = getEnv("GATEHOUSE_REAPER_SCHEDULE", c.Store.ReaperSchedule)

	c.Security.StateTTL = getEnvDuration("GATEHOUSE_STATE_TTL", c.Security.StateTTL)
	c.Security.StateTokenLength = getEnvInt("GATEHOUSE_STATE_TOKEN_LENGTH", c.Security.StateTokenLength)
	c.Security.ReplayTTL = getEnvDuration("GATEHOUSE_REPLAY_TTL", c.Security.ReplayTTL)
	c.Security.TicketWaitTimeout = getEnvDuration("GATEHOUSE_TICKET_WAIT_TIMEOUT", c.Security.TicketWaitTimeout)
	c.Security.Strategy = getEnv("GATEHOUSE_STRATEGY", c.Security.Strategy)

	c.Observability.LogLevelName = getEnv("GATEHOUSE_LOG_LEVEL", c.Observability.LogLevelName)
	c.Observability.MetricsEnabled = getEnvBool("GATEHOUSE_METRICS_ENABLED", c.Observability.MetricsEnabled)
	c.Observability.OTelEnabled = getEnvBool("GATEHOUSE_OTEL_ENABLED", c.Observability.OTelEnabled)
	c.Observability.OTelEndpoint = getEnv("GATEHOUSE_OTEL_ENDPOINT", c.Observability.OTelEndpoint)
	c.Observability.OTelServiceName = getEnv("GATEHOUSE_OTEL_SERVICE_NAME", c.Observability.OTelServiceName)
	c.Observability.OTelServiceVersion = getEnv("GATEHOUSE_OTEL_SERVICE_VERSION", c.Observability.OTelServiceVersion)
	c.Observability.OTelInsecure = getEnvBool("GATEHOUSE_OTEL_INSECURE", c.Observability.OTelInsecure)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Store.Backend {
	case "memory":
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis store backend")
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be memory or redis)", c.Store.Backend)
	}

	switch c.Security.Strategy {
	case "always", "never":
	default:
		return fmt.Errorf("invalid strategy: %s (must be always or never)", c.Security.Strategy)
	}

	if c.Security.StateTTL <= 0 {
		return fmt.Errorf("state TTL must be positive")
	}
	if c.Security.ReplayTTL <= 0 {
		return fmt.Errorf("replay TTL must be positive")
	}
	if c.Security.TicketWaitTimeout <= 0 {
		return fmt.Errorf("ticket wait timeout must be positive")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
