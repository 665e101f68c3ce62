// Package config provides application configuration management.
//
// # Overview
//
// This package loads and validates configuration from an optional YAML file
// overlaid with environment variables, with sensible defaults for all
// settings. Environment variables always win.
//
// # Configuration Structure
//
// Server settings:
//
//	GATEHOUSE_HOST="0.0.0.0"
//	GATEHOUSE_PORT="8080"
//	GATEHOUSE_BASE_URL="https://rp.example.com"
//	GATEHOUSE_HEALTH_PORT="9090"
//	GATEHOUSE_READ_TIMEOUT="15s"
//
// Store settings:
//
//	GATEHOUSE_STORE_BACKEND="redis"  # memory, redis
//	GATEHOUSE_STORE_TTL="1h"
//	GATEHOUSE_REDIS_URL="redis://localhost:6379"
//	GATEHOUSE_REDIS_POOL_SIZE="10"
//	GATEHOUSE_REAPER_SCHEDULE="@every 15m"
//
// Security settings:
//
//	GATEHOUSE_STATE_TTL="10m"
//	GATEHOUSE_STATE_TOKEN_LENGTH="10"
//	GATEHOUSE_REPLAY_TTL="1h"
//	GATEHOUSE_TICKET_WAIT_TIMEOUT="5s"
//	GATEHOUSE_STRATEGY="always"  # always, never
//
// Observability settings:
//
//	GATEHOUSE_LOG_LEVEL="info"  # debug, info, warn, error
//	GATEHOUSE_METRICS_ENABLED="true"
//	GATEHOUSE_OTEL_ENABLED="true"
//	GATEHOUSE_OTEL_ENDPOINT="otel-collector:4317"
//
// A YAML file named by GATEHOUSE_CONFIG_FILE is applied between defaults
// and environment:
//
//	store:
//	  backend: redis
//	  redis_url: redis://localhost:6379
//	security:
//	  state_ttl: 10m
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Store: %s\n", cfg.Store.Backend)
//
// # Related Packages
//
//   - pkg/store: uses store configuration
//   - pkg/observability: uses observability configuration
package config
