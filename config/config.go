package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Match feed configuration
	KafkaBrokers      string
	MatchFeedTopic    string
	MatchFeedGroupID  string

	// Redis configuration (optional; empty disables the pool cache and
	// the settlement advisory lock)
	RedisAddr string

	// Server configuration
	HTTPPort    string
	MetricsPort string

	// Account configuration
	StartingBalance int64

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		KafkaBrokers:     os.Getenv("KAFKA_BROKERS"),
		MatchFeedTopic:   "match-lifecycle",
		MatchFeedGroupID: "settlement-engine",

		RedisAddr: os.Getenv("REDIS_ADDR"),

		HTTPPort:    "8080",
		MetricsPort: "9090",

		StartingBalance: 10000,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if topic := os.Getenv("MATCH_FEED_TOPIC"); topic != "" {
		config.MatchFeedTopic = topic
	}
	if group := os.Getenv("MATCH_FEED_GROUP_ID"); group != "" {
		config.MatchFeedGroupID = group
	}
	if port := os.Getenv("HTTP_PORT"); port != "" {
		config.HTTPPort = port
	}
	if port := os.Getenv("METRICS_PORT"); port != "" {
		config.MetricsPort = port
	}
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsedBalance
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.KafkaBrokers == "" {
			return nil, fmt.Errorf("KAFKA_BROKERS is required")
		}
	}

	return config, nil
}
