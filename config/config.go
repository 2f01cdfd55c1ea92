package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config for the whole application
type Config struct {
	App     AppConfig
	API     APIConfig
	Feed    FeedConfig
	Pricing PricingConfig
}

// General application configuration
type AppConfig struct {
	Name        string
	Environment string
	LogLevel    string
}

// Configuration for the API server
type APIConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RateLimit       float64
	RateBurst       int
}

// Configuration for the Kafka quote feed
type FeedConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	Simulate bool
	Interval time.Duration
}

// Configuration for the pricing engines
type PricingConfig struct {
	Workers          int
	SpreadGridPoints int
	SpreadMaxPoints  int
	SpreadRelTol     float64
}

// Load reads the configuration from ./config/config.yaml and RATES_*
// environment variables. A missing file is fine; defaults apply.
func Load() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("RATES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "rates-engine")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.log_level", "info")

	// API defaults
	viper.SetDefault("api.host", "0.0.0.0")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("api.read_timeout", "10s")
	viper.SetDefault("api.write_timeout", "30s")
	viper.SetDefault("api.shutdown_timeout", "30s")
	viper.SetDefault("api.rate_limit", 100.0)
	viper.SetDefault("api.rate_burst", 200)

	// Feed defaults
	viper.SetDefault("feed.brokers", []string{"localhost:9092"})
	viper.SetDefault("feed.topic", "rates.quotes")
	viper.SetDefault("feed.group_id", "rates-engine")
	viper.SetDefault("feed.simulate", false)
	viper.SetDefault("feed.interval", "1s")

	// Pricing defaults
	viper.SetDefault("pricing.workers", 8)
	viper.SetDefault("pricing.spread_grid_points", 400)
	viper.SetDefault("pricing.spread_max_points", 8000)
	viper.SetDefault("pricing.spread_rel_tol", 1e-6)
}
