package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
	Logger     Logger     `mapstructure:"logger"`
	MarketData MarketData `mapstructure:"market_data"`
	Trading    Trading    `mapstructure:"trading"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port       int    `mapstructure:"port"`
	CORSOrigin string `mapstructure:"cors_origin"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MarketData holds the configuration for the exchange data gateway.
type MarketData struct {
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	SymbolCacheTTL int     `mapstructure:"symbol_cache_ttl"` // seconds
	SnapshotDepth  int     `mapstructure:"snapshot_depth"`   // order book levels per side
}

// Trading holds the configuration for the paper-trading simulation.
type Trading struct {
	InitialBalance float64 `mapstructure:"initial_balance"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.cors_origin", "*")
	viper.SetDefault("database.dsn", "database.sqlite")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("market_data.rate_limit", 20) // requests per second
	viper.SetDefault("market_data.rate_limit_burst", 5)
	viper.SetDefault("market_data.symbol_cache_ttl", 300)
	viper.SetDefault("market_data.snapshot_depth", 20)
	viper.SetDefault("trading.initial_balance", 100000.00)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
