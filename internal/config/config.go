package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Logger   Logger   `mapstructure:"logger"`
	Auth     Auth     `mapstructure:"auth"`
	Fees     Fees     `mapstructure:"fees"`
	Insights Insights `mapstructure:"insights"`
}

// Server holds the configuration for the HTTP API server.
type Server struct {
	Port           int     `mapstructure:"port"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
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

// Auth holds the configuration for token issuance.
type Auth struct {
	Secret        string `mapstructure:"secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

// Fees holds the commission rates applied when a trade is closed.
type Fees struct {
	EntryRate float64 `mapstructure:"entry_rate"`
	ExitRate  float64 `mapstructure:"exit_rate"`
}

// Insights holds the configuration for the optional trade-review client.
// The feature is disabled when ApiKey is empty.
type Insights struct {
	Endpoint       string  `mapstructure:"endpoint"`
	ApiKey         string  `mapstructure:"apiKey"`
	Model          string  `mapstructure:"model"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
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
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.rate_limit", 50) // requests per second
	viper.SetDefault("server.rate_limit_burst", 20)
	viper.SetDefault("database.dsn", "journal.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("auth.token_ttl_hours", 72)
	viper.SetDefault("fees.entry_rate", 0.0002) // 2 bps on entry notional
	viper.SetDefault("fees.exit_rate", 0.0005)  // 5 bps on exit notional
	viper.SetDefault("insights.model", "gpt-4o-mini")
	viper.SetDefault("insights.rate_limit", 1)
	viper.SetDefault("insights.rate_limit_burst", 1)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
