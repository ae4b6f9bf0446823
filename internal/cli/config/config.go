// Package config loads weft configuration from weft.yml with environment
// overrides and sensible defaults.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the weft configuration
type Config struct {
	DevMode  bool         `mapstructure:"dev_mode"`
	CacheDir string       `mapstructure:"cache_dir"`
	Image    string       `mapstructure:"image"`
	Server   ServerConfig `mapstructure:"server"`
	Redis    RedisConfig  `mapstructure:"redis"`
	Watch    WatchConfig  `mapstructure:"watch"`
}

// ServerConfig represents dev server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// RedisConfig configures the optional redis store service backend. An empty
// Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WatchConfig configures hot reload watching
type WatchConfig struct {
	Roots    []string `mapstructure:"roots"`
	Patterns []string `mapstructure:"patterns"`
	Ignore   []string `mapstructure:"ignore"`
}

// Load loads the configuration from weft.yml or weft.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("dev_mode", false)
	v.SetDefault("cache_dir", ".weft/artifacts")
	v.SetDefault("image", "base")
	v.SetDefault("server.port", 4100)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("watch.roots", []string{"widgets"})
	v.SetDefault("watch.patterns", []string{"*.jsx", "*.tsx"})

	// Set config name and paths
	v.SetConfigName("weft")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.SetEnvPrefix("WEFT")
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}
