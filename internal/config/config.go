// Package config provides configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TransportWebSocket is the only transport currently implemented. The
// Transports list stays an ordered preference so additional transports can be
// added without a config break.
const TransportWebSocket = "websocket"

// Config holds all configuration for the realtime client.
type Config struct {
	// Connection
	URL              string            `mapstructure:"url"`
	AutoConnect      bool              `mapstructure:"auto_connect"`
	HandshakeTimeout time.Duration     `mapstructure:"timeout"`
	Transports       []string          `mapstructure:"transports"`
	AuthToken        string            `mapstructure:"auth_token"`
	Query            map[string]string `mapstructure:"query"`

	// Reconnection
	Reconnection         bool          `mapstructure:"reconnection"`
	ReconnectionAttempts int           `mapstructure:"reconnection_attempts"`
	ReconnectionDelay    time.Duration `mapstructure:"reconnection_delay"`
	ReconnectionDelayMax time.Duration `mapstructure:"reconnection_delay_max"`

	// Heartbeat & queueing
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	QueueLimit        int           `mapstructure:"queue_limit"`

	// Diagnostics
	DiagnosticsPath string `mapstructure:"diagnostics_path"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Debug     bool   `mapstructure:"debug"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		AutoConnect:          false,
		HandshakeTimeout:     20 * time.Second,
		Transports:           []string{TransportWebSocket},
		Reconnection:         true,
		ReconnectionAttempts: 10,
		ReconnectionDelay:    1 * time.Second,
		ReconnectionDelayMax: 30 * time.Second,
		HeartbeatInterval:    25 * time.Second,
		QueueLimit:           1000,
		LogLevel:             "info",
		LogFormat:            "json",
	}
}

// LoadConfig loads configuration from file, environment, and defaults.
// Priority: Environment > Config file > Defaults
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("auto_connect", defaults.AutoConnect)
	v.SetDefault("timeout", defaults.HandshakeTimeout)
	v.SetDefault("transports", defaults.Transports)
	v.SetDefault("reconnection", defaults.Reconnection)
	v.SetDefault("reconnection_attempts", defaults.ReconnectionAttempts)
	v.SetDefault("reconnection_delay", defaults.ReconnectionDelay)
	v.SetDefault("reconnection_delay_max", defaults.ReconnectionDelayMax)
	v.SetDefault("heartbeat_interval", defaults.HeartbeatInterval)
	v.SetDefault("queue_limit", defaults.QueueLimit)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("debug", defaults.Debug)

	// Environment variables with RTCLIENT_ prefix
	v.SetEnvPrefix("RTCLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Ignore a missing default config file and fall back to built-in
			// defaults. Only fail when an explicitly provided path is unreadable.
			isNotFound := errors.Is(err, os.ErrNotExist)
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !isNotFound {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url must be set")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("invalid url scheme: %s (must be ws, wss, http, or https)", u.Scheme)
	}

	if len(c.Transports) == 0 {
		return fmt.Errorf("transports must not be empty")
	}
	for _, tr := range c.Transports {
		if tr != TransportWebSocket {
			return fmt.Errorf("unknown transport: %s", tr)
		}
	}

	if c.HandshakeTimeout <= 0 {
		return fmt.Errorf("handshake timeout must be positive")
	}

	if c.ReconnectionAttempts < 0 {
		return fmt.Errorf("reconnection attempts must be non-negative")
	}

	if c.ReconnectionDelay <= 0 {
		return fmt.Errorf("reconnection delay must be positive")
	}

	if c.ReconnectionDelayMax <= 0 {
		return fmt.Errorf("reconnection delay max must be positive")
	}

	if c.ReconnectionDelay > c.ReconnectionDelayMax {
		return fmt.Errorf("reconnection delay must be less than or equal to delay max")
	}

	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat interval must be positive")
	}

	if c.QueueLimit <= 0 {
		return fmt.Errorf("queue limit must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}
