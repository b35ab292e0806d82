// Package config loads Equion's server configuration from an optional YAML
// file plus environment-variable overrides, in the style of the teacher's
// internal/config (github.com/frisksitron/lobby): read file if present,
// apply env overrides, fill defaults, then validate.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	// Path is the sqlite file path, overridden by EQUION_DATABASE_URL per
	// spec §6 Environment.
	Path string `yaml:"path"`
}

type StorageConfig struct {
	UploadMaxBytes int64 `yaml:"upload_max_bytes"`
}

type AuthConfig struct {
	// TokenBytes is the byte length of generated session tokens (16 bytes
	// == 128 bits per spec §3).
	TokenBytes int `yaml:"token_bytes"`
}

type WebSocketConfig struct {
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	HeartbeatDeadline time.Duration `yaml:"heartbeat_deadline"`
}

func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file — continue with env vars + defaults.
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envInt64(key string, dst *int64) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = i
		}
	}
}

func (c *Config) applyEnvOverrides() {
	envString("EQUION_DATABASE_URL", &c.Database.Path)
	envString("EQUION_HOST", &c.Server.Host)
	envInt("EQUION_PORT", &c.Server.Port)
	envInt64("EQUION_UPLOAD_MAX_BYTES", &c.Storage.UploadMaxBytes)
}

func (c *Config) validate() error {
	if c.Storage.UploadMaxBytes < 0 {
		return fmt.Errorf("storage.upload_max_bytes must be >= 0")
	}
	if c.Auth.TokenBytes < 16 {
		return fmt.Errorf("auth.token_bytes must be >= 16 (128 bits)")
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/equion.db"
	}
	if c.Storage.UploadMaxBytes == 0 {
		c.Storage.UploadMaxBytes = 10 * 1024 * 1024
	}
	if c.Auth.TokenBytes == 0 {
		c.Auth.TokenBytes = 16
	}
	if c.WebSocket.HeartbeatInterval == 0 {
		c.WebSocket.HeartbeatInterval = 5 * time.Second
	}
	if c.WebSocket.HeartbeatDeadline == 0 {
		c.WebSocket.HeartbeatDeadline = 10 * time.Second
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
