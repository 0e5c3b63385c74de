package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"EQUIPVIZ_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"EQUIPVIZ_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"EQUIPVIZ_REDIS_ADDR"`
		Password string `yaml:"password" env:"EQUIPVIZ_REDIS_PASSWORD"`
	} `yaml:"redis"`
	JWT struct {
		Secret               string `yaml:"secret" env:"EQUIPVIZ_JWT_SECRET"`
		AccessExpiresMinutes int    `yaml:"accessExpiresInMinutes" env:"EQUIPVIZ_JWT_ACCESS_EXPIRES_MINUTES"`
		RefreshExpiresHours  int    `yaml:"refreshExpiresInHours" env:"EQUIPVIZ_JWT_REFRESH_EXPIRES_HOURS"`
	} `yaml:"jwt"`
	Retention struct {
		MaxDatasets int `yaml:"maxDatasets" env:"EQUIPVIZ_MAX_DATASETS"`
	} `yaml:"retention"`
	Upload struct {
		MaxSizeMB  int    `yaml:"maxSizeMb" env:"EQUIPVIZ_UPLOAD_MAX_SIZE_MB"`
		Duplicates string `yaml:"duplicates" env:"EQUIPVIZ_UPLOAD_DUPLICATES"`
	} `yaml:"upload"`
}

// Load reads configuration and applies defaults and validation.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.Addr = "localhost:6379"
	cfg.JWT.AccessExpiresMinutes = 60
	cfg.JWT.RefreshExpiresHours = 168
	cfg.Retention.MaxDatasets = 5
	cfg.Upload.MaxSizeMB = 10
	cfg.Upload.Duplicates = "keep_first"

	if err := hydrate(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database DSN is required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr is required")
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("config: jwt secret is required")
	}
	if cfg.JWT.AccessExpiresMinutes <= 0 {
		cfg.JWT.AccessExpiresMinutes = 60
	}
	if cfg.JWT.RefreshExpiresHours <= 0 {
		cfg.JWT.RefreshExpiresHours = 168
	}
	if cfg.Retention.MaxDatasets <= 0 {
		cfg.Retention.MaxDatasets = 5
	}
	if cfg.Upload.MaxSizeMB <= 0 {
		cfg.Upload.MaxSizeMB = 10
	}
	switch cfg.Upload.Duplicates {
	case "keep_first", "keep_last", "reject":
	default:
		return nil, fmt.Errorf("config: unknown duplicate policy %q", cfg.Upload.Duplicates)
	}

	return cfg, nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// AccessTokenTTL converts the configured access token expiry to duration.
func (c *Config) AccessTokenTTL() time.Duration {
	if c.JWT.AccessExpiresMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWT.AccessExpiresMinutes) * time.Minute
}

// RefreshTokenTTL converts the configured refresh token expiry to duration.
func (c *Config) RefreshTokenTTL() time.Duration {
	if c.JWT.RefreshExpiresHours <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(c.JWT.RefreshExpiresHours) * time.Hour
}

// MaxUploadBytes returns the upload size cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Upload.MaxSizeMB) << 20
}
