package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 服务配置
type Config struct {
	Listen string     `yaml:"listen"` // HTTP 监听地址
	DBPath string     `yaml:"db_path"`
	Log    LogConfig  `yaml:"log"`
	Auth   AuthConfig `yaml:"auth"`
	Ledger Ledger     `yaml:"ledger"`
	Oracle Oracle     `yaml:"oracle"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// AuthConfig 认证配置
// TokenSecret 优先从环境变量 GOPAPER_TOKEN_SECRET 读取，其次 secretstore。
type AuthConfig struct {
	SecretStorePath string `yaml:"secret_store_path"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

// Ledger 账本配置
type Ledger struct {
	StartingBalance string `yaml:"starting_balance"` // decimal string, e.g. "10000"
}

// Oracle 报价源配置
type Oracle struct {
	Mode                string            `yaml:"mode"` // "static" | "http"
	StaticPrices        map[string]string `yaml:"static_prices"`
	BaseURL             string            `yaml:"base_url"`
	QuoteTimeoutSeconds int               `yaml:"quote_timeout_seconds"`
	CacheTTLSeconds     int               `yaml:"cache_ttl_seconds"`
	RatePerSecond       int               `yaml:"rate_per_second"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		DBPath: "data/gopaper.db",
		Log: LogConfig{
			Level:      "info",
			File:       "logs/gopaper.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Auth: AuthConfig{
			SecretStorePath: "data/secrets",
			TokenTTLMinutes: 24 * 60,
		},
		Ledger: Ledger{StartingBalance: "10000"},
		Oracle: Oracle{
			Mode: "static",
			StaticPrices: map[string]string{
				"AAPL": "150",
				"TSLA": "800",
				"MSFT": "300",
			},
			QuoteTimeoutSeconds: 5,
			CacheTTLSeconds:     2,
			RatePerSecond:       20,
		},
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置有效性
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	switch c.Oracle.Mode {
	case "static":
		if len(c.Oracle.StaticPrices) == 0 {
			return fmt.Errorf("oracle.static_prices is empty")
		}
	case "http":
		if c.Oracle.BaseURL == "" {
			return fmt.Errorf("oracle.base_url is required for http mode")
		}
	default:
		return fmt.Errorf("oracle.mode must be static or http, got %q", c.Oracle.Mode)
	}
	if c.Oracle.QuoteTimeoutSeconds <= 0 {
		c.Oracle.QuoteTimeoutSeconds = 5
	}
	return nil
}
