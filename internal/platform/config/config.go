// Package config はYAMLファイルと環境変数からアプリケーション設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr               string        `yaml:"addr"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	HTTPClient struct {
		Timeout   time.Duration `yaml:"timeout"`
		UserAgent string        `yaml:"user_agent"`
	} `yaml:"http_client"`
	Crypto   MarketConfig `yaml:"crypto"`
	Equities MarketConfig `yaml:"equities"`
}

// MarketConfig configures one asset class.
type MarketConfig struct {
	BaseURL         string        `yaml:"base_url"`
	APIKey          string        `yaml:"api_key"`
	Assets          []string      `yaml:"assets"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.CORSAllowedOrigins = splitList(v)
	}

	// Log
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	// CoinGecko
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		cfg.Crypto.BaseURL = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.Crypto.APIKey = v
	}

	// Alpha Vantage. フロントエンド由来の変数名も受け付ける
	if v := os.Getenv("NEXT_PUBLIC_ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.Equities.APIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.Equities.APIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_BASE_URL"); v != "" {
		cfg.Equities.BaseURL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if len(cfg.Server.CORSAllowedOrigins) == 0 {
		cfg.Server.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTPClient.Timeout == 0 {
		cfg.HTTPClient.Timeout = 10 * time.Second
	}

	if len(cfg.Crypto.Assets) == 0 {
		cfg.Crypto.Assets = []string{"bitcoin", "ethereum", "binancecoin", "cardano", "solana", "ripple"}
	}
	if cfg.Crypto.RefreshInterval == 0 {
		cfg.Crypto.RefreshInterval = 30 * time.Second
	}
	if len(cfg.Equities.Assets) == 0 {
		cfg.Equities.Assets = []string{"SPY", "AAPL", "AMZN", "TSLA", "MSFT", "GOOGL", "NVDA"}
	}
	if cfg.Equities.RefreshInterval == 0 {
		cfg.Equities.RefreshInterval = 60 * time.Second
	}
}

// Validate checks value ranges. A missing Alpha Vantage key is not an error here:
// the equities view reports it instead.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.HTTPClient.Timeout < 0 {
		return fmt.Errorf("http_client.timeout must not be negative")
	}
	for name, m := range map[string]MarketConfig{"crypto": c.Crypto, "equities": c.Equities} {
		if m.RefreshInterval < time.Second {
			return fmt.Errorf("%s.refresh_interval must be at least 1s, got %s", name, m.RefreshInterval)
		}
		seen := make(map[string]struct{}, len(m.Assets))
		for _, a := range m.Assets {
			if strings.TrimSpace(a) == "" {
				return fmt.Errorf("%s.assets contains an empty identifier", name)
			}
			if _, dup := seen[a]; dup {
				return fmt.Errorf("%s.assets contains %q twice", name, a)
			}
			seen[a] = struct{}{}
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
