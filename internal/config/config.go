package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Quote struct {
		Provider   string  `yaml:"provider"` // alphavantage, yahoo or mock
		BaseURL    string  `yaml:"base_url"`
		APIKey     string  `yaml:"api_key"`
		Symbol     string  `yaml:"symbol"`
		Interval   string  `yaml:"interval"`
		TimeoutSec int     `yaml:"timeout_sec"` // 0 means no timeout
		MockPrice  float64 `yaml:"mock_price"`
	} `yaml:"quote"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Prediction struct {
		Enabled *bool  `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"prediction"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Display struct {
		Owners map[string]string `yaml:"owners"`
	} `yaml:"display"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("QUOTE_PROVIDER"); v != "" {
		cfg.Quote.Provider = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.Quote.APIKey = v
	}
	if v := os.Getenv("STOCK_SYMBOL"); v != "" {
		cfg.Quote.Symbol = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("PREDICTION_URL"); v != "" {
		cfg.Prediction.URL = v
	}
	if v := os.Getenv("PREDICTION_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Prediction.Enabled = &b
		}
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Quote.Provider == "" {
		cfg.Quote.Provider = "alphavantage"
	}
	if cfg.Quote.BaseURL == "" {
		cfg.Quote.BaseURL = "https://www.alphavantage.co/query"
	}
	if cfg.Quote.Symbol == "" {
		cfg.Quote.Symbol = "AAPL"
	}
	if cfg.Quote.Interval == "" {
		cfg.Quote.Interval = "1min"
	}
	if cfg.Quote.MockPrice == 0 {
		cfg.Quote.MockPrice = 100
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "@every 300s"
	}
	if cfg.Prediction.Enabled == nil {
		enabled := true
		cfg.Prediction.Enabled = &enabled
	}
	if cfg.Prediction.URL == "" {
		cfg.Prediction.URL = "http://localhost:5000/predict"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	return cfg, nil
}

// PredictionEnabled reports whether the startup prediction call should run.
func (c *Config) PredictionEnabled() bool {
	return c.Prediction.Enabled != nil && *c.Prediction.Enabled
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.Quote.Provider {
	case "alphavantage":
		if c.Quote.APIKey == "" {
			return fmt.Errorf("quote.api_key is required for the alphavantage provider")
		}
	case "yahoo", "mock":
	default:
		return fmt.Errorf("quote.provider %q is not one of alphavantage, yahoo, mock", c.Quote.Provider)
	}
	if c.Quote.Symbol == "" {
		return fmt.Errorf("quote.symbol is required")
	}
	if c.Quote.TimeoutSec < 0 {
		return fmt.Errorf("quote.timeout_sec must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
