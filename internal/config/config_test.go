package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"QUOTE_PROVIDER", "ALPHAVANTAGE_API_KEY", "STOCK_SYMBOL", "REFRESH_CRON",
		"PREDICTION_URL", "PREDICTION_ENABLED", "LISTEN_ADDR",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "SQLITE_PATH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Quote.Provider != "alphavantage" || cfg.Quote.Symbol != "AAPL" || cfg.Quote.Interval != "1min" {
		t.Errorf("unexpected quote defaults: %+v", cfg.Quote)
	}
	if cfg.Schedule.RefreshCron != "@every 300s" {
		t.Errorf("unexpected refresh cron %q", cfg.Schedule.RefreshCron)
	}
	if !cfg.PredictionEnabled() || cfg.Prediction.URL != "http://localhost:5000/predict" {
		t.Errorf("unexpected prediction defaults: %+v", cfg.Prediction)
	}
	if cfg.Database.SQLitePath != "" {
		t.Errorf("persistence should be off by default, got %q", cfg.Database.SQLitePath)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be off by default")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
quote:
  api_key: file-key
  symbol: MSFT
prediction:
  enabled: false
display:
  owners:
    stockPrice: prediction
`)
	clearEnv(t)
	t.Setenv("STOCK_SYMBOL", "TSLA")
	t.Setenv("LISTEN_ADDR", ":9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Quote.APIKey != "file-key" {
		t.Errorf("expected file api key, got %q", cfg.Quote.APIKey)
	}
	if cfg.Quote.Symbol != "TSLA" {
		t.Errorf("env should override symbol, got %q", cfg.Quote.Symbol)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected :9090, got %q", cfg.Server.Addr)
	}
	if cfg.PredictionEnabled() {
		t.Error("prediction should be disabled by file")
	}
	if cfg.Display.Owners["stockPrice"] != "prediction" {
		t.Errorf("unexpected owners %v", cfg.Display.Owners)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "quote: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"alphavantage without key", func(c *Config) {}, true},
		{"alphavantage with key", func(c *Config) { c.Quote.APIKey = "k" }, false},
		{"yahoo without key", func(c *Config) { c.Quote.Provider = "yahoo" }, false},
		{"unknown provider", func(c *Config) { c.Quote.Provider = "bloomberg" }, true},
		{"negative timeout", func(c *Config) { c.Quote.APIKey = "k"; c.Quote.TimeoutSec = -1 }, true},
		{"half telegram", func(c *Config) { c.Quote.APIKey = "k"; c.Telegram.BotToken = "t" }, true},
	}
	clearEnv(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
