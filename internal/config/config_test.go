package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.HTTP.Addr)
	}
	if cfg.DataSource.Provider != "yahoo" {
		t.Errorf("provider = %q", cfg.DataSource.Provider)
	}
	if cfg.DataSource.FetchTimeout != 15*time.Second {
		t.Errorf("fetch timeout = %v", cfg.DataSource.FetchTimeout)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("cache ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Database.SQLitePath != "" {
		t.Errorf("audit log should be off by default, got %q", cfg.Database.SQLitePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.AlertsEnabled() {
		t.Error("alerts should be disabled without telegram settings")
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":9090"
data_source:
  provider: Alpaca
  fetch_timeout: 5s
  alpaca_api_key: key
  alpaca_api_secret: secret
cache:
  ttl: 1m
watchlist:
  tickers: [" aapl", "msft "]
  lookback_days: 90
telegram:
  bot_token: token
  chat_id: 42
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" || cfg.DataSource.Provider != "alpaca" {
		t.Errorf("unexpected http/provider: %+v", cfg)
	}
	if cfg.DataSource.FetchTimeout != 5*time.Second || cfg.Cache.TTL != time.Minute {
		t.Errorf("durations not parsed: %v %v", cfg.DataSource.FetchTimeout, cfg.Cache.TTL)
	}
	if len(cfg.Watchlist.Tickers) != 2 || cfg.Watchlist.Tickers[0] != "AAPL" || cfg.Watchlist.Tickers[1] != "MSFT" {
		t.Errorf("tickers = %v", cfg.Watchlist.Tickers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
	if !cfg.AlertsEnabled() {
		t.Error("alerts should be enabled")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "http:\n  addr: \":9090\"\n")
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("DATA_PROVIDER", "mock")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("WATCHLIST", "spy, qqq,,")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("SQLITE_PATH", "/tmp/audit.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Errorf("addr = %q", cfg.HTTP.Addr)
	}
	if cfg.DataSource.Provider != "mock" || cfg.DataSource.FetchTimeout != 3*time.Second {
		t.Errorf("data source = %+v", cfg.DataSource)
	}
	if len(cfg.Watchlist.Tickers) != 2 || cfg.Watchlist.Tickers[1] != "QQQ" {
		t.Errorf("tickers = %v", cfg.Watchlist.Tickers)
	}
	if cfg.Telegram.ChatID != -100123 {
		t.Errorf("chat id = %d", cfg.Telegram.ChatID)
	}
	if cfg.Database.SQLitePath != "/tmp/audit.db" {
		t.Errorf("sqlite path = %q", cfg.Database.SQLitePath)
	}
}

func TestLoad_BadInput(t *testing.T) {
	if _, err := Load(writeConfig(t, "http: [")); err == nil {
		t.Error("expected parse error")
	}
	t.Setenv("FETCH_TIMEOUT", "soon")
	if _, err := Load(writeConfig(t, "")); err == nil {
		t.Error("expected FETCH_TIMEOUT error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"alpaca without keys", func(c *Config) { c.DataSource.Provider = "alpaca" }},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "t" }},
		{"short lookback", func(c *Config) { c.Watchlist.LookbackDays = 1 }},
	}
	for _, tt := range tests {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}
