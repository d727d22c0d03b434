package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	HTTP struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"http"`
	DataSource struct {
		Provider        string        `yaml:"provider"` // yahoo, alpaca or mock
		FetchTimeout    time.Duration `yaml:"fetch_timeout"`
		AlpacaAPIKey    string        `yaml:"alpaca_api_key"`
		AlpacaAPISecret string        `yaml:"alpaca_api_secret"`
	} `yaml:"data_source"`
	Cache struct {
		TTL           time.Duration `yaml:"ttl"`
		ChartTTL      time.Duration `yaml:"chart_ttl"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
	} `yaml:"cache"`
	Chart struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"chart"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Watchlist struct {
		Tickers      []string `yaml:"tickers"`
		Cron         string   `yaml:"cron"`
		PruneCron    string   `yaml:"prune_cron"`
		LookbackDays int      `yaml:"lookback_days"`
		StateFile    string   `yaml:"state_file"`
	} `yaml:"watchlist"`
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
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse FETCH_TIMEOUT: %w", err)
		}
		cfg.DataSource.FetchTimeout = d
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.DataSource.AlpacaAPIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.DataSource.AlpacaAPISecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Telegram.ChatID = id
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Watchlist.Tickers = splitList(v)
	}
	if v := os.Getenv("CRON_WATCHLIST"); v != "" {
		cfg.Watchlist.Cron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	cfg.DataSource.Provider = strings.ToLower(cfg.DataSource.Provider)
	if cfg.DataSource.FetchTimeout == 0 {
		cfg.DataSource.FetchTimeout = 15 * time.Second
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 10 * time.Minute
	}
	if cfg.Cache.ChartTTL == 0 {
		cfg.Cache.ChartTTL = time.Minute
	}
	if cfg.Chart.Width == 0 {
		cfg.Chart.Width = 1000
	}
	if cfg.Chart.Height == 0 {
		cfg.Chart.Height = 480
	}
	if cfg.Watchlist.Cron == "" {
		cfg.Watchlist.Cron = "0 30 22 * * 1-5"
	}
	if cfg.Watchlist.PruneCron == "" {
		cfg.Watchlist.PruneCron = "0 */5 * * * *"
	}
	if cfg.Watchlist.LookbackDays == 0 {
		cfg.Watchlist.LookbackDays = 180
	}
	if cfg.Watchlist.StateFile == "" {
		cfg.Watchlist.StateFile = "data/watch_state.json"
	}
	for i, t := range cfg.Watchlist.Tickers {
		cfg.Watchlist.Tickers[i] = strings.ToUpper(strings.TrimSpace(t))
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// AlertsEnabled reports whether Telegram alerts can be sent.
func (c *Config) AlertsEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != 0
}

// Validate checks that settings are consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "alpaca":
		if c.DataSource.AlpacaAPIKey == "" || c.DataSource.AlpacaAPISecret == "" {
			return fmt.Errorf("data_source.alpaca_api_key and alpaca_api_secret are required for the alpaca provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.FetchTimeout < 0 {
		return fmt.Errorf("data_source.fetch_timeout must be positive")
	}
	if c.Cache.TTL < 0 || c.Cache.ChartTTL < 0 {
		return fmt.Errorf("cache ttl must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Watchlist.LookbackDays < 2 {
		return fmt.Errorf("watchlist.lookback_days must be at least 2")
	}
	return nil
}
