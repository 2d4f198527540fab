package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Refresh controls the refresh scheduler.
type Refresh struct {
	IntervalSec    int `yaml:"interval_sec"`
	MinIntervalSec int `yaml:"min_interval_sec"`
	MaxIntervalSec int `yaml:"max_interval_sec"`
}

// Fetch controls the orchestrator and the shared HTTP client.
type Fetch struct {
	TimeoutSec     int `yaml:"timeout_sec"`
	MaxConcurrency int `yaml:"max_concurrency"`
}

// Sources holds the backend endpoints. Overridable mostly for tests.
type Sources struct {
	TencentURL   string `yaml:"tencent_url"`
	EastmoneyURL string `yaml:"eastmoney_url"`
	Btc528URL    string `yaml:"btc528_url"`
	// Btc528RatePerSec caps sustained requests to the scraped site.
	// Zero disables the limiter.
	Btc528RatePerSec float64 `yaml:"btc528_rate_per_sec"`
	Btc528Burst      int     `yaml:"btc528_burst"`
}

// Watchlist holds the persisted symbol list locations.
type Watchlist struct {
	FavoritesPath string `yaml:"favorites_path"`
	IndexesPath   string `yaml:"indexes_path"`
}

type Config struct {
	Refresh   Refresh   `yaml:"refresh"`
	Fetch     Fetch     `yaml:"fetch"`
	Sources   Sources   `yaml:"sources"`
	Watchlist Watchlist `yaml:"watchlist"`
}

func Default() Config {
	return Config{
		Refresh: Refresh{
			IntervalSec:    30,
			MinIntervalSec: 5,
			MaxIntervalSec: 300,
		},
		Fetch: Fetch{
			TimeoutSec:     10,
			MaxConcurrency: 10,
		},
		Sources: Sources{
			TencentURL:       "https://qt.gtimg.cn",
			EastmoneyURL:     "https://push2.eastmoney.com/api/qt/stock/get",
			Btc528URL:        "https://www.528btc.com",
			Btc528RatePerSec: 2,
			Btc528Burst:      10,
		},
		Watchlist: Watchlist{
			FavoritesPath: "favorites.json",
			IndexesPath:   "indexes.json",
		},
	}
}

// Load reads YAML config from path. If path is empty or the file does
// not exist, it returns defaults. Environment variables override
// select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("stockquote.yaml"); err == nil {
			path = "stockquote.yaml"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("REFRESH_INTERVAL_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Refresh.IntervalSec = x
		}
	}
	if v := os.Getenv("FETCH_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Fetch.TimeoutSec = x
		}
	}
	if v := os.Getenv("FETCH_MAX_CONCURRENCY"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Fetch.MaxConcurrency = x
		}
	}
	if v := os.Getenv("TENCENT_URL"); v != "" {
		cfg.Sources.TencentURL = v
	}
	if v := os.Getenv("EASTMONEY_URL"); v != "" {
		cfg.Sources.EastmoneyURL = v
	}
	if v := os.Getenv("BTC528_URL"); v != "" {
		cfg.Sources.Btc528URL = v
	}
	if v := os.Getenv("FAVORITES_PATH"); v != "" {
		cfg.Watchlist.FavoritesPath = v
	}
	if v := os.Getenv("INDEXES_PATH"); v != "" {
		cfg.Watchlist.IndexesPath = v
	}
}

// Validate checks bounds that would otherwise surface as runtime errors.
func (c *Config) Validate() error {
	if c.Refresh.MinIntervalSec <= 0 || c.Refresh.MaxIntervalSec < c.Refresh.MinIntervalSec {
		return fmt.Errorf("refresh interval bounds invalid: min=%d max=%d", c.Refresh.MinIntervalSec, c.Refresh.MaxIntervalSec)
	}
	if c.Refresh.IntervalSec < c.Refresh.MinIntervalSec || c.Refresh.IntervalSec > c.Refresh.MaxIntervalSec {
		return fmt.Errorf("refresh.interval_sec %d out of range [%d,%d]", c.Refresh.IntervalSec, c.Refresh.MinIntervalSec, c.Refresh.MaxIntervalSec)
	}
	if c.Fetch.TimeoutSec <= 0 {
		return fmt.Errorf("fetch.timeout_sec must be positive")
	}
	if c.Fetch.MaxConcurrency <= 0 {
		return fmt.Errorf("fetch.max_concurrency must be positive")
	}
	return nil
}

// Interval returns the configured refresh interval as a duration.
func (c *Config) Interval() time.Duration { return time.Duration(c.Refresh.IntervalSec) * time.Second }

// Timeout returns the per-request HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration { return time.Duration(c.Fetch.TimeoutSec) * time.Second }
