package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Crawler CrawlerConfig
	Browser BrowserConfig
	Fetch   FetchConfig
	Logging LoggingConfig
}

type CrawlerConfig struct {
	BaseURL        string
	DataRoot       string
	SettleDelay    time.Duration
	BlockedBackoff time.Duration
	SkipExisting   bool
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
}

type FetchConfig struct {
	Timeout    time.Duration
	RetryCount int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Crawler: CrawlerConfig{
			BaseURL:        getEnvOrDefault("CRAWLER_BASE_URL", "https://stockx.com/"),
			DataRoot:       getEnvOrDefault("CRAWLER_DATA_ROOT", "./data"),
			SettleDelay:    getDurationOrDefault("CRAWLER_SETTLE_DELAY", 2*time.Second),
			BlockedBackoff: getDurationOrDefault("CRAWLER_BLOCKED_BACKOFF", 30*time.Minute),
			SkipExisting:   getBoolOrDefault("CRAWLER_SKIP_EXISTING", false),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			UserAgent:      getEnvOrDefault("BROWSER_USER_AGENT", defaultUserAgent),
		},
		Fetch: FetchConfig{
			Timeout:    getDurationOrDefault("FETCH_TIMEOUT", 30*time.Second),
			RetryCount: getIntOrDefault("FETCH_RETRY_COUNT", 2),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Crawler.BaseURL == "" {
		return fmt.Errorf("CRAWLER_BASE_URL must not be empty")
	}

	if c.Crawler.DataRoot == "" {
		return fmt.Errorf("CRAWLER_DATA_ROOT must not be empty")
	}

	if c.Crawler.SettleDelay < 0 {
		return fmt.Errorf("CRAWLER_SETTLE_DELAY must not be negative")
	}

	if c.Crawler.BlockedBackoff <= 0 {
		return fmt.Errorf("CRAWLER_BLOCKED_BACKOFF must be positive")
	}

	if c.Fetch.RetryCount < 0 {
		return fmt.Errorf("FETCH_RETRY_COUNT must not be negative")
	}

	return nil
}

// SneakersRoot is where page CSV files are written, one directory per
// category.
func (c *Config) SneakersRoot() string {
	return filepath.Join(c.Crawler.DataRoot, "sneakers")
}

// ImagesRoot is where downloaded product images are written, mirroring
// the category layout of SneakersRoot.
func (c *Config) ImagesRoot() string {
	return filepath.Join(c.Crawler.DataRoot, "images")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
