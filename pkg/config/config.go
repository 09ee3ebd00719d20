package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable the loader reads
const EnvPrefix = "PAGESCRAPER_"

// Config holds all configuration options for the page scraper
type Config struct {
	// What to enumerate
	Target TargetConfig `yaml:"target" json:"target"`

	// Where to write
	Output OutputConfig `yaml:"output" json:"output"`

	// Per-request behaviour
	Download DownloadConfig `yaml:"download" json:"download"`

	// Retry policy, disabled unless max_attempts > 1
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Politeness delay, disabled unless requests_per_second > 0
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TargetConfig describes the enumerated URL space:
// {base_url}/{page_prefix}_{n}/{i}{image_extension}
type TargetConfig struct {
	BaseURL          string `yaml:"base_url" json:"base_url"`
	PagePrefix       string `yaml:"page_prefix" json:"page_prefix"`
	StartPage        int    `yaml:"start_page" json:"start_page"`
	EndPage          int    `yaml:"end_page" json:"end_page"`
	ImageExtension   string `yaml:"image_extension" json:"image_extension"`
	MaxImagesPerPage int    `yaml:"max_images_per_page" json:"max_images_per_page"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`
	ChunkSize       int           `yaml:"chunk_size" json:"chunk_size"`
	ConcurrentPages int           `yaml:"concurrent_pages" json:"concurrent_pages"`
	UserAgent       string        `yaml:"user_agent" json:"user_agent"`
}

// RetryConfig holds the optional retry policy. Strategy is "exponential" or
// "constant"; the constant strategy waits InitialBackoff between attempts.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" json:"max_attempts"`
	Strategy       string        `yaml:"strategy" json:"strategy"`
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" json:"max_backoff"`
	Multiplier     float64       `yaml:"multiplier" json:"multiplier"`
}

// RateLimitConfig holds the optional request pacing
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	File    string `yaml:"file" json:"file"`
	NoColor bool   `yaml:"no_color" json:"no_color"`
}

// DefaultConfig returns a Config instance with sensible defaults.
// BaseURL and EndPage have no usable default and must be supplied.
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			BaseURL:          "",
			PagePrefix:       "name",
			StartPage:        1,
			EndPage:          0,
			ImageExtension:   ".jpg",
			MaxImagesPerPage: 200,
		},
		Output: OutputConfig{
			BaseDirectory: "scraped_pictures_by_page",
		},
		Download: DownloadConfig{
			Timeout:         10 * time.Second,
			ChunkSize:       8192,
			ConcurrentPages: 1,
		},
		Retry: RetryConfig{
			MaxAttempts:    1,
			Strategy:       "exponential",
			InitialBackoff: 1 * time.Second,
			MaxBackoff:     30 * time.Second,
			Multiplier:     2.0,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 0,
			Burst:             1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from PAGESCRAPER_* environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	str := func(key string, dst *string) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %q is not an integer", EnvPrefix, key, v))
				return
			}
			*dst = n
		}
	}

	str("BASE_URL", &c.Target.BaseURL)
	str("PAGE_PREFIX", &c.Target.PagePrefix)
	num("START_PAGE", &c.Target.StartPage)
	num("END_PAGE", &c.Target.EndPage)
	str("IMAGE_EXTENSION", &c.Target.ImageExtension)
	num("MAX_IMAGES_PER_PAGE", &c.Target.MaxImagesPerPage)

	str("OUTPUT_DIR", &c.Output.BaseDirectory)

	if v := os.Getenv(EnvPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err))
		} else {
			c.Download.Timeout = d
		}
	}
	num("CONCURRENT_PAGES", &c.Download.ConcurrentPages)
	str("USER_AGENT", &c.Download.UserAgent)

	num("MAX_ATTEMPTS", &c.Retry.MaxAttempts)
	str("RETRY_STRATEGY", &c.Retry.Strategy)

	if v := os.Getenv(EnvPrefix + "REQUESTS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sREQUESTS_PER_SECOND: %q is not a number", EnvPrefix, v))
		} else {
			c.RateLimit.RequestsPerSecond = f
		}
	}

	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FILE", &c.Logging.File)

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	return FindConfigFile()
}

// FindConfigFile returns the first existing config file in the search path, or ""
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".pagescraper.yaml",
		".pagescraper.yml",
		filepath.Join(home, ".config", "pagescraper", "config.yaml"),
		filepath.Join(home, ".config", "pagescraper", "config.yml"),
		filepath.Join(home, ".pagescraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks every constraint and reports all violations at once.
// It performs no I/O.
func (c *Config) Validate() error {
	var errs []error
	t := c.Target

	if !strings.HasPrefix(t.BaseURL, "http://") && !strings.HasPrefix(t.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("base_url (%q) must be a valid URL starting with http:// or https://", t.BaseURL))
	}
	if !strings.HasPrefix(t.ImageExtension, ".") {
		errs = append(errs, fmt.Errorf("image_extension (%q) must start with a dot (e.g. \".jpg\")", t.ImageExtension))
	}
	if t.StartPage <= 0 {
		errs = append(errs, fmt.Errorf("start_page (%d) must be a positive integer", t.StartPage))
	}
	if t.EndPage <= 0 {
		errs = append(errs, fmt.Errorf("end_page (%d) must be a positive integer", t.EndPage))
	}
	if t.StartPage > 0 && t.EndPage > 0 && t.StartPage > t.EndPage {
		errs = append(errs, fmt.Errorf("start_page (%d) must not exceed end_page (%d)", t.StartPage, t.EndPage))
	}
	if t.MaxImagesPerPage <= 0 {
		errs = append(errs, fmt.Errorf("max_images_per_page (%d) must be a positive integer", t.MaxImagesPerPage))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.ChunkSize <= 0 {
		errs = append(errs, errors.New("download chunk size must be positive"))
	}
	if c.Download.ConcurrentPages <= 0 {
		errs = append(errs, errors.New("concurrent pages must be positive"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry max attempts must be at least 1"))
	}
	switch c.Retry.Strategy {
	case "", "exponential", "constant":
	default:
		errs = append(errs, fmt.Errorf("retry strategy %q must be exponential or constant", c.Retry.Strategy))
	}
	if c.Retry.MaxAttempts > 1 && c.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry multiplier must be at least 1"))
	}

	if c.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("requests per second cannot be negative"))
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate limit burst must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["base-url"].(string); ok {
		c.Target.BaseURL = v
	}
	if v, ok := flags["prefix"].(string); ok {
		c.Target.PagePrefix = v
	}
	if v, ok := flags["start"].(int); ok {
		c.Target.StartPage = v
	}
	if v, ok := flags["end"].(int); ok {
		c.Target.EndPage = v
	}
	if v, ok := flags["ext"].(string); ok {
		c.Target.ImageExtension = v
	}
	if v, ok := flags["max-images"].(int); ok {
		c.Target.MaxImagesPerPage = v
	}
	if v, ok := flags["output"].(string); ok {
		c.Output.BaseDirectory = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok {
		c.Download.Timeout = v
	}
	if v, ok := flags["concurrent-pages"].(int); ok {
		c.Download.ConcurrentPages = v
	}
	if v, ok := flags["user-agent"].(string); ok {
		c.Download.UserAgent = v
	}
	if v, ok := flags["max-attempts"].(int); ok {
		c.Retry.MaxAttempts = v
	}
	if v, ok := flags["retry-strategy"].(string); ok {
		c.Retry.Strategy = v
	}
	if v, ok := flags["rate-limit"].(float64); ok {
		c.RateLimit.RequestsPerSecond = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["log-file"].(string); ok {
		c.Logging.File = v
	}
	if v, ok := flags["no-color"].(bool); ok && v {
		c.Logging.NoColor = true
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	cfg, err := LoadUnvalidated(configPath, flags)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadUnvalidated merges every source like Load but skips Validate
func LoadUnvalidated(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".pagescraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	return config, nil
}
