package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
	"hashclip/pkg/query"
)

// Config holds all configuration options for hashclip
type Config struct {
	// X API access
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// What to search for
	Search SearchConfig `yaml:"search" json:"search"`

	// Engagement thresholds
	Filter FilterConfig `yaml:"filter" json:"filter"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Pacing of media backend calls
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds X API v2 client configuration
type TwitterConfig struct {
	BearerToken string        `yaml:"bearer_token" json:"bearer_token" envconfig:"HASHCLIP_BEARER_TOKEN"`
	BaseURL     string        `yaml:"base_url" json:"base_url" envconfig:"HASHCLIP_API_BASE_URL"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent" envconfig:"HASHCLIP_USER_AGENT"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" envconfig:"HASHCLIP_API_TIMEOUT"`
}

// SearchConfig holds search query configuration
type SearchConfig struct {
	Hashtags   []string `yaml:"hashtags" json:"hashtags" envconfig:"HASHCLIP_HASHTAGS"`
	MaxResults int      `yaml:"max_results" json:"max_results" envconfig:"HASHCLIP_MAX_RESULTS"`
}

// FilterConfig holds the likes and views thresholds
type FilterConfig struct {
	MinLikes int   `yaml:"min_likes" json:"min_likes" envconfig:"HASHCLIP_MIN_LIKES"`
	MinViews int64 `yaml:"min_views" json:"min_views" envconfig:"HASHCLIP_MIN_VIEWS"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory     string `yaml:"directory" json:"directory" envconfig:"HASHCLIP_OUTPUT_DIR"`
	WriteMetadata bool   `yaml:"write_metadata" json:"write_metadata" envconfig:"HASHCLIP_WRITE_METADATA"`
}

// DownloadConfig holds media backend configuration
type DownloadConfig struct {
	Concurrency     int           `yaml:"concurrency" json:"concurrency" envconfig:"HASHCLIP_CONCURRENCY"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout" json:"probe_timeout" envconfig:"HASHCLIP_PROBE_TIMEOUT"`
	TransferTimeout time.Duration `yaml:"transfer_timeout" json:"transfer_timeout" envconfig:"HASHCLIP_TRANSFER_TIMEOUT"`
	Format          string        `yaml:"format" json:"format" envconfig:"HASHCLIP_FORMAT"`
	InstallBackend  bool          `yaml:"install_backend" json:"install_backend" envconfig:"HASHCLIP_INSTALL_BACKEND"`
	Executable      string        `yaml:"executable,omitempty" json:"executable,omitempty" envconfig:"HASHCLIP_YTDLP_PATH"`
}

// RateLimitConfig holds pacing configuration for probe and transfer calls
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute" envconfig:"HASHCLIP_REQUESTS_PER_MINUTE"`
	Burst             int `yaml:"burst" json:"burst" envconfig:"HASHCLIP_RATE_BURST"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" envconfig:"HASHCLIP_LOG_LEVEL"`
	File  string `yaml:"file" json:"file" envconfig:"HASHCLIP_LOG_FILE"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			BaseURL:   "https://api.twitter.com/2",
			UserAgent: "hashclip/1.0",
			Timeout:   30 * time.Second,
		},
		Search: SearchConfig{
			Hashtags:   []string{"news", "video"},
			MaxResults: 100,
		},
		Filter: FilterConfig{
			MinLikes: 10,
			MinViews: 100,
		},
		Output: OutputConfig{
			Directory: "./downloaded_videos",
		},
		Download: DownloadConfig{
			Concurrency:     3,
			ProbeTimeout:    60 * time.Second,
			TransferTimeout: 10 * time.Minute,
			Format:          "best",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			Burst:             5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv overrides configuration with HASHCLIP_* environment variables.
// Variables that are not set leave the current value untouched.
func (c *Config) LoadFromEnv() error {
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}
	return nil
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
	for _, loc := range SearchPaths() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// SearchPaths lists the config file locations checked when no path is given, in order
func SearchPaths() []string {
	home := os.Getenv("HOME")
	return []string{
		".hashclip.yaml",
		".hashclip.yml",
		filepath.Join(home, ".config", "hashclip", "config.yaml"),
		filepath.Join(home, ".config", "hashclip", "config.yml"),
		filepath.Join(home, ".hashclip.yaml"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.Twitter.Timeout <= 0 {
		errs = append(errs, errors.New("API timeout must be positive"))
	}

	if len(query.Hashtags(c.Search.Hashtags)) == 0 {
		errs = append(errs, errors.New("at least one non-empty hashtag is required"))
	}
	if c.Search.MaxResults < 10 || c.Search.MaxResults > 100 {
		errs = append(errs, errors.New("max results must be between 10 and 100"))
	}

	if c.Filter.MinLikes < 0 {
		errs = append(errs, errors.New("min likes cannot be negative"))
	}
	if c.Filter.MinViews < 0 {
		errs = append(errs, errors.New("min views cannot be negative"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Download.Concurrency <= 0 {
		errs = append(errs, errors.New("concurrency must be positive"))
	}
	if c.Download.Concurrency > 10 {
		errs = append(errs, errors.New("concurrency should not exceed 10"))
	}
	if c.Download.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("probe timeout must be positive"))
	}
	if c.Download.TransferTimeout <= 0 {
		errs = append(errs, errors.New("transfer timeout must be positive"))
	}
	if c.Download.Format == "" {
		errs = append(errs, errors.New("download format is required"))
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("burst must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
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

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["token"].(string); ok && token != "" {
		c.Twitter.BearerToken = token
	}
	if tags, ok := flags["hashtags"].([]string); ok && len(tags) > 0 {
		c.Search.Hashtags = tags
	}
	if minLikes, ok := flags["min-likes"].(int); ok {
		c.Filter.MinLikes = minLikes
	}
	if minViews, ok := flags["min-views"].(int64); ok {
		c.Filter.MinViews = minViews
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if writeMetadata, ok := flags["metadata"].(bool); ok {
		c.Output.WriteMetadata = writeMetadata
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Download.Concurrency = concurrent
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Download.Format = format
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".hashclip.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
