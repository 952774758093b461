package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the album downloader
type Config struct {
	// Fotoshare site and credential settings
	Fotoshare FotoshareConfig `yaml:"fotoshare" json:"fotoshare"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// FotoshareConfig holds fotoshare.co specific configuration
type FotoshareConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	Email     string `yaml:"email" json:"email"`
	Password  string `yaml:"password" json:"password"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// DownloadConfig holds transfer and timeout configuration
type DownloadConfig struct {
	Workers         int           `yaml:"workers" json:"workers"`
	AlbumTimeout    time.Duration `yaml:"album_timeout" json:"album_timeout"`
	PageTimeout     time.Duration `yaml:"page_timeout" json:"page_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout" json:"download_timeout"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Fotoshare: FotoshareConfig{
			BaseURL:   "https://fotoshare.co",
			UserAgent: "Mozilla/5.0 (compatible; fotofetch/1.0)",
		},
		Download: DownloadConfig{
			Workers:         4,
			AlbumTimeout:    30 * time.Second,
			PageTimeout:     15 * time.Second,
			DownloadTimeout: 60 * time.Second,
		},
		Output: OutputConfig{
			Directory: "./album",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if email := os.Getenv("FOTOFETCH_EMAIL"); email != "" {
		c.Fotoshare.Email = email
	}
	if password := os.Getenv("FOTOFETCH_PASSWORD"); password != "" {
		c.Fotoshare.Password = password
	}
	if userAgent := os.Getenv("FOTOFETCH_USER_AGENT"); userAgent != "" {
		c.Fotoshare.UserAgent = userAgent
	}
	if baseURL := os.Getenv("FOTOFETCH_BASE_URL"); baseURL != "" {
		c.Fotoshare.BaseURL = baseURL
	}

	if workers := os.Getenv("FOTOFETCH_WORKERS"); workers != "" {
		var val int
		fmt.Sscanf(workers, "%d", &val)
		if val > 0 {
			c.Download.Workers = val
		}
	}

	if outputDir := os.Getenv("FOTOFETCH_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}

	if logLevel := os.Getenv("FOTOFETCH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
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
	// Check in order of precedence
	locations := []string{
		".fotofetch.yaml",
		".fotofetch.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "fotofetch", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "fotofetch", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".fotofetch.yaml"),
		filepath.Join(os.Getenv("HOME"), ".fotofetch.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Fotoshare.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}

	// Credentials are optional but must come as a pair
	if (c.Fotoshare.Email == "") != (c.Fotoshare.Password == "") {
		errs = append(errs, errors.New("email and password must be provided together"))
	}

	if c.Download.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}
	if c.Download.Workers > 32 {
		errs = append(errs, errors.New("workers should not exceed 32"))
	}
	if c.Download.AlbumTimeout <= 0 {
		errs = append(errs, errors.New("album timeout must be positive"))
	}
	if c.Download.PageTimeout <= 0 {
		errs = append(errs, errors.New("page timeout must be positive"))
	}
	if c.Download.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
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

	// Config may hold a password, keep it private
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if email, ok := flags["email"].(string); ok && email != "" {
		c.Fotoshare.Email = email
	}
	if password, ok := flags["password"].(string); ok && password != "" {
		c.Fotoshare.Password = password
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if workers, ok := flags["workers"].(int); ok && workers > 0 {
		c.Download.Workers = workers
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
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".fotofetch.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
