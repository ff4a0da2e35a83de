package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "nuforcscraper/pkg/errors"
)

// AppName is used for config file names and the XDG config directory.
const AppName = "nuforcscraper"

// Config holds all configuration options for an export run
type Config struct {
	// Page being exported and the selectors used on it
	Target TargetConfig `yaml:"target" json:"target"`

	// Traversal bounds, waits and failure policy
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Headless browser settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Export file settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TargetConfig describes the start page
type TargetConfig struct {
	URL           string `yaml:"url" json:"url"`
	TableSelector string `yaml:"table_selector" json:"table_selector"`
	NextSelector  string `yaml:"next_selector" json:"next_selector"`
}

// ScrapeConfig holds the traversal configuration
type ScrapeConfig struct {
	MaxPages                int           `yaml:"max_pages" json:"max_pages"`
	TableTimeout            time.Duration `yaml:"table_timeout" json:"table_timeout"`
	SettleDelay             time.Duration `yaml:"settle_delay" json:"settle_delay"`
	NavigationTimeout       time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	ClickAttempts           int           `yaml:"click_attempts" json:"click_attempts"`
	ClickRetryDelay         time.Duration `yaml:"click_retry_delay" json:"click_retry_delay"`
	PartialOnStructureError bool          `yaml:"partial_on_structure_error" json:"partial_on_structure_error"`
}

// BrowserConfig holds the Chrome launch options
type BrowserConfig struct {
	Headless      bool   `yaml:"headless" json:"headless"`
	NoSandbox     bool   `yaml:"no_sandbox" json:"no_sandbox"`
	DisableGPU    bool   `yaml:"disable_gpu" json:"disable_gpu"`
	DisableDevShm bool   `yaml:"disable_dev_shm" json:"disable_dev_shm"`
	ExecPath      string `yaml:"exec_path" json:"exec_path"`
	UserAgent     string `yaml:"user_agent" json:"user_agent"`
}

// OutputConfig holds export file configuration
type OutputConfig struct {
	Path         string `yaml:"path" json:"path"`
	Delimiter    string `yaml:"delimiter" json:"delimiter"`
	WriteSummary bool   `yaml:"write_summary" json:"write_summary"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			URL:           "https://nuforc.org/subndx/?id=all",
			TableSelector: "table.wpDataTable",
			NextSelector:  ".paginate_button.next:not(.disabled)",
		},
		Scrape: ScrapeConfig{
			MaxPages:                600,
			TableTimeout:            10 * time.Second,
			SettleDelay:             2 * time.Second,
			NavigationTimeout:       60 * time.Second,
			ClickAttempts:           1,
			ClickRetryDelay:         time.Second,
			PartialOnStructureError: false,
		},
		Browser: BrowserConfig{
			Headless:      true,
			NoSandbox:     true,
			DisableGPU:    true,
			DisableDevShm: true,
		},
		Output: OutputConfig{
			Path:      "nuforc_all_reports_table.csv",
			Delimiter: ",",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DelimiterRune returns the configured delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	if c.Output.Delimiter == `\t` {
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(c.Output.Delimiter)
	return r
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if url := os.Getenv("NUFORC_URL"); url != "" {
		c.Target.URL = url
	}
	if output := os.Getenv("NUFORC_OUTPUT"); output != "" {
		c.Output.Path = output
	}
	if pages := os.Getenv("NUFORC_MAX_PAGES"); pages != "" {
		val, err := strconv.Atoi(pages)
		if err != nil {
			errs = append(errs, fmt.Errorf("NUFORC_MAX_PAGES: %w", err))
		} else {
			c.Scrape.MaxPages = val
		}
	}

	durations := map[string]*time.Duration{
		"NUFORC_TABLE_TIMEOUT":      &c.Scrape.TableTimeout,
		"NUFORC_SETTLE_DELAY":       &c.Scrape.SettleDelay,
		"NUFORC_NAVIGATION_TIMEOUT": &c.Scrape.NavigationTimeout,
	}
	for name, target := range durations {
		raw := os.Getenv(name)
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		*target = d
	}

	if chrome := os.Getenv("NUFORC_CHROME_PATH"); chrome != "" {
		c.Browser.ExecPath = chrome
	}
	if headless := os.Getenv("NUFORC_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if logLevel := os.Getenv("NUFORC_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil
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

// XDGConfigDir returns the per-user configuration directory.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	locations := []string{
		"." + AppName + ".yaml",
		"." + AppName + ".yml",
		filepath.Join(XDGConfigDir(), "config.yaml"),
		filepath.Join(XDGConfigDir(), "config.yml"),
		filepath.Join(os.Getenv("HOME"), "."+AppName+".yaml"),
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

	if c.Target.URL == "" {
		errs = append(errs, errors.New("target url is required"))
	}
	if c.Target.TableSelector == "" {
		errs = append(errs, errors.New("table selector is required"))
	}
	if c.Target.NextSelector == "" {
		errs = append(errs, errors.New("next selector is required"))
	}

	if c.Scrape.MaxPages < 1 {
		errs = append(errs, errors.New("max pages must be at least 1"))
	}
	if c.Scrape.TableTimeout <= 0 {
		errs = append(errs, errors.New("table timeout must be positive"))
	}
	if c.Scrape.SettleDelay < 0 {
		errs = append(errs, errors.New("settle delay cannot be negative"))
	}
	if c.Scrape.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}
	if c.Scrape.ClickAttempts < 1 {
		errs = append(errs, errors.New("click attempts must be at least 1"))
	}
	if c.Scrape.ClickRetryDelay < 0 {
		errs = append(errs, errors.New("click retry delay cannot be negative"))
	}

	if c.Output.Path == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if c.Output.Delimiter != `\t` && utf8.RuneCountInString(c.Output.Delimiter) != 1 {
		errs = append(errs, errors.New("delimiter must be a single character"))
	} else if d := c.DelimiterRune(); d == '"' || d == '\r' || d == '\n' || d == utf8.RuneError {
		errs = append(errs, fmt.Errorf("invalid delimiter %q", c.Output.Delimiter))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, errors.New("invalid log format"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
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
	if url, ok := flags["url"].(string); ok && url != "" {
		c.Target.URL = url
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.Path = output
	}
	if delim, ok := flags["delimiter"].(string); ok && delim != "" {
		c.Output.Delimiter = delim
	}
	if summary, ok := flags["write-summary"].(bool); ok {
		c.Output.WriteSummary = summary
	}
	if pages, ok := flags["max-pages"].(int); ok {
		c.Scrape.MaxPages = pages
	}
	if d, ok := flags["table-timeout"].(time.Duration); ok {
		c.Scrape.TableTimeout = d
	}
	if d, ok := flags["settle-delay"].(time.Duration); ok {
		c.Scrape.SettleDelay = d
	}
	if attempts, ok := flags["click-attempts"].(int); ok {
		c.Scrape.ClickAttempts = attempts
	}
	if partial, ok := flags["partial"].(bool); ok {
		c.Scrape.PartialOnStructureError = partial
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if chrome, ok := flags["chrome-path"].(string); ok && chrome != "" {
		c.Browser.ExecPath = chrome
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat, ok := flags["log-format"].(string); ok && logFormat != "" {
		c.Logging.Format = logFormat
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), "."+AppName+".env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, apperrors.Config(err, "failed to load config file")
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, apperrors.Config(err, "failed to load environment variables")
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, apperrors.Config(err, "configuration validation failed")
	}

	return config, nil
}
