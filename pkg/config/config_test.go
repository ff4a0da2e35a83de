package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "nuforcscraper/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Scrape.MaxPages != 600 {
		t.Errorf("Expected default max pages to be 600, got %d", config.Scrape.MaxPages)
	}

	if config.Scrape.TableTimeout != 10*time.Second {
		t.Errorf("Expected default table timeout to be 10s, got %v", config.Scrape.TableTimeout)
	}

	if config.Scrape.SettleDelay != 2*time.Second {
		t.Errorf("Expected default settle delay to be 2s, got %v", config.Scrape.SettleDelay)
	}

	if config.Scrape.ClickAttempts != 1 {
		t.Errorf("Expected a single click attempt by default, got %d", config.Scrape.ClickAttempts)
	}

	if config.Output.Path != "nuforc_all_reports_table.csv" {
		t.Errorf("Unexpected default output path %s", config.Output.Path)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NUFORC_URL", "http://localhost:8080/index")
	t.Setenv("NUFORC_OUTPUT", "/tmp/reports.csv")
	t.Setenv("NUFORC_MAX_PAGES", "5")
	t.Setenv("NUFORC_SETTLE_DELAY", "250ms")
	t.Setenv("NUFORC_HEADLESS", "false")
	t.Setenv("NUFORC_LOG_LEVEL", "debug")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Target.URL != "http://localhost:8080/index" {
		t.Errorf("Expected url override, got %s", config.Target.URL)
	}
	if config.Output.Path != "/tmp/reports.csv" {
		t.Errorf("Expected output override, got %s", config.Output.Path)
	}
	if config.Scrape.MaxPages != 5 {
		t.Errorf("Expected max pages to be 5, got %d", config.Scrape.MaxPages)
	}
	if config.Scrape.SettleDelay != 250*time.Millisecond {
		t.Errorf("Expected settle delay to be 250ms, got %v", config.Scrape.SettleDelay)
	}
	if config.Browser.Headless {
		t.Error("Expected headless to be disabled")
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("NUFORC_MAX_PAGES", "many")
	t.Setenv("NUFORC_TABLE_TIMEOUT", "soon")

	config := DefaultConfig()
	err := config.LoadFromEnv()
	if err == nil {
		t.Fatal("Expected an error for invalid environment values")
	}
	if !strings.Contains(err.Error(), "NUFORC_MAX_PAGES") || !strings.Contains(err.Error(), "NUFORC_TABLE_TIMEOUT") {
		t.Errorf("Expected both variables to be reported, got %v", err)
	}
	if config.Scrape.MaxPages != 600 {
		t.Errorf("Invalid value must not change max pages, got %d", config.Scrape.MaxPages)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"single page", func(c *Config) { c.Scrape.MaxPages = 1 }, false},
		{"tab delimiter", func(c *Config) { c.Output.Delimiter = `\t` }, false},
		{"zero max pages", func(c *Config) { c.Scrape.MaxPages = 0 }, true},
		{"missing url", func(c *Config) { c.Target.URL = "" }, true},
		{"zero table timeout", func(c *Config) { c.Scrape.TableTimeout = 0 }, true},
		{"negative settle delay", func(c *Config) { c.Scrape.SettleDelay = -time.Second }, true},
		{"zero click attempts", func(c *Config) { c.Scrape.ClickAttempts = 0 }, true},
		{"missing output", func(c *Config) { c.Output.Path = "" }, true},
		{"multi character delimiter", func(c *Config) { c.Output.Delimiter = ";;" }, true},
		{"quote delimiter", func(c *Config) { c.Output.Delimiter = `"` }, true},
		{"invalid log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestDelimiterRune(t *testing.T) {
	config := DefaultConfig()
	if config.DelimiterRune() != ',' {
		t.Errorf("Expected comma, got %q", config.DelimiterRune())
	}

	config.Output.Delimiter = `\t`
	if config.DelimiterRune() != '\t' {
		t.Errorf("Expected tab, got %q", config.DelimiterRune())
	}

	config.Output.Delimiter = ";"
	if config.DelimiterRune() != ';' {
		t.Errorf("Expected semicolon, got %q", config.DelimiterRune())
	}
}

func TestLoadFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	content := `
target:
  url: "http://example.test/reports"
scrape:
  max_pages: 3
  table_timeout: 5s
  settle_delay: 100ms
  click_attempts: 2
  partial_on_structure_error: true
output:
  path: "out/reports.tsv"
  delimiter: "\\t"
  write_summary: true
logging:
  level: "warn"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.Target.URL != "http://example.test/reports" {
		t.Errorf("Unexpected url %s", config.Target.URL)
	}
	if config.Target.TableSelector != "table.wpDataTable" {
		t.Errorf("Unset keys must keep defaults, got %s", config.Target.TableSelector)
	}
	if config.Scrape.MaxPages != 3 {
		t.Errorf("Expected max pages 3, got %d", config.Scrape.MaxPages)
	}
	if config.Scrape.TableTimeout != 5*time.Second {
		t.Errorf("Expected table timeout 5s, got %v", config.Scrape.TableTimeout)
	}
	if config.Scrape.SettleDelay != 100*time.Millisecond {
		t.Errorf("Expected settle delay 100ms, got %v", config.Scrape.SettleDelay)
	}
	if !config.Scrape.PartialOnStructureError {
		t.Error("Expected partial flush to be enabled")
	}
	if config.DelimiterRune() != '\t' {
		t.Errorf("Expected tab delimiter, got %q", config.DelimiterRune())
	}
	if !config.Output.WriteSummary {
		t.Error("Expected summary to be enabled")
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(configPath, []byte("scrape: [unterminated"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if err := DefaultConfig().LoadFromFile(configPath); err == nil {
		t.Error("Expected parse error for invalid YAML")
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{
		"url":            "http://flag.test",
		"output":         "flag.csv",
		"max-pages":      1,
		"settle-delay":   time.Duration(0),
		"click-attempts": 3,
		"partial":        true,
		"headless":       false,
		"log-level":      "error",
	})

	if config.Target.URL != "http://flag.test" {
		t.Errorf("Unexpected url %s", config.Target.URL)
	}
	if config.Output.Path != "flag.csv" {
		t.Errorf("Unexpected output %s", config.Output.Path)
	}
	if config.Scrape.MaxPages != 1 {
		t.Errorf("Expected max pages 1, got %d", config.Scrape.MaxPages)
	}
	if config.Scrape.SettleDelay != 0 {
		t.Errorf("Expected settle delay 0, got %v", config.Scrape.SettleDelay)
	}
	if config.Scrape.ClickAttempts != 3 {
		t.Errorf("Expected 3 click attempts, got %d", config.Scrape.ClickAttempts)
	}
	if !config.Scrape.PartialOnStructureError {
		t.Error("Expected partial flush enabled")
	}
	if config.Browser.Headless {
		t.Error("Expected headless disabled")
	}
	if config.Logging.Level != "error" {
		t.Errorf("Expected log level error, got %s", config.Logging.Level)
	}
}

func TestLoadPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("scrape:\n  max_pages: 10\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv("NUFORC_MAX_PAGES", "20")

	config, err := Load(configPath, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Scrape.MaxPages != 20 {
		t.Errorf("Environment must override file, got %d", config.Scrape.MaxPages)
	}

	config, err = Load(configPath, map[string]interface{}{"max-pages": 30})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Scrape.MaxPages != 30 {
		t.Errorf("Flags must override environment, got %d", config.Scrape.MaxPages)
	}

	if _, err := Load(configPath, map[string]interface{}{"max-pages": 0}); err == nil {
		t.Error("Expected validation error for zero max pages")
	}
}

func TestLoadErrorsAreConfigErrors(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "valid.yaml")
	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(valid, []byte("scrape:\n  max_pages: 10\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	if err := os.WriteFile(broken, []byte("scrape: [unclosed\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	tests := []struct {
		name  string
		path  string
		env   string
		flags map[string]interface{}
	}{
		{name: "unparsable file", path: broken},
		{name: "missing file", path: filepath.Join(dir, "missing.yaml")},
		{name: "bad environment", path: valid, env: "lots"},
		{name: "invalid value", path: valid, flags: map[string]interface{}{"max-pages": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("NUFORC_MAX_PAGES", tt.env)
			}
			_, err := Load(tt.path, tt.flags)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !apperrors.Is(err, apperrors.ErrorTypeConfig) {
				t.Errorf("Expected a config error, got %v", err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	original := DefaultConfig()
	original.Scrape.MaxPages = 42
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := DefaultConfig()
	if err := loaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Scrape.MaxPages != 42 || loaded.Scrape.TableTimeout != original.Scrape.TableTimeout {
		t.Errorf("Round trip mismatch: %+v", loaded.Scrape)
	}
}
