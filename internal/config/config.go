package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ErrInvalidLocale is returned for a preview locale that is not a BCP 47 tag.
var ErrInvalidLocale = errors.New("invalid locale")

// maxRecent bounds the recent files list.
const maxRecent = 15

// RecentFile is a previously opened CSV file.
type RecentFile struct {
	Path     string    `yaml:"path"`
	OpenedAt time.Time `yaml:"opened_at"`
}

// Config is the persisted application configuration.
type Config struct {
	Preview struct {
		ResetSortOnModeExit bool   `yaml:"reset_sort_on_mode_exit"` // clear the sort when returning to edit mode
		StartInPreview      bool   `yaml:"start_in_preview"`
		Locale              string `yaml:"locale"` // collation for text columns, "" = root
		MaxColumnWidth      int    `yaml:"max_column_width"`
	} `yaml:"preview"`
	Editor struct {
		AutosaveDelay time.Duration `yaml:"autosave_delay"`
		WatchFile     bool          `yaml:"watch_file"`
	} `yaml:"editor"`
	Palette []string     `yaml:"palette"` // 8 column colors
	Recent  []RecentFile `yaml:"recent"`

	path string
}

// DefaultPalette is the column color cycle.
var DefaultPalette = []string{
	"#e06c75", "#98c379", "#e5c07b", "#61afef",
	"#c678dd", "#56b6c2", "#d19a66", "#abb2bf",
}

// New returns the default configuration.
func New() *Config {
	cfg := &Config{}
	cfg.Preview.ResetSortOnModeExit = true
	cfg.Preview.StartInPreview = false
	cfg.Preview.MaxColumnWidth = 40
	cfg.Editor.AutosaveDelay = 2 * time.Second
	cfg.Editor.WatchFile = true
	cfg.Palette = append([]string(nil), DefaultPalette...)
	return cfg
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rainbow-csv"), nil
}

// DefaultPath returns ~/.config/rainbow-csv/config.yaml.
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration from the default location.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return New(), err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path. A missing file yields the
// defaults; fields absent from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		fallback := New()
		fallback.path = path
		return fallback, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Palette) == 0 {
		cfg.Palette = append([]string(nil), DefaultPalette...)
	}
	if err := cfg.Validate(); err != nil {
		fallback := New()
		fallback.path = path
		return fallback, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks values that cannot be repaired silently.
func (c *Config) Validate() error {
	if _, err := c.Language(); err != nil {
		return err
	}
	if c.Preview.MaxColumnWidth < 0 {
		return fmt.Errorf("max_column_width must not be negative")
	}
	if c.Editor.AutosaveDelay < 0 {
		return fmt.Errorf("autosave_delay must not be negative")
	}
	return nil
}

// Language parses Preview.Locale.
func (c *Config) Language() (language.Tag, error) {
	if c.Preview.Locale == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(c.Preview.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("%w %q: %v", ErrInvalidLocale, c.Preview.Locale, err)
	}
	return tag, nil
}

// Path returns the file the configuration is saved to.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration back to the file it was loaded from, or to
// the default location.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	c.path = path
	return nil
}

// Touch moves path to the front of the recent files list.
func (c *Config) Touch(path string, now time.Time) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	for i, r := range c.Recent {
		if r.Path == path {
			c.Recent = append(c.Recent[:i], c.Recent[i+1:]...)
			break
		}
	}
	c.Recent = append([]RecentFile{{Path: path, OpenedAt: now}}, c.Recent...)
	if len(c.Recent) > maxRecent {
		c.Recent = c.Recent[:maxRecent]
	}
}

// Delete removes the recent file at index.
func (c *Config) Delete(index int) {
	if index < 0 || index >= len(c.Recent) {
		return
	}
	c.Recent = append(c.Recent[:index], c.Recent[index+1:]...)
}
