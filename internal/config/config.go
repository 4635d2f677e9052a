package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions. Secrets (API keys, Outlook client credentials) are never
// written to the YAML file; they come from the environment, see secrets.go.

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the dashboard page and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA display timezone (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// TimeFormat selects the clock rendering of the info header.
	// Supported values: "12h" (default), "24h".
	TimeFormat string `yaml:"time_format" json:"time_format"`

	// NewsFeed is the feed identifier ("tagesschau" or "golem"). Unknown
	// values fall back to tagesschau at fetch time.
	NewsFeed string `yaml:"news_feed" json:"news_feed"`

	// NewsCount is the maximum number of news items to render.
	NewsCount int `yaml:"news_count" json:"news_count"`

	// Latitude / Longitude locate the panel for weather and reverse
	// geocoding.
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`

	// CalendarStartHour / CalendarEndHour are the display bounds of the
	// event timeline, not data bounds.
	CalendarStartHour int `yaml:"calendar_start_hour" json:"calendar_start_hour"`
	CalendarEndHour   int `yaml:"calendar_end_hour" json:"calendar_end_hour"`

	// CalendarDayOffset selects the day shown on the timeline:
	// "auto" (today before 18:00 local, tomorrow after), "0" or "1".
	CalendarDayOffset string `yaml:"calendar_day_offset" json:"calendar_day_offset"`

	// CalendarICSURL, if set, is used as the event source when no Outlook
	// client credentials are present in the environment.
	CalendarICSURL string `yaml:"calendar_ics_url" json:"calendar_ics_url"`

	// Width / Height are the target panel dimensions in pixels.
	// Orientation "portrait" swaps them, see Resolution.
	Width       int    `yaml:"width" json:"width"`
	Height      int    `yaml:"height" json:"height"`
	Orientation string `yaml:"orientation" json:"orientation"`

	// AssetsDir holds icons and the devotional table.
	AssetsDir string `yaml:"assets_dir" json:"assets_dir"`

	// DevotionalPath is the date-keyed devotional JSON table. Empty
	// disables the devotional panel.
	DevotionalPath string `yaml:"devotional_path" json:"devotional_path"`

	// RefreshCron is the cron-style refresh schedule (e.g. "*/15 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// OutputPath is where the captured PNG is written.
	OutputPath string `yaml:"output_path" json:"output_path"`

	// LogLevel is the minimum log level (DEBUG/INFO/WARN/ERROR).
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:            "127.0.0.1:8080",
		Timezone:          "Europe/Berlin",
		TimeFormat:        "12h",
		NewsFeed:          "tagesschau",
		NewsCount:         4,
		CalendarStartHour: 8,
		CalendarEndHour:   18,
		CalendarDayOffset: "auto",
		Width:             800,
		Height:            480,
		Orientation:       "landscape",
		AssetsDir:         "assets",
		DevotionalPath:    "assets/losungen.json",
		RefreshCron:       "*/15 * * * *",
		OutputPath:        "/var/lib/inkdash/preview.png",
		LogLevel:          "INFO",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	switch c.TimeFormat {
	case "12h", "24h":
		// ok
	default:
		c.TimeFormat = def.TimeFormat
	}
	if c.NewsFeed == "" {
		c.NewsFeed = def.NewsFeed
	}
	if c.NewsCount <= 0 {
		c.NewsCount = def.NewsCount
	}
	// Display bounds must satisfy start < end; reset both on violation.
	if c.CalendarStartHour < 0 || c.CalendarEndHour > 24 || c.CalendarStartHour >= c.CalendarEndHour {
		c.CalendarStartHour = def.CalendarStartHour
		c.CalendarEndHour = def.CalendarEndHour
	}
	if c.CalendarDayOffset == "" {
		c.CalendarDayOffset = def.CalendarDayOffset
	}
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	switch c.Orientation {
	case "landscape", "portrait":
		// ok
	default:
		c.Orientation = def.Orientation
	}
	if c.AssetsDir == "" {
		c.AssetsDir = def.AssetsDir
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.OutputPath == "" {
		c.OutputPath = def.OutputPath
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Resolution returns the effective panel dimensions, swapped for portrait
// orientation.
func (c *Config) Resolution() (width, height int) {
	if c.Orientation == "portrait" {
		return c.Height, c.Width
	}
	return c.Width, c.Height
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".inkdash-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}
