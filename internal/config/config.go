package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"portalcal/internal/calendar"
)

// FeedConfig describes an organization calendar published as ICS.
type FeedConfig struct {
	// ID tags every event imported from this feed; re-syncing a feed
	// replaces all events carrying its ID.
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for mutating API routes.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// RedisConfig enables the snapshot cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password,omitempty" json:"password,omitempty"`
	DB       int           `yaml:"db" json:"db"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// SnapshotConfig controls the PNG snapshot of the month page.
type SnapshotConfig struct {
	Output string `yaml:"output" json:"output"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the page and the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone all calendar days are computed in.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is the first grid column: "sunday" (default) or "monday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path" json:"db_path"`

	// PreviewLimit is how many titles a day cell lists before "+K more".
	PreviewLimit int `yaml:"preview_limit" json:"preview_limit"`

	// PaddingIndicators is "show" or "hide" for items on padding days.
	PaddingIndicators string `yaml:"padding_indicators" json:"padding_indicators"`

	// RefreshCron is the cron schedule for feed sync (e.g. "*/30 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// HorizonDays and BackfillDays bound the window feed recurrences are
	// flattened into, relative to now.
	HorizonDays  int `yaml:"horizon_days" json:"horizon_days"`
	BackfillDays int `yaml:"backfill_days" json:"backfill_days"`

	Feeds []FeedConfig `yaml:"feeds" json:"feeds"`

	Redis *RedisConfig `yaml:"redis,omitempty" json:"redis,omitempty"`

	// BasicAuth, if non-nil, guards every mutating API route.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:            "127.0.0.1:8080",
		Timezone:          "Asia/Manila",
		WeekStart:         "sunday",
		DBPath:            "portalcal.db",
		PreviewLimit:      calendar.DefaultPreviewLimit,
		PaddingIndicators: string(calendar.PaddingShow),
		RefreshCron:       "*/30 * * * *",
		HorizonDays:       120,
		BackfillDays:      31,
		Feeds:             []FeedConfig{},
		Snapshot: SnapshotConfig{
			Output: "calendar.png",
			Width:  1280,
			Height: 960,
		},
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = def.WeekStart
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.PreviewLimit == 0 {
		c.PreviewLimit = def.PreviewLimit
	}
	if p, err := calendar.ParsePaddingPolicy(c.PaddingIndicators); err != nil {
		c.PaddingIndicators = def.PaddingIndicators
	} else {
		c.PaddingIndicators = string(p)
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = def.HorizonDays
	}
	if c.BackfillDays < 0 {
		c.BackfillDays = 0
	}
	if c.Feeds == nil {
		c.Feeds = []FeedConfig{}
	}
	for i := range c.Feeds {
		if c.Feeds[i].ID == "" {
			c.Feeds[i].ID = fmt.Sprintf("feed-%d", i+1)
		}
	}
	if c.Redis != nil && c.Redis.TTL <= 0 {
		c.Redis.TTL = 5 * time.Minute
	}
	if c.Snapshot.Output == "" {
		c.Snapshot.Output = def.Snapshot.Output
	}
	if c.Snapshot.Width <= 0 {
		c.Snapshot.Width = def.Snapshot.Width
	}
	if c.Snapshot.Height <= 0 {
		c.Snapshot.Height = def.Snapshot.Height
	}
}

// Location resolves Timezone, falling back to the local zone when the name
// is unknown to the system tz database.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Weekday returns WeekStart as a time.Weekday.
func (c *Config) Weekday() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// RenderOptions derives the engine options for one render from the config.
func (c *Config) RenderOptions() calendar.RenderOptions {
	padding, _ := calendar.ParsePaddingPolicy(c.PaddingIndicators)
	return calendar.RenderOptions{
		Grid: calendar.GridOptions{
			WeekStart: c.Weekday(),
			Location:  c.Location(),
		},
		Bind: calendar.BindOptions{
			PreviewLimit: c.PreviewLimit,
			Padding:      padding,
		},
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist a default config is written there (0600) and
// returned. Otherwise the file is decoded and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file and rename, with 0600
// permissions on the result.
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

	tmp, err := os.CreateTemp(dir, ".portalcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
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
	return os.Rename(tmpName, path)
}

// Save is a convenience wrapper around the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
