// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"advent-calendar/internal/calendar"
	"advent-calendar/internal/domain/model"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type CalendarConfig struct {
	Year            int            `yaml:"year"`     // required in calendar mode
	Month           int            `yaml:"month"`    // 1..12, January by default
	Mode            string         `yaml:"mode"`     // calendar | test
	TestDay         int            `yaml:"test_day"` // used only in test mode
	Timezone        string         `yaml:"timezone"` // IANA name; empty = server local
	PreviewLimit    int            `yaml:"preview_limit"`
	RefreshInterval time.Duration  `yaml:"refresh_interval"`
	Locale          string         `yaml:"locale"`
	StorageKey      string         `yaml:"storage_key"`
	Offers          map[int]string `yaml:"offers"`
}

type HTTPConfig struct {
	Port          int           `yaml:"port"`
	SessionSecret string        `yaml:"session_secret"`
	SecureCookie  bool          `yaml:"secure_cookie"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // memory | redis | postgres
	Cache  bool   `yaml:"cache"`  // postgres only: read-through redis cache
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // cache entries only; stored days never expire
}

type Config struct {
	Calendar CalendarConfig `yaml:"calendar"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`

	Runtime RuntimeConfig `yaml:"-"`
}

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// DefaultOffers are shown when calendar.offers is not configured.
var DefaultOffers = map[int]string{
	1: "Today we will be launching fireworks 🎆",
	2: "Today we're sliding down the hill and sipping mulled wine!🍷",
	3: "Time to test the reins 😉",
	4: "A nurse will drop by to check how you're feeling",
	5: "We're making mulled wine and listening to music",
	6: "A nun will visit today to cleanse your soul ✨",
	7: "You're fresh and clean, and a girl in pink will bless you for a great year 🎁",
}

// LoadConfig reads the YAML file at path, fills defaults and validates.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse is LoadConfig without the file read.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	cfg.Runtime.Dev = dev
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	c := &cfg.Calendar
	if c.Month == 0 {
		c.Month = int(time.January)
	}
	if c.Mode == "" {
		c.Mode = string(calendar.ModeCalendar)
	}
	// test mode only uses the year for tooltip dates; the real season
	// must name its year explicitly
	if c.Year == 0 {
		if mode, err := calendar.ParseMode(c.Mode); err == nil && mode == calendar.ModeTest {
			c.Year = time.Now().Year()
		}
	}
	if c.PreviewLimit <= 0 {
		c.PreviewLimit = calendar.DefaultPreviewLimit
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = calendar.DefaultRefreshInterval
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.StorageKey == "" {
		c.StorageKey = fmt.Sprintf("advent_opened_days_%d", c.Year)
	}
	if len(c.Offers) == 0 {
		c.Offers = make(map[int]string, len(DefaultOffers))
		for d, text := range DefaultOffers {
			c.Offers[d] = text
		}
	}

	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.SessionTTL <= 0 {
		cfg.HTTP.SessionTTL = 365 * 24 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverMemory
	}
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
}

// Validate checks the fields that would otherwise fail at first use.
// An out-of-range test_day is not an error: it closes the calendar.
func (cfg *Config) Validate() error {
	mode, err := calendar.ParseMode(cfg.Calendar.Mode)
	if err != nil {
		return fmt.Errorf("calendar.mode: %w", err)
	}
	if mode == calendar.ModeCalendar && cfg.Calendar.Year == 0 {
		return errors.New("calendar.year is required in calendar mode")
	}
	if cfg.Calendar.Month < 1 || cfg.Calendar.Month > 12 {
		return fmt.Errorf("calendar.month must be 1..12, got %d", cfg.Calendar.Month)
	}
	if cfg.Calendar.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Calendar.Timezone); err != nil {
			return fmt.Errorf("calendar.timezone: %w", err)
		}
	}
	for d := range cfg.Calendar.Offers {
		if !model.Day(d).Valid() {
			return fmt.Errorf("calendar.offers: day %d is outside %d..%d", d, model.FirstDay, model.LastDay)
		}
	}

	switch cfg.Storage.Driver {
	case DriverMemory:
	case DriverRedis:
		if cfg.Redis.URL == "" {
			return errors.New("redis.url is required for storage.driver=redis")
		}
	case DriverPostgres:
		if cfg.Database.URL == "" {
			return errors.New("database.url is required for storage.driver=postgres")
		}
		if cfg.Storage.Cache && cfg.Redis.URL == "" {
			return errors.New("redis.url is required when storage.cache is enabled")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", cfg.Storage.Driver)
	}
	return nil
}

// Settings converts the calendar section into the value the calendar
// package evaluates against. Validate must have passed.
func (c CalendarConfig) Settings() calendar.Settings {
	mode, _ := calendar.ParseMode(c.Mode)
	loc := time.Local
	if c.Timezone != "" {
		if l, err := time.LoadLocation(c.Timezone); err == nil {
			loc = l
		}
	}
	return calendar.Settings{
		Year:         c.Year,
		Month:        time.Month(c.Month),
		Mode:         mode,
		TestDay:      c.TestDay,
		PreviewLimit: c.PreviewLimit,
		Location:     loc,
	}
}

func (c CalendarConfig) OfferTexts() calendar.Offers {
	out := make(calendar.Offers, len(c.Offers))
	for d, text := range c.Offers {
		out[model.Day(d)] = text
	}
	return out
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
