package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env    string
	API    APIConfig
	Locale LocaleConfig
	Layout LayoutConfig
	Log    LogConfig
	Mock   MockConfig
}

// APIConfig is the single fetch target of the table.
type APIConfig struct {
	Root    string
	Timeout time.Duration
}

type LocaleConfig struct {
	Tag      string
	TimeZone string
}

// LayoutConfig drives the responsive column hiding. Widths are in
// device-independent pixels; a terminal cell counts as CellWidthPx pixels.
type LayoutConfig struct {
	CollapseBelowPx int
	CellWidthPx     int
	ResizeThrottle  time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

type MockConfig struct {
	Port     int
	Fixtures string
}

// Load reads configuration from the environment, falling back to a .env file
// in the working directory and then to defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		Root:    strings.TrimSpace(v.GetString("API_ROOT")),
		Timeout: parseDuration(v.GetString("FETCH_TIMEOUT"), 10*time.Second),
	}

	cfg.Locale = LocaleConfig{
		Tag:      v.GetString("LOCALE"),
		TimeZone: v.GetString("TIME_ZONE"),
	}

	cfg.Layout = LayoutConfig{
		CollapseBelowPx: v.GetInt("COLLAPSE_BELOW_PX"),
		CellWidthPx:     v.GetInt("CELL_WIDTH_PX"),
		ResizeThrottle:  parseDuration(v.GetString("RESIZE_THROTTLE"), 100*time.Millisecond),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
		File:   v.GetString("LOG_FILE"),
	}

	cfg.Mock = MockConfig{
		Port:     v.GetInt("MOCK_PORT"),
		Fixtures: v.GetString("MOCK_FIXTURES"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("API_ROOT", "http://localhost:3000/")
	v.SetDefault("FETCH_TIMEOUT", "10s")
	v.SetDefault("LOCALE", "da-DK")
	v.SetDefault("TIME_ZONE", "Europe/Copenhagen")
	v.SetDefault("COLLAPSE_BELOW_PX", 920)
	v.SetDefault("CELL_WIDTH_PX", 8)
	v.SetDefault("RESIZE_THROTTLE", "100ms")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("MOCK_PORT", 3000)
	v.SetDefault("MOCK_FIXTURES", "")
}

// Validate rejects configurations the table cannot run with.
func (c *Config) Validate() error {
	if c.API.Root == "" {
		return errors.New("API_ROOT is required")
	}
	parsed, err := url.Parse(c.API.Root)
	if err != nil {
		return fmt.Errorf("API_ROOT: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("API_ROOT must be an http(s) URL, got %q", c.API.Root)
	}
	if c.Layout.CollapseBelowPx < 0 {
		return errors.New("COLLAPSE_BELOW_PX must not be negative")
	}
	if c.Layout.CellWidthPx <= 0 {
		return errors.New("CELL_WIDTH_PX must be positive")
	}
	if c.Layout.ResizeThrottle < 0 {
		return errors.New("RESIZE_THROTTLE must not be negative")
	}
	return nil
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
