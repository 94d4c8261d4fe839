// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable, e.g. SCHOOLEVENTS_PORT.
const Prefix = "SCHOOLEVENTS"

const todayLayout = "2006-01-02"

type Config struct {
	Port            string `envconfig:"PORT" default:"8080"`
	DBPath          string `envconfig:"DB_PATH" default:":memory:"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string `envconfig:"LOG_FORMAT" default:"text"`
	Timezone        string `envconfig:"TIMEZONE" default:"Local"`
	BaseURL         string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	SchoolName      string `envconfig:"SCHOOL_NAME" default:"Springfield Public School"`
	Today           string `envconfig:"TODAY"`
	UpcomingLimit   int    `envconfig:"UPCOMING_LIMIT" default:"5"`
	ExportRateLimit int    `envconfig:"EXPORT_RATE_LIMIT" default:"30"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (*Config, error) {
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%s_LOG_FORMAT must be text or json, got %q", Prefix, c.LogFormat)
	}
	if c.UpcomingLimit < 1 {
		return fmt.Errorf("%s_UPCOMING_LIMIT must be positive", Prefix)
	}
	if c.ExportRateLimit < 1 {
		return fmt.Errorf("%s_EXPORT_RATE_LIMIT must be positive", Prefix)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Today != "" {
		if _, err := time.Parse(todayLayout, c.Today); err != nil {
			return fmt.Errorf("%s_TODAY must be YYYY-MM-DD: %w", Prefix, err)
		}
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Clock returns the application's notion of now. With TODAY set the date
// is pinned while the time of day keeps moving, which keeps the seeded
// dataset current in demos.
func (c *Config) Clock(loc *time.Location) (func() time.Time, error) {
	if c.Today == "" {
		return time.Now, nil
	}
	day, err := time.ParseInLocation(todayLayout, c.Today, loc)
	if err != nil {
		return nil, fmt.Errorf("parse today: %w", err)
	}
	return func() time.Time {
		n := time.Now().In(loc)
		return time.Date(day.Year(), day.Month(), day.Day(), n.Hour(), n.Minute(), n.Second(), n.Nanosecond(), loc)
	}, nil
}
