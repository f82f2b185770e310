// Package config loads the application configuration from a YAML file
// with RETHREAD_* environment overrides. Credentials never come from
// files; they are read from the environment only.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "RETHREAD_"

// Config is the root configuration shared by the binaries.
type Config struct {
	API    API    `koanf:"api"`
	Crawl  Crawl  `koanf:"crawl"`
	Cache  Cache  `koanf:"cache"`
	Server Server `koanf:"server"`
	Scrape Scrape `koanf:"scrape"`
	Log    Log    `koanf:"log"`

	// Credentials are filled from TWITTER_* environment variables,
	// never from the file or the RETHREAD_* namespace.
	Credentials Credentials `koanf:"-"`
}

// API configures the v1.1 status lookup client.
type API struct {
	BaseURL string        `koanf:"baseurl"`
	Timeout time.Duration `koanf:"timeout"`
	Wait    bool          `koanf:"wait"`
}

// Credentials carry the four OAuth values of a service application.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Complete reports whether all four values are present.
func (c Credentials) Complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" &&
		c.AccessToken != "" && c.AccessSecret != ""
}

// Crawl bounds thread resolution.
type Crawl struct {
	Budget     int           `koanf:"budget"`
	Retries    int           `koanf:"retries"`
	Workers    int           `koanf:"workers"`
	Backoff    time.Duration `koanf:"backoff"`
	MaxBackoff time.Duration `koanf:"maxbackoff"`
}

// Cache configures the lookup cache.
type Cache struct {
	TTL time.Duration `koanf:"ttl"`
}

// Server configures the HTTP service.
type Server struct {
	Addr   string        `koanf:"addr"`
	Limit  int           `koanf:"limit"`
	Window time.Duration `koanf:"window"`
}

// Scrape configures the headless-browser resolver.
type Scrape struct {
	Selectors string        `koanf:"selectors"`
	Timeout   time.Duration `koanf:"timeout"`
}

// Log configures logging output.
type Log struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: API{
			BaseURL: "https://api.twitter.com/1.1",
			Timeout: 10 * time.Second,
			Wait:    true,
		},
		Crawl: Crawl{
			Budget:     50,
			Retries:    3,
			Workers:    1,
			Backoff:    time.Second,
			MaxBackoff: time.Minute,
		},
		Cache: Cache{
			TTL: 15 * time.Minute,
		},
		Server: Server{
			Addr:   ":3000",
			Limit:  10,
			Window: time.Minute,
		},
		Scrape: Scrape{
			Selectors: "config/selectors.yaml",
			Timeout:   25 * time.Second,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads path (when it exists), applies RETHREAD_* environment
// overrides on top, and pulls credentials from the environment. A
// missing file is not an error; the defaults stand.
func Load(path string) (*Config, error) {
	cfg := Default()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Credentials = credentialsFromEnv()
	return cfg, nil
}

// envKey maps RETHREAD_CRAWL_BUDGET onto crawl.budget. Nested keys
// stay single words so the mapping holds.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
}

func credentialsFromEnv() Credentials {
	return Credentials{
		ConsumerKey:    os.Getenv("TWITTER_CONSUMER_KEY"),
		ConsumerSecret: os.Getenv("TWITTER_CONSUMER_SECRET"),
		AccessToken:    os.Getenv("TWITTER_ACCESS_TOKEN"),
		AccessSecret:   os.Getenv("TWITTER_ACCESS_SECRET"),
	}
}
