// Package config loads service settings from flags, NAJDENO_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable the service reads.
const EnvPrefix = "NAJDENO"

// Keys.
const (
	KeyDB                = "db"
	KeyAddr              = "addr"
	KeyPublicURL         = "public_url"
	KeyLogFile           = "log.file"
	KeyLogLevel          = "log.level"
	KeyLogMaxSizeMB      = "log.max_size_mb"
	KeyLogMaxBackups     = "log.max_backups"
	KeyMessagesPerMinute = "ratelimit.messages_per_minute"
	KeyRateBurst         = "ratelimit.burst"
	KeyHandshakeCacheTTL = "handshake.cache_ttl"
	KeyTimeZone          = "display.time_zone"
)

// Config is the resolved configuration. Nothing reads viper after Load.
type Config struct {
	DB        string
	Addr      string
	PublicURL string
	Log       Log
	RateLimit RateLimit
	Handshake Handshake
	Display   Display
}

// Log configures logging.
type Log struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
}

// RateLimit configures the per-user limit on chat messages and claim submissions.
type RateLimit struct {
	MessagesPerMinute int
	Burst             int
}

// Handshake configures handshake token resolution.
type Handshake struct {
	CacheTTL time.Duration
}

// Display configures how times are shown to users.
type Display struct {
	// TimeZone is an IANA zone name; empty means the server's local zone.
	TimeZone string
	Location *time.Location
}

// New returns a viper instance with defaults and environment binding set up.
// NAJDENO_LOG_LEVEL maps to log.level and so on.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDB, "najdeno.sqlite3")
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyPublicURL, "")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogMaxSizeMB, 10)
	v.SetDefault(KeyLogMaxBackups, 3)
	v.SetDefault(KeyMessagesPerMinute, 30)
	v.SetDefault(KeyRateBurst, 5)
	v.SetDefault(KeyHandshakeCacheTTL, 10*time.Minute)
	v.SetDefault(KeyTimeZone, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (if non-empty) into v and resolves the configuration.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		DB:        v.GetString(KeyDB),
		Addr:      v.GetString(KeyAddr),
		PublicURL: strings.TrimRight(v.GetString(KeyPublicURL), "/"),
		Log: Log{
			File:       v.GetString(KeyLogFile),
			Level:      v.GetString(KeyLogLevel),
			MaxSizeMB:  v.GetInt(KeyLogMaxSizeMB),
			MaxBackups: v.GetInt(KeyLogMaxBackups),
		},
		RateLimit: RateLimit{
			MessagesPerMinute: v.GetInt(KeyMessagesPerMinute),
			Burst:             v.GetInt(KeyRateBurst),
		},
		Handshake: Handshake{
			CacheTTL: v.GetDuration(KeyHandshakeCacheTTL),
		},
		Display: Display{
			TimeZone: strings.TrimSpace(v.GetString(KeyTimeZone)),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Display.Location = time.Local
	if cfg.Display.TimeZone != "" {
		// Validate already proved the zone loads.
		cfg.Display.Location, _ = time.LoadLocation(cfg.Display.TimeZone)
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.DB == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if c.PublicURL != "" {
		u, err := url.Parse(c.PublicURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("public_url must be an absolute http(s) URL, got %q", c.PublicURL))
		}
	}
	if c.RateLimit.MessagesPerMinute < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}
	if c.Handshake.CacheTTL <= 0 {
		errs = append(errs, errors.New("handshake.cache_ttl must be positive"))
	}
	if c.Display.TimeZone != "" {
		if _, err := time.LoadLocation(c.Display.TimeZone); err != nil {
			errs = append(errs, fmt.Errorf("display.time_zone: %w", err))
		}
	}
	return errors.Join(errs...)
}
