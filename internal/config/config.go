// Package config loads skyport settings from built-in defaults, an optional
// YAML file, and SKYPORT_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "SKYPORT_"

// PathEnvVar overrides the config file location.
const PathEnvVar = "SKYPORT_CONFIG"

// Config is the full client configuration.
type Config struct {
	APIURL      string        `koanf:"api_url"`
	SessionPath string        `koanf:"session_path"`
	HTTP        HTTPConfig    `koanf:"http"`
	Log         LogConfig     `koanf:"log"`
	Booking     BookingConfig `koanf:"booking"`
}

// HTTPConfig tunes the API transport.
type HTTPConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// LogConfig mirrors logging.Config.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// BookingConfig holds order defaults and the countdown period.
type BookingConfig struct {
	TickInterval  time.Duration `koanf:"tick_interval"`
	PaymentMethod string        `koanf:"payment_method"`
	Currency      string        `koanf:"currency"`
}

// Dir returns ~/.skyport, the home of the session file, log, and config.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config.Dir: %w", err)
	}
	return filepath.Join(home, ".skyport"), nil
}

func defaultConfig(dir string) *Config {
	return &Config{
		APIURL:      "http://localhost:8000",
		SessionPath: filepath.Join(dir, "session.db"),
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			File:   filepath.Join(dir, "skyport.log"),
		},
		Booking: BookingConfig{
			TickInterval:  time.Second,
			PaymentMethod: "card",
			Currency:      "USD",
		},
	}
}

// Load reads configuration with precedence env > file > defaults.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	path := os.Getenv(PathEnvVar)
	if path == "" {
		path = filepath.Join(dir, "config.yaml")
	}
	return LoadFile(dir, path)
}

// LoadFile is Load with an explicit state directory and config file path.
// A missing file is not an error.
func LoadFile(dir, path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(dir), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config.Load: defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("config.Load: file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config.Load: env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config.Load: unmarshal: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKeys maps environment names (without prefix) to koanf paths.
var envKeys = map[string]string{
	"API_URL":                "api_url",
	"SESSION_PATH":           "session_path",
	"HTTP_TIMEOUT":           "http.timeout",
	"LOG_LEVEL":              "log.level",
	"LOG_FORMAT":             "log.format",
	"LOG_FILE":               "log.file",
	"BOOKING_TICK_INTERVAL":  "booking.tick_interval",
	"BOOKING_PAYMENT_METHOD": "booking.payment_method",
	"BOOKING_CURRENCY":       "booking.currency",
}

// envKey transforms SKYPORT_LOG_LEVEL into log.level. Unknown variables
// (including SKYPORT_CONFIG) map to "" and are ignored by koanf.
func envKey(key string) string {
	return envKeys[strings.TrimPrefix(key, EnvPrefix)]
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: api_url %q must be an absolute http(s) URL", c.APIURL)
	}
	if c.SessionPath == "" {
		return fmt.Errorf("config: session_path is required")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("config: http.timeout must be positive")
	}
	if c.Booking.TickInterval <= 0 {
		return fmt.Errorf("config: booking.tick_interval must be positive")
	}
	return nil
}
