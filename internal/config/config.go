// Package config loads trivium-view settings.
//
// Values are layered: built-in defaults, then the optional TOML file,
// then a .env file, then TRIVIUM_* environment variables. Command-line
// flags are applied on top by the caller. Nothing is ever written back.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

const (
	AppName   = "trivium-view"
	EnvPrefix = "TRIVIUM"

	DefaultHomeURL   = "https://triviuminteractive.com"
	DefaultTheme     = "trivium"
	DefaultCacheSize = 50
	DefaultTimeout   = 15 * time.Second
	DefaultLogLevel  = "info"
)

// Duration is a time.Duration read from strings such as "15s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds trivium-view settings.
type Config struct {
	HomeURL      string   `toml:"home_url" envconfig:"HOME_URL"`
	Theme        string   `toml:"theme" envconfig:"THEME"`
	ShowURL      bool     `toml:"show_url" envconfig:"SHOW_URL"`
	AllowedHosts []string `toml:"allowed_hosts" envconfig:"ALLOWED_HOSTS"`
	CacheSize    int      `toml:"cache_size" envconfig:"CACHE_SIZE"`
	Timeout      Duration `toml:"timeout" envconfig:"TIMEOUT"`
	UserAgent    string   `toml:"user_agent" envconfig:"USER_AGENT"`
	LogLevel     string   `toml:"log_level" envconfig:"LOG_LEVEL"`
	LogFile      string   `toml:"log_file" envconfig:"LOG_FILE"`
	LogDev       bool     `toml:"log_dev" envconfig:"LOG_DEV"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HomeURL:   DefaultHomeURL,
		Theme:     DefaultTheme,
		ShowURL:   true,
		CacheSize: DefaultCacheSize,
		Timeout:   Duration(DefaultTimeout),
		LogLevel:  DefaultLogLevel,
	}
}

// Options controls where Load looks. Empty paths use the standard
// locations, which may be missing. An explicit File must exist.
type Options struct {
	File   string
	DotEnv string
}

// Load builds the configuration from every layer and validates it.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	path, explicit := opts.File, opts.File != ""
	if !explicit {
		p, err := FilePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	// only the default location may be absent
	if err := cfg.loadFile(path); err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	dotenv := opts.DotEnv
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", dotenv, err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.HomeURL)
	if err != nil {
		return fmt.Errorf("invalid home_url %q: %w", c.HomeURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid home_url %q: must be an absolute http(s) URL", c.HomeURL)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("invalid cache_size %d: must be positive", c.CacheSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", time.Duration(c.Timeout))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", c.LogLevel)
	}
	return nil
}

// LogPath returns the configured log file or the default one.
func (c *Config) LogPath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName+".log"), nil
}

// ConfigDir returns the platform config directory for trivium-view.
// It is a variable so tests can point it elsewhere.
var ConfigDir = func() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting config dir: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// FilePath returns the default config file location.
func FilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StateDir returns the directory for logs.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Logs", AppName), nil
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, AppName), nil
		}
		return filepath.Join(home, "."+AppName), nil
	default:
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		return filepath.Join(home, ".local", "state", AppName), nil
	}
}
