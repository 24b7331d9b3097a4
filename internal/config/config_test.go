package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// missing points the default config location at an empty directory.
func missing(t *testing.T) Options {
	dir := t.TempDir()
	orig := ConfigDir
	ConfigDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { ConfigDir = orig })
	return Options{DotEnv: filepath.Join(dir, "none.env")}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(missing(t))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, DefaultHomeURL, cfg.HomeURL)
	assert.True(t, cfg.ShowURL)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
home_url = "https://www.triviuminteractive.com/games"
theme = "midnight"
show_url = false
allowed_hosts = ["store.triviuminteractive.com"]
cache_size = 10
timeout = "5s"
`), 0o644))

	dotenv := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(dotenv, []byte("TRIVIUM_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("TRIVIUM_LOG_LEVEL") })

	t.Setenv("TRIVIUM_CACHE_SIZE", "20")

	cfg, err := Load(Options{File: file, DotEnv: dotenv})
	require.NoError(t, err)

	assert.Equal(t, "https://www.triviuminteractive.com/games", cfg.HomeURL)
	assert.Equal(t, "midnight", cfg.Theme)
	assert.False(t, cfg.ShowURL)
	assert.Equal(t, []string{"store.triviuminteractive.com"}, cfg.AllowedHosts)
	assert.Equal(t, 20, cfg.CacheSize, "environment overrides file")
	assert.Equal(t, Duration(5*time.Second), cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel, "dotenv feeds the environment")
}

func TestLoadBadFile(t *testing.T) {
	opts := missing(t)
	opts.File = filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(opts.File, []byte("home_url = ["), 0o644))

	_, err := Load(opts)
	assert.Error(t, err)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	opts := missing(t)
	opts.File = filepath.Join(t.TempDir(), "none.toml")

	_, err := Load(opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("TRIVIUM_TIMEOUT", "soon")
	_, err := Load(missing(t))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"relative home", func(c *Config) { c.HomeURL = "/games" }, false},
		{"ftp home", func(c *Config) { c.HomeURL = "ftp://triviuminteractive.com" }, false},
		{"zero cache", func(c *Config) { c.CacheSize = 0 }, false},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, false},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLogPath(t *testing.T) {
	c := Default()
	c.LogFile = "/tmp/custom.log"
	p, err := c.LogPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.log", p)

	c.LogFile = ""
	p, err = c.LogPath()
	require.NoError(t, err)
	assert.Equal(t, AppName+".log", filepath.Base(p))
}

func TestFilePathUsesConfigDir(t *testing.T) {
	orig := ConfigDir
	t.Cleanup(func() { ConfigDir = orig })
	ConfigDir = func() (string, error) { return "/etc/trivium", nil }

	p, err := FilePath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/trivium/config.toml", p)
}
