// Package config loads and saves the confgrid configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/confgrid/config.toml
// (~/.config/confgrid/config.toml when XDG_CONFIG_HOME is unset). A missing
// file is not an error: Load returns the defaults. Environment variables
// override file values:
//
//	CONFGRID_REDIS_URL      cache.redis_url (and selects the redis backend)
//	CONFGRID_CACHE_BACKEND  cache.backend
//	CONFGRID_LISTEN         server.listen
//	CONFGRID_TIMEZONE       timezone
package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/confgrid/confgrid/pkg/cache"
	apperr "github.com/confgrid/confgrid/pkg/errors"
	"github.com/confgrid/confgrid/pkg/pipeline"
)

const appName = "confgrid"

// Config is the top-level application configuration.
type Config struct {
	// TrackMergeGap and FrameMergeGap are Go duration strings ("5m", "0s").
	TrackMergeGap string `toml:"track_merge_gap"`
	FrameMergeGap string `toml:"frame_merge_gap"`

	// Timezone is the IANA zone used for recurrences and floating iCalendar
	// times. Empty means UTC.
	Timezone string `toml:"timezone"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend  string `toml:"backend"`             // file, redis or none
	Dir      string `toml:"dir,omitempty"`       // file backend; defaults to the user cache dir
	RedisURL string `toml:"redis_url,omitempty"` // redis backend
}

// ServerConfig configures `confgrid serve`.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TrackMergeGap: pipeline.DefaultTrackMergeGap.String(),
		FrameMergeGap: pipeline.DefaultFrameMergeGap.String(),
		Cache:         CacheConfig{Backend: cache.BackendFile},
		Server:        ServerConfig{Listen: "127.0.0.1:8080"},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// Load reads the configuration at path, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, apperr.New(apperr.ErrCodeInvalidFormat, "%s: unknown keys %v", path, undecoded)
		}
	}

	cfg.Normalize()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions, creating the
// parent directory if needed.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
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

// Normalize fills empty fields with defaults so partially filled files
// still behave.
func (c *Config) Normalize() {
	def := Default()
	if c.TrackMergeGap == "" {
		c.TrackMergeGap = def.TrackMergeGap
	}
	if c.FrameMergeGap == "" {
		c.FrameMergeGap = def.FrameMergeGap
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = def.Cache.Backend
	}
	if c.Server.Listen == "" {
		c.Server.Listen = def.Server.Listen
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CONFGRID_REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = cache.BackendRedis
	}
	if v := os.Getenv("CONFGRID_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("CONFGRID_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("CONFGRID_TIMEZONE"); v != "" {
		c.Timezone = v
	}
}

// Validate checks every field.
func (c *Config) Validate() error {
	if _, _, err := c.Gaps(); err != nil {
		return err
	}
	if _, err := apperr.ValidateTimezone(c.Timezone); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendNone:
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return apperr.New(apperr.ErrCodeInvalidInput, "cache backend redis needs cache.redis_url or CONFGRID_REDIS_URL")
		}
	default:
		return apperr.New(apperr.ErrCodeInvalidInput, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	return nil
}

// Gaps parses the configured merge gaps.
func (c *Config) Gaps() (track, frame time.Duration, err error) {
	track, err = apperr.ParseMergeGap("track_merge_gap", c.TrackMergeGap, pipeline.DefaultTrackMergeGap)
	if err != nil {
		return 0, 0, err
	}
	frame, err = apperr.ParseMergeGap("frame_merge_gap", c.FrameMergeGap, pipeline.DefaultFrameMergeGap)
	if err != nil {
		return 0, 0, err
	}
	return track, frame, nil
}

// CacheOptions returns the options for cache.Open. defaultDir is used when
// the file backend has no directory configured.
func (c *Config) CacheOptions(defaultDir string) cache.OpenOptions {
	dir := c.Cache.Dir
	if dir == "" {
		dir = defaultDir
	}
	return cache.OpenOptions{
		Backend:  c.Cache.Backend,
		Dir:      dir,
		RedisURL: c.Cache.RedisURL,
	}
}
