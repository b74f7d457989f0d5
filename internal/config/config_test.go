package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/confgrid/confgrid/pkg/cache"
	apperr "github.com/confgrid/confgrid/pkg/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CONFGRID_REDIS_URL", "CONFGRID_CACHE_BACKEND", "CONFGRID_LISTEN", "CONFGRID_TIMEZONE"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}

	track, frame, err := cfg.Gaps()
	if err != nil {
		t.Fatal(err)
	}
	if track != 5*time.Minute || frame != 0 {
		t.Errorf("Gaps() = %s, %s; want 5m0s, 0s", track, frame)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.TrackMergeGap = "10m"
	cfg.Timezone = "Europe/Berlin"
	cfg.Cache.Backend = cache.BackendNone
	cfg.Server.Listen = ":9000"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if *got != *cfg {
		t.Errorf("Load() = %+v, want %+v", got, cfg)
	}
}

func TestLoadPartialFileIsNormalized(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("timezone = \"Asia/Tokyo\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Timezone != "Asia/Tokyo" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.Cache.Backend != cache.BackendFile || cfg.TrackMergeGap != "5m0s" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode apperr.Code
	}{
		{"Syntax", "track_merge_gap = ", apperr.ErrCodeInvalidFormat},
		{"UnknownKey", "colour = \"red\"\n", apperr.ErrCodeInvalidFormat},
		{"BadGap", "track_merge_gap = \"soon\"\n", apperr.ErrCodeInvalidDuration},
		{"NegativeGap", "frame_merge_gap = \"-1m\"\n", apperr.ErrCodeInvalidInput},
		{"BadTimezone", "timezone = \"Atlantis/Capital\"\n", apperr.ErrCodeInvalidInput},
		{"BadBackend", "[cache]\nbackend = \"memcached\"\n", apperr.ErrCodeInvalidInput},
		{"RedisWithoutURL", "[cache]\nbackend = \"redis\"\n", apperr.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !apperr.Is(err, tt.wantCode) {
				t.Errorf("Load() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFGRID_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CONFGRID_LISTEN", ":7000")
	t.Setenv("CONFGRID_TIMEZONE", "UTC")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Backend != cache.BackendRedis || cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Listen != ":7000" || cfg.Timezone != "UTC" {
		t.Errorf("listen/timezone = %q/%q", cfg.Server.Listen, cfg.Timezone)
	}

	t.Setenv("CONFGRID_CACHE_BACKEND", "NONE")
	cfg, err = Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Backend != cache.BackendNone {
		t.Errorf("backend = %q, want none", cfg.Cache.Backend)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "confgrid", "config.toml"); path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}
}

func TestCacheOptions(t *testing.T) {
	cfg := Default()
	if got := cfg.CacheOptions("/var/cache/x"); got.Dir != "/var/cache/x" || got.Backend != cache.BackendFile {
		t.Errorf("CacheOptions() = %+v", got)
	}
	cfg.Cache.Dir = "/data"
	if got := cfg.CacheOptions("/var/cache/x"); got.Dir != "/data" {
		t.Errorf("CacheOptions().Dir = %q, want /data", got.Dir)
	}
}
