package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestResolveConfigPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	c := New(os.Stderr, LogInfo)
	got, err := c.resolveConfigPath()
	if err != nil {
		t.Fatalf("resolveConfigPath() error: %v", err)
	}
	if want := filepath.Join(xdg, appName, "config.toml"); got != want {
		t.Errorf("resolveConfigPath() = %q, want %q", got, want)
	}

	c.configPath = "/etc/confgrid.toml"
	if got, _ := c.resolveConfigPath(); got != "/etc/confgrid.toml" {
		t.Errorf("resolveConfigPath() with --config = %q, want /etc/confgrid.toml", got)
	}
}
