package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultResolvesCacheDir(t *testing.T) {
	cfg := Default()
	if cfg.CacheDir == "" {
		t.Fatal("expected non-empty default cache dir")
	}
	if cfg.PositiveCacheSeconds != defaultPositiveCacheSeconds {
		t.Errorf("PositiveCacheSeconds = %d, want %d", cfg.PositiveCacheSeconds, defaultPositiveCacheSeconds)
	}
	if cfg.DiskCacheMaxBytes != defaultDiskCacheMaxBytes {
		t.Errorf("DiskCacheMaxBytes = %d, want %d", cfg.DiskCacheMaxBytes, defaultDiskCacheMaxBytes)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.CacheDir != want.CacheDir || cfg.Workers != want.Workers {
		t.Errorf("Load of missing file = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "squall.toml")
	contents := `
cache_dir = "/tmp/custom-cache"
positive_cache_seconds = 120
workers = 4
disk_cache_max_bytes = 2048
disk_cache_max_days = 7
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheDir != "/tmp/custom-cache" {
		t.Errorf("CacheDir = %q, want /tmp/custom-cache", cfg.CacheDir)
	}
	if cfg.PositiveCacheSeconds != 120 {
		t.Errorf("PositiveCacheSeconds = %d, want 120", cfg.PositiveCacheSeconds)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.DiskCacheMaxBytes != 2048 {
		t.Errorf("DiskCacheMaxBytes = %d, want 2048", cfg.DiskCacheMaxBytes)
	}
	if cfg.DiskCacheMaxDays != 7 {
		t.Errorf("DiskCacheMaxDays = %d, want 7", cfg.DiskCacheMaxDays)
	}
	// NegativeCacheSeconds wasn't set in the file; default carries through.
	if cfg.NegativeCacheSeconds != defaultNegativeCacheSeconds {
		t.Errorf("NegativeCacheSeconds = %d, want default %d", cfg.NegativeCacheSeconds, defaultNegativeCacheSeconds)
	}
}

func TestEnsureCacheDirCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	cfg := Config{CacheDir: dir}
	if err := cfg.EnsureCacheDir(); err != nil {
		t.Fatalf("EnsureCacheDir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected CacheDir to be created as a directory")
	}
}
