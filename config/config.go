// Package config loads squall's ambient configuration: cache directory,
// cache TTLs, worker count, and the on-disk JPEG-2000 decode cache ceiling.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the tunables that govern caching and concurrency.
type Config struct {
	// CacheDir is the flat directory JPEG-2000 decode results are cached
	// in, named jpeg2000.<32-hex-md4>. Defaults to the OS per-user cache
	// directory plus "/gfscache".
	CacheDir string `toml:"cache_dir"`

	// PositiveCacheSeconds is how long a decoded layer payload stays
	// resident after last use.
	PositiveCacheSeconds int64 `toml:"positive_cache_seconds"`

	// NegativeCacheSeconds is a hold time for failed-decode negative cache
	// entries. cache.Store does not read it: a negative entry stays until
	// ExpireNow clears it.
	NegativeCacheSeconds int64 `toml:"negative_cache_seconds"`

	// Workers is the number of goroutines used for parallel message
	// parsing. Zero means runtime.NumCPU().
	Workers int `toml:"workers"`

	// DiskCacheMaxBytes bounds the on-disk JPEG-2000 decode cache; Expire
	// evicts by LRU-by-size once this is exceeded.
	DiskCacheMaxBytes int64 `toml:"disk_cache_max_bytes"`

	// DiskCacheMaxDays bounds the on-disk JPEG-2000 decode cache by age;
	// Expire evicts entries whose last access predates this.
	DiskCacheMaxDays int `toml:"disk_cache_max_days"`
}

const (
	defaultPositiveCacheSeconds = 60
	defaultNegativeCacheSeconds = 60
	defaultDiskCacheMaxBytes    = 1 << 30 // 1 GiB
	defaultDiskCacheMaxDays     = 14
)

// Default returns a Config with the default TTLs (the positive one matches
// the cache package's hardcoded 60s; the cache package has no negative TTL)
// and a cache directory resolved from the user's cache directory.
func Default() Config {
	dir := defaultCacheDir()
	return Config{
		CacheDir:             dir,
		PositiveCacheSeconds: defaultPositiveCacheSeconds,
		NegativeCacheSeconds: defaultNegativeCacheSeconds,
		Workers:              0,
		DiskCacheMaxBytes:    defaultDiskCacheMaxBytes,
		DiskCacheMaxDays:     defaultDiskCacheMaxDays,
	}
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "gfscache")
}

// Load reads a TOML configuration file at path, applying Default()'s values
// for any field the file doesn't set. A missing file is not an error;
// Load returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// EnsureCacheDir creates CacheDir (and parents) with mode 0755 if it
// doesn't already exist.
func (c Config) EnsureCacheDir() error {
	return os.MkdirAll(c.CacheDir, 0755)
}
