package cache

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/crypto/md4"
)

// Jpeg2000Cache is the on-disk cache of decoded JPEG-2000 components,
// keyed by the MD4 hash of the encoded payload. Files live flat in Dir,
// named "jpeg2000.<32-hex>".
type Jpeg2000Cache struct {
	Dir string
}

// NewJpeg2000Cache creates a cache rooted at dir, creating it (mode 0755)
// if it doesn't exist.
func NewJpeg2000Cache(dir string) (*Jpeg2000Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cache: creating %s: %w", dir, err)
	}
	return &Jpeg2000Cache{Dir: dir}, nil
}

// KeyFor returns the cache filename for a given encoded payload.
func (c *Jpeg2000Cache) KeyFor(payload []byte) string {
	sum := md4.New()
	sum.Write(payload)
	return "jpeg2000." + hex.EncodeToString(sum.Sum(nil))
}

// Get returns the cached decoded bytes for payload, or (nil, false) on a
// cache miss. A successful Get counts as an access for LRU purposes.
func (c *Jpeg2000Cache) Get(payload []byte) ([]byte, bool) {
	path := filepath.Join(c.Dir, c.KeyFor(payload))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	now := time.Now()
	os.Chtimes(path, now, now)
	return data, true
}

// Put stores decoded bytes for payload. Writes go to a temp file first and
// are renamed into place, so a crash mid-write never leaves a partial
// entry visible; any partial temp file left behind by a prior crash is
// unlinked before writing.
func (c *Jpeg2000Cache) Put(payload []byte, decoded []byte) error {
	final := filepath.Join(c.Dir, c.KeyFor(payload))
	tmp := final + ".tmp"

	os.Remove(tmp)

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("cache: creating %s: %w", tmp, err)
	}

	if _, err := f.Write(decoded); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cache: writing %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache: closing %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache: renaming %s: %w", tmp, err)
	}
	return nil
}

// Expire removes cache entries older than maxDays and, if the directory's
// total size still exceeds maxBytes after the age sweep, evicts the
// least-recently-accessed entries until it no longer does.
func (c *Jpeg2000Cache) Expire(maxDays int, maxBytes int64) error {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return fmt.Errorf("cache: reading %s: %w", c.Dir, err)
	}

	type fileInfo struct {
		path       string
		size       int64
		accessTime time.Time
	}

	var files []fileInfo
	cutoff := time.Now().AddDate(0, 0, -maxDays)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(c.Dir, entry.Name())
		if info.ModTime().Before(cutoff) {
			os.Remove(path)
			continue
		}
		files = append(files, fileInfo{path: path, size: info.Size(), accessTime: info.ModTime()})
	}

	var total int64
	for _, f := range files {
		total += f.size
	}
	if total <= maxBytes {
		return nil
	}

	sort.Slice(files, func(i, j int) bool { return files[i].accessTime.Before(files[j].accessTime) })
	for _, f := range files {
		if total <= maxBytes {
			break
		}
		if err := os.Remove(f.path); err == nil {
			total -= f.size
		}
	}
	return nil
}

