package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestJpeg2000CachePutGet(t *testing.T) {
	dir := t.TempDir()
	c, err := NewJpeg2000Cache(dir)
	if err != nil {
		t.Fatalf("NewJpeg2000Cache: %v", err)
	}

	payload := []byte("fake jpeg2000 codestream")
	decoded := []byte{1, 2, 3, 4}

	if _, ok := c.Get(payload); ok {
		t.Fatal("expected cache miss before Put")
	}
	if err := c.Put(payload, decoded); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := c.Get(payload)
	if !ok {
		t.Fatal("expected cache hit after Put")
	}
	if string(got) != string(decoded) {
		t.Errorf("got %v, want %v", got, decoded)
	}
}

func TestJpeg2000CacheKeyIsStable(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewJpeg2000Cache(dir)
	payload := []byte("same payload")
	k1 := c.KeyFor(payload)
	k2 := c.KeyFor(payload)
	if k1 != k2 {
		t.Errorf("expected stable key, got %s and %s", k1, k2)
	}
}

func TestJpeg2000CacheExpireByAge(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewJpeg2000Cache(dir)

	payload := []byte("old entry")
	if err := c.Put(payload, []byte{9}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	old := time.Now().AddDate(0, 0, -30)
	path := filepath.Join(dir, c.KeyFor(payload))
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	if err := c.Expire(14, 1<<30); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if _, ok := c.Get(payload); ok {
		t.Error("expected entry to be expired by age")
	}
}

func TestJpeg2000CacheExpireBySize(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewJpeg2000Cache(dir)

	small := make([]byte, 10)
	big := make([]byte, 100)

	c.Put([]byte("small"), small)
	time.Sleep(10 * time.Millisecond)
	c.Put([]byte("big"), big)

	if err := c.Expire(365, 50); err != nil {
		t.Fatalf("Expire: %v", err)
	}

	if _, ok := c.Get([]byte("small")); ok {
		t.Error("expected least-recently-accessed entry to be evicted first")
	}
}
