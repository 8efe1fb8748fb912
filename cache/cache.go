// Package cache provides the per-layer decoded-data cache: a positive TTL
// after last use, a negative cache for recently-failed loads, and the
// mmap-backed file reads that back both.
package cache

import (
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/exp/mmap"

	"github.com/stormgrid/squall/internal/errs"
	"github.com/stormgrid/squall/registry"
	"github.com/stormgrid/squall/section"
)

// cacheTimeNever marks a negatively-cached entry: a previous load attempt
// failed and no retry is scheduled until the entry is explicitly expired.
const cacheTimeNever = int64(math.MaxInt64)

const (
	positiveTTL  = 60 * time.Second
	evictionLag  = 5 * time.Second // grace period past positiveTTL before the timer actually drops data
)

// entry is one layer's cached state.
type entry struct {
	mu        sync.Mutex
	data      []float32
	cacheTime int64 // unix seconds deadline, or cacheTimeNever
	timer     *time.Timer
}

// Store is the process-wide cache of decoded layer payloads, keyed by
// *registry.Layer identity. One mutex per layer keeps decode contention
// local instead of serializing the whole cache behind a single lock.
type Store struct {
	mu      sync.Mutex
	entries map[*registry.Layer]*entry
	readers map[string]*mmap.ReaderAt
	readerMu sync.Mutex
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		entries: make(map[*registry.Layer]*entry),
		readers: make(map[string]*mmap.ReaderAt),
	}
}

// Load returns l's decoded grid, using the cache if a live positive entry
// exists (and extending its TTL), returning a DecodeFailureError if the entry
// is negatively cached (the original decode error is not kept), or decoding
// the payload from its source file and populating the cache otherwise.
func (s *Store) Load(l *registry.Layer) ([]float32, error) {
	e := s.entryFor(l)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now().Unix()
	if e.data != nil && e.cacheTime >= now {
		e.cacheTime = time.Now().Add(positiveTTL).Unix()
		s.scheduleEviction(e, l, positiveTTL+evictionLag)
		return e.data, nil
	}
	if e.cacheTime == cacheTimeNever {
		return nil, &errs.DecodeFailureError{
			Template: int(l.DataRepresentationCode),
			Message:  fmt.Sprintf("layer %s previously failed to decode", l),
		}
	}

	data, err := s.decode(l)
	if err != nil {
		e.data = nil
		e.cacheTime = cacheTimeNever
		s.scheduleEviction(e, l, 0)
		return nil, err
	}

	e.data = data
	e.cacheTime = time.Now().Add(positiveTTL).Unix()
	s.scheduleEviction(e, l, positiveTTL+evictionLag)
	return data, nil
}

// ExpireNow clears l's cached state immediately, regardless of TTL.
func (s *Store) ExpireNow(l *registry.Layer) {
	e := s.entryFor(l)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data = nil
	e.cacheTime = 0
	if e.timer != nil {
		e.timer.Stop()
	}
}

func (s *Store) entryFor(l *registry.Layer) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[l]
	if !ok {
		e = &entry{}
		s.entries[l] = e
	}
	return e
}

// scheduleEviction arms a timer that drops the entry's data after delay,
// so a positively-cached layer is actually freed ~65s after last use even
// if nothing queries it again. delay of 0 schedules nothing (used for the
// negative-cache path, which stays until ExpireNow).
func (s *Store) scheduleEviction(e *entry, l *registry.Layer, delay time.Duration) {
	if e.timer != nil {
		e.timer.Stop()
	}
	if delay <= 0 {
		return
	}
	e.timer = time.AfterFunc(delay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if time.Now().Unix() >= e.cacheTime {
			e.data = nil
		}
	})
}

// decode reads l's payload (and optional bitmap) from its source file and
// runs it through the layer's representation decoder.
func (s *Store) decode(l *registry.Layer) ([]float32, error) {
	reader, err := s.readerFor(l.Source.Filename)
	if err != nil {
		return nil, fmt.Errorf("cache: opening %s: %w", l.Source.Filename, err)
	}

	payload := make([]byte, l.Source.Length)
	n, err := reader.ReadAt(payload, l.Source.Offset)
	if err != nil {
		return nil, &errs.TruncatedInputError{Offset: int(l.Source.Offset), Declared: uint64(l.Source.Length), Have: n}
	}

	var bitmap []bool
	if l.Bitmap.Present {
		raw := make([]byte, l.Bitmap.Length)
		n, err := reader.ReadAt(raw, l.Bitmap.Offset)
		if err != nil {
			return nil, &errs.TruncatedInputError{Offset: int(l.Bitmap.Offset), Declared: uint64(l.Bitmap.Length), Have: n}
		}
		sec6, err := section.ParseSection6WithPrevious(raw, uint32(l.Grid.NumPoints()), nil)
		if err != nil {
			return nil, &errs.DecodeFailureError{
				Template: int(l.DataRepresentationCode),
				Message:  fmt.Sprintf("parsing bitmap for %s: %v", l, err),
			}
		}
		bitmap = sec6.Bitmap
	}

	data, err := l.Representation.Decode(payload, bitmap)
	if err != nil {
		return nil, &errs.DecodeFailureError{
			Template: int(l.DataRepresentationCode),
			Message:  fmt.Sprintf("%s: %v", l, err),
		}
	}
	if len(data) != l.Grid.NumPoints() {
		return nil, &errs.DecodeFailureError{
			Template: int(l.DataRepresentationCode),
			Message:  fmt.Sprintf("decoded length %d != grid points %d for %s", len(data), l.Grid.NumPoints(), l),
		}
	}
	return data, nil
}

func (s *Store) readerFor(filename string) (*mmap.ReaderAt, error) {
	s.readerMu.Lock()
	defer s.readerMu.Unlock()
	if r, ok := s.readers[filename]; ok {
		return r, nil
	}
	r, err := mmap.Open(filename)
	if err != nil {
		return nil, err
	}
	s.readers[filename] = r
	return r, nil
}

// Close releases all open file mappings. Callers should call Close once
// the Store is no longer needed.
func (s *Store) Close() error {
	s.readerMu.Lock()
	defer s.readerMu.Unlock()
	var firstErr error
	for _, r := range s.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.readers = make(map[string]*mmap.ReaderAt)
	return firstErr
}
