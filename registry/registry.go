package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a concurrent, ordered, deduplicated set of layers. Layers are
// kept sorted by Key so that nearest-neighbor scans for interpolation don't
// need an auxiliary index.
type Registry struct {
	mu     sync.RWMutex
	layers []*Layer
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// AddLayer inserts a layer in key order. Returns an error if a layer with
// the same Key is already present; the existing entry is left untouched.
func (r *Registry) AddLayer(l *Layer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := l.Key()
	idx := sort.Search(len(r.layers), func(i int) bool {
		return !r.layers[i].Key().Less(key)
	})
	if idx < len(r.layers) && r.layers[idx].Key() == key {
		return fmt.Errorf("registry: layer %s already present", l)
	}

	r.layers = append(r.layers, nil)
	copy(r.layers[idx+1:], r.layers[idx:])
	r.layers[idx] = l
	return nil
}

// Len returns the number of layers currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.layers)
}

// Layers returns a snapshot slice of all registered layers in key order.
// The returned slice is owned by the caller; mutating it does not affect
// the registry.
func (r *Registry) Layers() []*Layer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Layer, len(r.layers))
	copy(out, r.layers)
	return out
}

// RemoveMissingLayers drops any layer whose source file no longer exists,
// as reported by exists. Callers typically pass a closure wrapping
// os.Stat so the registry stays free of direct filesystem dependencies.
func (r *Registry) RemoveMissingLayers(exists func(filename string) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.layers[:0]
	removed := 0
	for _, l := range r.layers {
		if exists(l.Source.Filename) {
			kept = append(kept, l)
		} else {
			removed++
		}
	}
	r.layers = kept
	return removed
}

// RemoveObsoleteLayers scans adjacent entries in key order and drops the
// older-reftime entry whenever every key component except RefTime matches.
// Because entries are sorted, duplicates-except-reftime are always
// neighbours, so a single pass suffices.
func (r *Registry) RemoveObsoleteLayers() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.layers) < 2 {
		return 0
	}

	kept := make([]*Layer, 0, len(r.layers))
	removed := 0
	kept = append(kept, r.layers[0])

	for i := 1; i < len(r.layers); i++ {
		prev := kept[len(kept)-1]
		cur := r.layers[i]
		if prev.Key().SameSeries(cur.Key()) {
			// cur.RefTime >= prev.RefTime because of sort order; keep the
			// newer one.
			if cur.RefTime >= prev.RefTime {
				kept[len(kept)-1] = cur
			}
			removed++
			continue
		}
		kept = append(kept, cur)
	}

	r.layers = kept
	return removed
}

// Nearest returns up to four candidate layers bracketing (efftime,
// surface1value) for the given parameter and surface2: the nearest layer at
// or below and at or above each of efftime and surface1value, deduplicated.
// Used by the interpolator to assemble its fit inputs.
func (r *Registry) Nearest(parameterID string, surface2 Key, efftime int64, surface1value float64) []*Layer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []*Layer
	for _, l := range r.layers {
		k := l.Key()
		if k.ParameterID != parameterID {
			continue
		}
		if k.Surface2Type != surface2.Surface2Type || k.Surface2Value != surface2.Surface2Value {
			continue
		}
		candidates = append(candidates, l)
	}
	if len(candidates) == 0 {
		return nil
	}

	var belowT, aboveT, belowS, aboveS *Layer
	for _, l := range candidates {
		if l.EffTime <= efftime && (belowT == nil || l.EffTime > belowT.EffTime) {
			belowT = l
		}
		if l.EffTime >= efftime && (aboveT == nil || l.EffTime < aboveT.EffTime) {
			aboveT = l
		}
		if l.Surface1.Value <= surface1value && (belowS == nil || l.Surface1.Value > belowS.Surface1.Value) {
			belowS = l
		}
		if l.Surface1.Value >= surface1value && (aboveS == nil || l.Surface1.Value < aboveS.Surface1.Value) {
			aboveS = l
		}
	}

	seen := make(map[*Layer]bool, 4)
	var out []*Layer
	for _, l := range []*Layer{belowT, aboveT, belowS, aboveS} {
		if l != nil && !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
