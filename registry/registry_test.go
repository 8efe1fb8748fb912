package registry

import (
	"testing"

	"github.com/stormgrid/squall/product"
	"github.com/stormgrid/squall/tables"
)

func mkLayer(discipline, category, number uint8, surface1value float64, efftime, reftime int64) *Layer {
	return &Layer{
		Parameter: &tables.Parameter{Discipline: discipline, Category: category, Number: number, DisplayName: "t"},
		Surface1:  product.Surface{Type: 100, Value: surface1value},
		EffTime:   efftime,
		RefTime:   reftime,
		Source:    PayloadLocator{Filename: "test.grib2"},
	}
}

func TestAddLayerOrdering(t *testing.T) {
	r := New()
	a := mkLayer(0, 0, 0, 85000, 1000, 900)
	b := mkLayer(0, 0, 0, 50000, 1000, 900)
	c := mkLayer(0, 0, 0, 85000, 2000, 900)

	for _, l := range []*Layer{a, b, c} {
		if err := r.AddLayer(l); err != nil {
			t.Fatalf("AddLayer: %v", err)
		}
	}

	layers := r.Layers()
	if len(layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(layers))
	}
	for i := 1; i < len(layers); i++ {
		if !layers[i-1].Key().Less(layers[i].Key()) {
			t.Errorf("layers[%d] (%v) not strictly less than layers[%d] (%v)", i-1, layers[i-1].Key(), i, layers[i].Key())
		}
	}
	// b has the smaller Surface1Value so should sort first.
	if layers[0] != b {
		t.Errorf("expected b first, got %v", layers[0])
	}
}

func TestAddLayerRejectsDuplicateKey(t *testing.T) {
	r := New()
	a := mkLayer(0, 0, 0, 85000, 1000, 900)
	a2 := mkLayer(0, 0, 0, 85000, 1000, 900)

	if err := r.AddLayer(a); err != nil {
		t.Fatalf("AddLayer: %v", err)
	}
	if err := r.AddLayer(a2); err == nil {
		t.Fatal("expected error adding duplicate key, got nil")
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 layer after rejected duplicate, got %d", r.Len())
	}
}

func TestRemoveMissingLayers(t *testing.T) {
	r := New()
	a := mkLayer(0, 0, 0, 85000, 1000, 900)
	a.Source.Filename = "present.grib2"
	b := mkLayer(0, 0, 0, 50000, 1000, 900)
	b.Source.Filename = "gone.grib2"

	r.AddLayer(a)
	r.AddLayer(b)

	removed := r.RemoveMissingLayers(func(filename string) bool {
		return filename == "present.grib2"
	})
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 layer left, got %d", r.Len())
	}
	if r.Layers()[0] != a {
		t.Error("expected surviving layer to be a")
	}
}

func TestRemoveObsoleteLayersKeepsNewestRefTime(t *testing.T) {
	r := New()
	older := mkLayer(0, 0, 0, 85000, 1000, 900)
	newer := mkLayer(0, 0, 0, 85000, 1000, 1800)

	r.AddLayer(older)
	r.AddLayer(newer)

	removed := r.RemoveObsoleteLayers()
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	layers := r.Layers()
	if len(layers) != 1 {
		t.Fatalf("expected 1 layer left, got %d", len(layers))
	}
	if layers[0].RefTime != 1800 {
		t.Errorf("expected surviving layer to have reftime 1800, got %d", layers[0].RefTime)
	}
}

func TestRemoveObsoleteLayersIdempotent(t *testing.T) {
	r := New()
	r.AddLayer(mkLayer(0, 0, 0, 85000, 1000, 900))
	r.AddLayer(mkLayer(0, 0, 0, 85000, 1000, 1800))
	r.AddLayer(mkLayer(0, 0, 0, 50000, 1000, 900))

	first := r.RemoveObsoleteLayers()
	if first != 1 {
		t.Fatalf("expected 1 removed on first pass, got %d", first)
	}
	second := r.RemoveObsoleteLayers()
	if second != 0 {
		t.Fatalf("expected 0 removed on second pass (idempotent), got %d", second)
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 layers remaining, got %d", r.Len())
	}
}

func TestNearestReturnsBracketingCandidates(t *testing.T) {
	r := New()
	below := mkLayer(0, 0, 0, 85000, 1000, 900)
	above := mkLayer(0, 0, 0, 85000, 2000, 900)
	r.AddLayer(below)
	r.AddLayer(above)

	candidates := r.Nearest(below.Parameter.ID(), Key{Surface2Type: 0, Surface2Value: 0}, 1500, 85000)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	found := map[*Layer]bool{}
	for _, c := range candidates {
		found[c] = true
	}
	if !found[below] || !found[above] {
		t.Error("expected both below and above layers among candidates")
	}
}
