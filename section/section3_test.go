package section

import (
	"math"
	"testing"
)

// makeSection3LatLonData builds a minimal Section 3 (header + template 3.0)
// with the given grid dimensions and corner coordinates, all in micro-degrees.
func makeSection3LatLonData(ni, nj uint32, la1, lo1, la2, lo2 int32) []byte {
	const templateLen = 58
	total := 14 + templateLen
	data := make([]byte, total)

	putU32 := func(off int, v uint32) {
		data[off] = byte(v >> 24)
		data[off+1] = byte(v >> 16)
		data[off+2] = byte(v >> 8)
		data[off+3] = byte(v)
	}
	putI32 := func(off int, v int32) { putU32(off, uint32(v)) }

	putU32(0, uint32(total))
	data[4] = 3 // section number
	data[5] = 0 // source of grid definition
	putU32(6, ni*nj)
	data[10] = 0 // octets for optional list
	data[11] = 0 // interpretation of optional list
	data[12] = 0
	data[13] = 0 // template number 0

	// template 3.0 begins at offset 14
	data[14] = 0 // shape of earth
	// offsets 15-29: scale/value radius fields, left zero
	putU32(30, ni)
	putU32(34, nj)
	// offsets 38-45: basic angle and subdivisions, left zero
	putI32(46, la1)
	putI32(50, lo1)
	data[54] = 0 // resolution and component flags
	putI32(55, la2)
	putI32(59, lo2)
	putU32(63, 0) // Di not given
	putU32(67, 0) // Dj not given
	data[71] = 0  // scanning mode: +i, -j, consecutive

	return data
}

func TestParseSection3LatLon(t *testing.T) {
	data := makeSection3LatLonData(
		144, 73, // 144x73 grid (2.5 degree global)
		90_000_000,  // La1 = 90N
		0,           // Lo1 = 0E
		-90_000_000, // La2 = 90S
		357_500_000, // Lo2 = 357.5E
	)

	sec3, err := ParseSection3(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if int(sec3.Length) != len(data) {
		t.Errorf("Length: got %d, want %d", sec3.Length, len(data))
	}

	if sec3.NumDataPoints != 144*73 {
		t.Errorf("NumDataPoints: got %d, want %d", sec3.NumDataPoints, 144*73)
	}

	if sec3.TemplateNumber != 0 {
		t.Errorf("TemplateNumber: got %d, want 0", sec3.TemplateNumber)
	}

	if sec3.Grid.NumPoints() != 144*73 {
		t.Errorf("Grid.NumPoints() = %d, want %d", sec3.Grid.NumPoints(), 144*73)
	}

	c := sec3.Grid.Center(0, 0)
	if math.Abs(c.Lat-90.0) > 1e-6 {
		t.Errorf("origin lat: got %v, want 90", c.Lat)
	}
}

func TestParseSection3TooShort(t *testing.T) {
	data := make([]byte, 10)
	_, err := ParseSection3(data)
	if err == nil {
		t.Fatal("expected error for too short section, got nil")
	}
}

func TestParseSection3WrongSectionNumber(t *testing.T) {
	data := makeSection3LatLonData(10, 10, 0, 0, 10_000_000, 10_000_000)
	data[4] = 4 // Change to section 4

	_, err := ParseSection3(data)
	if err == nil {
		t.Fatal("expected error for wrong section number, got nil")
	}
}

func TestParseSection3UnsupportedTemplate(t *testing.T) {
	data := makeSection3LatLonData(10, 10, 0, 0, 10_000_000, 10_000_000)
	// Change template number to 999 (unsupported)
	data[12] = 0x03
	data[13] = 0xE7

	_, err := ParseSection3(data)
	if err == nil {
		t.Fatal("expected error for unsupported template, got nil")
	}
}
