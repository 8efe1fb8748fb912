package stability

import (
	"testing"

	"github.com/stormgrid/squall/tables"
)

func TestDeriveSoundingScenario(t *testing.T) {
	samples := []Sample{
		{PressureHPa: 1013, TempC: 25, DewpointC: 20},
		{PressureHPa: 850, TempC: 15, DewpointC: 10},
		{PressureHPa: 500, TempC: -10, DewpointC: -15},
	}

	result, err := Derive(samples, tables.StandardAtmosphere{})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if !result.Valid {
		t.Fatal("expected valid result")
	}
	if result.LCLPressureHPa > 950 || result.LCLPressureHPa < 900 {
		t.Errorf("LCL pressure %v not between 900 and 950 hPa", result.LCLPressureHPa)
	}
	if result.CAPE < 0 {
		t.Errorf("CAPE should be non-negative, got %v", result.CAPE)
	}
	if result.CIN < 0 {
		t.Errorf("CIN should be non-negative, got %v", result.CIN)
	}
	if result.LFCPressureHPa <= result.ELPressureHPa {
		t.Errorf("expected LFC pressure (%v) > EL pressure (%v)", result.LFCPressureHPa, result.ELPressureHPa)
	}
}

func TestDeriveShortCircuitsOnNaN(t *testing.T) {
	samples := []Sample{
		{PressureHPa: 1013, TempC: 25, DewpointC: 20},
		{PressureHPa: 500, TempC: nan(), DewpointC: -15},
	}
	result, err := Derive(samples, tables.StandardAtmosphere{})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid result when input contains NaN")
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
