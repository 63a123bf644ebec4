package forcefield

import (
	"math"
	"testing"

	"github.com/san-kum/phantomgo/internal/geom"
)

func TestLogField_Force(t *testing.T) {
	f := NewLogField(geom.Zero)

	tests := []struct {
		name     string
		dist     float64
		expected float64
	}{
		{"dead zone", 0.4, 0},
		{"capped close in", 5, 0.8},
		{"at radius", 50, 0.5},
		{"fading", 80, 0.5*math.Log(50.0/80) + 0.5},
		{"beyond reach", 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Force(geom.V(0, 0, tt.dist), geom.V(5, 5, 5))
			if math.Abs(got.Length()-tt.expected) > 1e-9 {
				t.Errorf("expected |F| %v, got %v", tt.expected, got.Length())
			}
			if got.Length() > 0 && got.Z <= 0 {
				t.Errorf("force should point away from the target, got %v", got)
			}
		})
	}
}

func TestLogField_Validate(t *testing.T) {
	f := NewLogField(geom.Zero)
	if err := f.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	f.Radius = 0
	if err := f.Validate(); err == nil {
		t.Error("expected error for zero radius")
	}
}
