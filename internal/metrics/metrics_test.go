package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/san-kum/phantomgo/internal/dynamo"
	"github.com/san-kum/phantomgo/internal/geom"
)

func obs(f geom.Vec3) dynamo.Observation {
	return dynamo.Observation{Force: f}
}

func TestForceEffort(t *testing.T) {
	m := NewForceEffort()
	if m.Value() != 0 {
		t.Error("expected zero before any observation")
	}

	m.Observe(obs(geom.V(3, 4, 0)))
	m.Observe(obs(geom.V(0, 0, 1)))
	if math.Abs(m.Value()-3) > 1e-9 {
		t.Errorf("expected mean 3, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestSaturation(t *testing.T) {
	m := NewSaturation()
	for i := 0; i < 8; i++ {
		m.Observe(dynamo.Observation{Clamped: i%4 == 0})
	}
	if m.Value() != 0.25 {
		t.Errorf("expected 0.25, got %f", m.Value())
	}
}

func TestPeakAndPenetration(t *testing.T) {
	peak, pen := NewPeakForce(), NewPenetration()
	for _, o := range []dynamo.Observation{
		{Force: geom.V(1, 0, 0), Penetration: 2},
		{Force: geom.V(0, 2.5, 0), Penetration: 7},
		{Force: geom.V(0, 0, 0.5), Penetration: 0},
	} {
		peak.Observe(o)
		pen.Observe(o)
	}
	if peak.Value() != 2.5 {
		t.Errorf("expected peak 2.5, got %f", peak.Value())
	}
	if pen.Value() != 7 {
		t.Errorf("expected penetration 7, got %f", pen.Value())
	}
}

func TestTickJitter(t *testing.T) {
	m := NewTickJitter(time.Millisecond)

	m.Observe(dynamo.Observation{Period: 0})
	for _, p := range []float64{0.0011, 0.0009, 0.001, 0.0014} {
		m.Observe(dynamo.Observation{Period: p})
	}

	expected := (0.1 + 0.1 + 0 + 0.4) / 4
	if math.Abs(m.Value()-expected) > 1e-9 {
		t.Errorf("expected %f ms, got %f", expected, m.Value())
	}
	if math.Abs(m.Worst()-0.4) > 1e-9 {
		t.Errorf("expected worst 0.4 ms, got %f", m.Worst())
	}
}

func TestRecorder_History(t *testing.T) {
	r := NewRecorder(time.Millisecond, 4)

	for i := 1; i <= 3; i++ {
		r.Observe(obs(geom.V(float64(i), 0, 0)))
	}
	if got := r.History(); len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("expected [1 2 3], got %v", got)
	}

	for i := 4; i <= 6; i++ {
		r.Observe(obs(geom.V(float64(i), 0, 0)))
	}
	got := r.History()
	expected := []float64{3, 4, 5, 6}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, got)
			break
		}
	}
	if r.Ticks() != 6 {
		t.Errorf("expected 6 ticks, got %d", r.Ticks())
	}
}

func TestRecorder_Values(t *testing.T) {
	r := NewRecorder(time.Millisecond, 0)
	r.Observe(dynamo.Observation{Force: geom.V(0, 2, 0), Clamped: true, Penetration: 1.5})
	r.Observe(dynamo.Observation{Force: geom.V(0, 0, 0), Period: 0.001})

	tests := []struct {
		name     string
		expected float64
	}{
		{"force_effort", 1},
		{"peak_force", 2},
		{"saturation", 0.5},
		{"penetration", 1.5},
		{"tick_jitter_ms", 0},
	}
	for _, tt := range tests {
		got, ok := r.Get(tt.name)
		if !ok {
			t.Errorf("metric %s missing", tt.name)
			continue
		}
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.expected, got)
		}
	}

	r.Reset()
	if v, _ := r.Get("peak_force"); v != 0 || r.Ticks() != 0 || len(r.History()) != 0 {
		t.Error("expected a clean recorder after reset")
	}
}

func sine(n int, rate, hz, amp, offset float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = offset + amp*math.Sin(2*math.Pi*hz*float64(i)/rate)
	}
	return out
}

func TestSpectrum_Dominant(t *testing.T) {
	s := NewSpectrum(sine(200, 1000, 50, 0.5, 1), 1000)
	if s.Resolution != 5 {
		t.Fatalf("expected 5 Hz bins, got %f", s.Resolution)
	}
	if len(s.Amplitude) != 101 {
		t.Fatalf("expected 101 bins, got %d", len(s.Amplitude))
	}
	hz, amp := s.Dominant()
	if hz != 50 {
		t.Errorf("expected 50 Hz, got %f", hz)
	}
	if math.Abs(amp-0.5) > 1e-6 {
		t.Errorf("expected amplitude 0.5, got %f", amp)
	}
	if s.Amplitude[0] > 1e-9 {
		t.Errorf("expected mean removed, got DC %f", s.Amplitude[0])
	}
}

func TestSpectrum_Nyquist(t *testing.T) {
	s := NewSpectrum([]float64{1, -1, 1, -1, 1, -1, 1, -1}, 8)
	hz, amp := s.Dominant()
	if hz != 4 {
		t.Errorf("expected 4 Hz, got %f", hz)
	}
	if math.Abs(amp-1) > 1e-9 {
		t.Errorf("expected amplitude 1, got %f", amp)
	}
}

func TestSpectrum_Degenerate(t *testing.T) {
	for _, s := range []Spectrum{NewSpectrum(nil, 1000), NewSpectrum([]float64{1}, 1000), NewSpectrum([]float64{1, 2}, 0)} {
		if hz, amp := s.Dominant(); hz != 0 || amp != 0 {
			t.Errorf("expected no component, got %f Hz %f", hz, amp)
		}
	}
}

func TestRecorder_Spectrum(t *testing.T) {
	r := NewRecorder(time.Millisecond, 200)
	for _, v := range sine(200, 1000, 100, 0.2, 0.5) {
		r.Observe(obs(geom.V(v, 0, 0)))
	}
	hz, _ := r.Spectrum().Dominant()
	if hz != 100 {
		t.Errorf("expected 100 Hz, got %f", hz)
	}
}
