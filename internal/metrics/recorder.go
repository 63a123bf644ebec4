package metrics

import (
	"sync"
	"time"

	"github.com/san-kum/phantomgo/internal/dynamo"
)

const DefaultHistory = 512

// Value is a metric reading.
type Value struct {
	Name  string
	Value float64
}

// Recorder feeds a fixed set of metrics and keeps the most recent force
// magnitudes. Observe is called once per servo tick and does not allocate.
type Recorder struct {
	mu      sync.Mutex
	metrics []dynamo.Metric
	jitter  *TickJitter
	ring    []float64
	head    int
	full    bool
	ticks   uint64
}

// NewRecorder returns a recorder with the standard servo metrics.
func NewRecorder(nominal time.Duration, history int) *Recorder {
	if history <= 0 {
		history = DefaultHistory
	}
	jitter := NewTickJitter(nominal)
	return &Recorder{
		metrics: []dynamo.Metric{
			NewForceEffort(),
			NewPeakForce(),
			NewSaturation(),
			NewPenetration(),
			jitter,
		},
		jitter: jitter,
		ring:   make([]float64, history),
	}
}

func (r *Recorder) Observe(o dynamo.Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.metrics {
		m.Observe(o)
	}
	r.ring[r.head] = o.Force.Length()
	r.head++
	if r.head == len(r.ring) {
		r.head = 0
		r.full = true
	}
	r.ticks++
}

// Values returns the current readings in a fixed order.
func (r *Recorder) Values() []Value {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Value, 0, len(r.metrics)+1)
	for _, m := range r.metrics {
		out = append(out, Value{Name: m.Name(), Value: m.Value()})
	}
	out = append(out, Value{Name: "tick_jitter_worst_ms", Value: r.jitter.Worst()})
	return out
}

// Get returns the reading of the named metric.
func (r *Recorder) Get(name string) (float64, bool) {
	for _, v := range r.Values() {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// History returns the recorded force magnitudes, oldest first.
func (r *Recorder) History() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		out := make([]float64, r.head)
		copy(out, r.ring[:r.head])
		return out
	}
	out := make([]float64, 0, len(r.ring))
	out = append(out, r.ring[r.head:]...)
	return append(out, r.ring[:r.head]...)
}

// Spectrum analyses the force history at the nominal servo rate.
func (r *Recorder) Spectrum() Spectrum {
	hist := r.History()
	r.mu.Lock()
	nominal := r.jitter.nominal
	r.mu.Unlock()
	if nominal <= 0 {
		return Spectrum{}
	}
	return NewSpectrum(hist, 1/nominal)
}

func (r *Recorder) Ticks() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// SetNominal sets the expected tick period after a rate change.
func (r *Recorder) SetNominal(nominal time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jitter.SetNominal(nominal)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.metrics {
		m.Reset()
	}
	r.head, r.full, r.ticks = 0, false, 0
}
