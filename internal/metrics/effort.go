package metrics

import (
	"github.com/san-kum/phantomgo/internal/dynamo"
)

// ForceEffort is the mean commanded force magnitude in N.
type ForceEffort struct {
	name    string
	sum     float64
	samples int
}

func NewForceEffort() *ForceEffort {
	return &ForceEffort{
		name: "force_effort",
	}
}

func (f *ForceEffort) Name() string {
	return f.name
}

func (f *ForceEffort) Observe(o dynamo.Observation) {
	f.sum += o.Force.Length()
	f.samples++
}

func (f *ForceEffort) Value() float64 {
	if f.samples == 0 {
		return 0
	}
	return f.sum / float64(f.samples)
}

func (f *ForceEffort) Reset() {
	f.sum = 0
	f.samples = 0
}

// PeakForce is the largest commanded force magnitude seen.
type PeakForce struct {
	peak float64
}

func NewPeakForce() *PeakForce { return &PeakForce{} }

func (p *PeakForce) Name() string { return "peak_force" }

func (p *PeakForce) Observe(o dynamo.Observation) {
	p.peak = max(p.peak, o.Force.Length())
}

func (p *PeakForce) Value() float64 { return p.peak }
func (p *PeakForce) Reset()         { p.peak = 0 }
