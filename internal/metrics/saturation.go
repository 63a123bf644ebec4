package metrics

import (
	"github.com/san-kum/phantomgo/internal/dynamo"
)

// Saturation is the fraction of ticks whose force hit the global ceiling.
type Saturation struct {
	name    string
	clamped int
	samples int
}

func NewSaturation() *Saturation {
	return &Saturation{
		name: "saturation",
	}
}

func (s *Saturation) Name() string {
	return s.name
}

func (s *Saturation) Observe(o dynamo.Observation) {
	s.samples++
	if o.Clamped {
		s.clamped++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.clamped) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.clamped = 0
	s.samples = 0
}

// Penetration is the deepest the tip went into any surface, in mm.
type Penetration struct {
	depth float64
}

func NewPenetration() *Penetration { return &Penetration{} }

func (p *Penetration) Name() string { return "penetration" }

func (p *Penetration) Observe(o dynamo.Observation) {
	p.depth = max(p.depth, o.Penetration)
}

func (p *Penetration) Value() float64 { return p.depth }
func (p *Penetration) Reset()         { p.depth = 0 }
