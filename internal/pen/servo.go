package pen

import (
	"github.com/san-kum/phantomgo/internal/dynamo"
	"github.com/san-kum/phantomgo/internal/forcefield"
	"github.com/san-kum/phantomgo/internal/geom"
	"go.uber.org/zap"
)

// tick runs on the servo goroutine inside a device frame.
func (p *Pen) tick() bool {
	pos, err := p.s.Position()
	if err != nil {
		return p.fail(err)
	}
	vel, err := p.s.Velocity()
	if err != nil {
		return p.fail(err)
	}
	m, err := p.s.Transform()
	if err != nil {
		return p.fail(err)
	}

	tip := p.adapter.TipPosition(pos, m)
	f, depth := p.scene.Force(tip, vel)
	f, clamped := forcefield.Clamp(f, p.opts.MaxForce)
	if err := p.s.SetForce(f); err != nil {
		return p.fail(err)
	}

	now := p.opts.Clock()
	var period float64
	if p.start.IsZero() {
		p.start = now
	} else {
		period = now.Sub(p.last).Seconds()
	}
	p.last = now
	elapsed := now.Sub(p.start).Seconds()

	p.rec.Observe(dynamo.Observation{
		Time:        elapsed,
		Period:      period,
		Force:       f,
		Clamped:     clamped,
		Penetration: depth,
	})
	p.sample.Store(&Sample{
		Time:        elapsed,
		Position:    pos,
		Velocity:    vel,
		Tip:         tip,
		Transform:   m,
		Force:       f,
		Clamped:     clamped,
		Penetration: depth,
	})
	return true
}

// fail keeps err for the next Frame, tries to leave a zero force behind
// and ends the callback.
func (p *Pen) fail(err error) bool {
	p.servoErr.Store(&err)
	_ = p.s.SetForce(geom.Zero)
	p.log.Warn("servo tick failed", zap.Error(err))
	return false
}
