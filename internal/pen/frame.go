package pen

import (
	"github.com/san-kum/phantomgo/internal/geom"
	"github.com/san-kum/phantomgo/internal/phantom"
	"go.uber.org/zap"
)

// Frame is what the consumer sees once per outer frame, in its own
// coordinates.
type Frame struct {
	Position geom.Vec3
	Tip      geom.Vec3
	Rotation geom.Quaternion
	Force    geom.Vec3

	Buttons  phantom.Buttons
	Pressed  phantom.Buttons
	Released phantom.Buttons

	// Sample is the device-frame tick the values came from. Nil until the
	// servo loop has run once.
	Sample *Sample
}

// Frame advances the button tracker, applies the button bindings and
// returns the latest pose. Call it once per application frame from one
// goroutine. A device error that stopped the servo callback is returned
// here once.
//
// Bindings: holding Button1 disables the first field of the scene;
// pressing Button2 toggles damping.
func (p *Pen) Frame() (Frame, error) {
	if err := p.Err(); err != nil {
		return Frame{}, err
	}

	mask, err := p.buttons.Advance()
	if err != nil {
		return Frame{}, err
	}
	p.applyBindings()

	fr := Frame{
		Rotation: geom.IdentityQuaternion(),
		Buttons:  mask,
		Pressed:  p.buttons.Pressed(),
		Released: p.buttons.Released(),
	}
	if smp := p.sample.Load(); smp != nil {
		fr.Sample = smp
		fr.Position = p.adapter.Position(smp.Position)
		fr.Tip = p.adapter.Position(smp.Tip)
		fr.Rotation = p.adapter.Rotation(smp.Transform)
		fr.Force = p.adapter.Direction(smp.Force)
	}
	return fr, nil
}

func (p *Pen) applyBindings() {
	if p.buttons.WasPressed(phantom.Button1) || p.buttons.WasReleased(phantom.Button1) {
		if elems := p.scene.Elements(); len(elems) > 0 {
			on := p.buttons.WasReleased(phantom.Button1)
			if err := p.scene.SetEnabled(elems[0].Name, on); err == nil {
				p.log.Debug("field toggled", zap.String("field", elems[0].Name), zap.Bool("enabled", on))
			}
		}
	}
	if p.buttons.WasPressed(phantom.Button2) {
		on := !p.scene.Damping()
		p.scene.SetDamping(on)
		p.log.Debug("damping toggled", zap.Bool("enabled", on))
	}
}
