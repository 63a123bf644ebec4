// Package pen is the haptic application loop: a servo callback that
// renders a force-field scene at the stylus tip, and an outer frame that
// handles buttons and hands pose data to the consumer.
package pen

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/phantomgo/internal/coords"
	"github.com/san-kum/phantomgo/internal/dynamo"
	"github.com/san-kum/phantomgo/internal/forcefield"
	"github.com/san-kum/phantomgo/internal/geom"
	"github.com/san-kum/phantomgo/internal/hd"
	"github.com/san-kum/phantomgo/internal/metrics"
	"github.com/san-kum/phantomgo/internal/phantom"
	"go.uber.org/zap"
)

type Options struct {
	// MaxForce caps the summed scene force, in N.
	MaxForce float64
	Priority hd.Priority
	// Rate is the expected servo rate, used for jitter statistics.
	Rate    uint32
	History int
	Clock   func() time.Time
	Logger  *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		MaxForce: 3.0,
		Priority: hd.DefaultPriority,
		Rate:     1000,
		History:  metrics.DefaultHistory,
	}
}

// Sample is the state seen by one servo tick, in device coordinates.
type Sample struct {
	Time        float64 // s since Attach
	Position    geom.Vec3
	Velocity    geom.Vec3
	Tip         geom.Vec3
	Transform   geom.Matrix
	Force       geom.Vec3
	Clamped     bool
	Penetration float64
}

type Pen struct {
	s       *phantom.Session
	scene   *forcefield.Scene
	adapter coords.Adapter
	opts    Options
	log     *zap.Logger
	rec     *metrics.Recorder
	buttons *phantom.ButtonTracker

	mu       sync.Mutex
	handle   hd.SchedulerHandle
	attached bool

	sample   atomic.Pointer[Sample]
	servoErr atomic.Pointer[error]

	// servo goroutine only
	start, last time.Time
}

func New(s *phantom.Session, scene *forcefield.Scene, adapter coords.Adapter, opts Options) (*Pen, error) {
	if err := adapter.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxForce <= 0 {
		return nil, fmt.Errorf("max force %v: %w", opts.MaxForce, dynamo.ErrParameterBounds)
	}
	if opts.Rate == 0 {
		opts.Rate = 1000
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Pen{
		s:       s,
		scene:   scene,
		adapter: adapter,
		opts:    opts,
		log:     opts.Logger.Named("pen"),
		rec:     metrics.NewRecorder(time.Second/time.Duration(opts.Rate), opts.History),
		buttons: phantom.NewButtonTracker(s),
	}, nil
}

// Attach registers the servo callback. Attaching twice is a no-op.
func (p *Pen) Attach() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.attached && p.s.IsScheduled(p.handle) {
		return nil
	}
	p.servoErr.Store(nil)
	p.start, p.last = time.Time{}, time.Time{}

	h, err := p.s.ScheduleAsynchronous(p.tick, p.opts.Priority)
	if err != nil {
		return err
	}
	p.handle, p.attached = h, true
	p.log.Info("pen attached", zap.Uint64("handle", uint64(h)), zap.Int("fields", p.scene.Len()))
	return nil
}

// Detach unregisters the servo callback and waits for a tick in progress.
func (p *Pen) Detach() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.attached {
		return nil
	}
	p.attached = false
	err := p.s.Unschedule(p.handle)
	p.log.Info("pen detached", zap.Error(err))
	return err
}

// Attached reports whether the servo callback is still registered. It
// turns false on its own after a device error.
func (p *Pen) Attached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attached && p.s.IsScheduled(p.handle)
}

// SetRate tells the pen about a servo rate change.
func (p *Pen) SetRate(hz uint32) {
	if hz > 0 {
		p.rec.SetNominal(time.Second / time.Duration(hz))
	}
}

func (p *Pen) Scene() *forcefield.Scene        { return p.scene }
func (p *Pen) Adapter() coords.Adapter         { return p.adapter }
func (p *Pen) Metrics() *metrics.Recorder      { return p.rec }
func (p *Pen) Buttons() *phantom.ButtonTracker { return p.buttons }

// Sample returns the latest servo sample, or nil before the first tick.
func (p *Pen) Sample() *Sample { return p.sample.Load() }

// Err returns and clears the device error that stopped the servo callback.
func (p *Pen) Err() error {
	if e := p.servoErr.Swap(nil); e != nil {
		return *e
	}
	return p.s.Err()
}
