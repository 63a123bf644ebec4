package simdevice

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/phantomgo/internal/control"
	"github.com/san-kum/phantomgo/internal/dynamo"
	"github.com/san-kum/phantomgo/internal/geom"
	"github.com/san-kum/phantomgo/internal/hd"
	"github.com/san-kum/phantomgo/internal/integrators"
	"go.uber.org/zap"
)

var _ hd.Runtime = (*Device)(nil)

const (
	simHandle     hd.DeviceHandle = 0
	maxErrorStack                 = 32
)

var errorText = map[hd.ErrorCode]string{
	hd.Success:                "No error",
	hd.InvalidEnum:            "Invalid parameter name",
	hd.InvalidValue:           "Invalid value",
	hd.InvalidOperation:       "Invalid operation",
	hd.InvalidInputType:       "Parameter does not support this type",
	hd.BadHandle:              "Invalid device handle",
	hd.ExceededMaxForce:       "Commanded force exceeded the nominal maximum",
	hd.DeviceFault:            "Device not found or failed to initialize",
	hd.DeviceAlreadyInitiated: "Device already initialized",
	hd.CommError:              "Communication error",
	hd.IllegalBegin:           "Illegal begin frame",
	hd.IllegalEnd:             "End frame without begin frame",
	hd.SchedulerFull:          "Scheduler is full",
}

// Device is a simulated stylus. Every method is safe for concurrent use;
// the scheduler goroutine and application goroutines call into it at the
// same time, as they would with the native runtime.
type Device struct {
	opts Options
	log  *zap.Logger

	mu          sync.Mutex
	errs        []hd.ErrorInfo
	injected    []hd.ErrorCode
	initialized bool
	caps        map[hd.Capability]bool
	frameDepth  int
	pending     geom.Vec3
	force       geom.Vec3
	rate        uint32
	offset      geom.Vec3
	simTime     float64
	tickWall    time.Time
	lastTick    time.Time
	instRate    float64
	manualNow   time.Time

	buttons   int32
	gimbal    geom.Vec3
	transform geom.Matrix
	last      snapshot

	x     dynamo.State
	u     dynamo.Control
	body  *stylus
	integ dynamo.Integrator
	hand  *control.PID

	sched scheduler
	ticks atomic.Uint64
}

// snapshot holds the previous tick's values for the Last* parameters.
type snapshot struct {
	pos, vel, gimbal, force geom.Vec3
	transform               geom.Matrix
	buttons                 int32
}

func New(opts Options) (*Device, error) {
	if opts.Mass <= 0 {
		return nil, fmt.Errorf("mass %v: %w", opts.Mass, dynamo.ErrParameterBounds)
	}
	if len(opts.Rates) == 0 {
		opts.Rates = []uint32{500, 1000}
	}
	if opts.Rate == 0 {
		opts.Rate = opts.Rates[len(opts.Rates)-1]
	}
	if !slices.Contains(opts.Rates, opts.Rate) {
		return nil, fmt.Errorf("rate %d Hz not in %v: %w", opts.Rate, opts.Rates, dynamo.ErrParameterBounds)
	}
	if opts.Integrator == "" {
		opts.Integrator = "rk4"
	}
	integ, err := integrators.New(opts.Integrator)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	hand := control.NewPID(opts.Hand.Kp, opts.Hand.Ki, opts.Hand.Kd, opts.Center)
	hand.Limit = opts.Hand.Limit

	d := &Device{
		opts:      opts,
		log:       opts.Logger,
		caps:      make(map[hd.Capability]bool),
		rate:      opts.Rate,
		manualNow: time.Now(),
		x:         make(dynamo.State, 6),
		u:         make(dynamo.Control, 3),
		body:      &stylus{mass: opts.Mass, friction: opts.Friction},
		integ:     integ,
		hand:      hand,
	}
	d.sched.init(opts.Rate)
	d.resetStylus()
	return d, nil
}

func (d *Device) resetStylus() {
	for i := range d.x {
		d.x[i] = 0
	}
	d.opts.Center.CopyTo(d.x)
	d.hand.Reset()
	d.transform = gimbalTransform(d.gimbal, d.position())
	d.last = d.current()
}

func (d *Device) position() geom.Vec3 { return geom.V(d.x[0], d.x[1], d.x[2]) }
func (d *Device) velocity() geom.Vec3 { return geom.V(d.x[3], d.x[4], d.x[5]) }

func (d *Device) current() snapshot {
	return snapshot{
		pos:       d.position(),
		vel:       d.velocity(),
		gimbal:    d.gimbal,
		force:     d.force,
		transform: d.transform,
		buttons:   d.buttons,
	}
}

// advance integrates the stylus over one servo period. Caller holds mu.
func (d *Device) advance(now time.Time) {
	dt := 1 / float64(d.rate)
	d.last = d.current()

	pos, vel := d.position(), d.velocity()
	d.hand.Target = d.opts.target(d.simTime).Add(d.offset)
	d.hand.Compute(pos, vel, d.simTime).Add(d.force).CopyTo(d.u)

	d.integ.Step(d.body, d.x, d.u, d.simTime, dt)
	clampToBox(d.x, d.opts.WorkspaceMin, d.opts.WorkspaceMax)
	if !d.x.IsValid() {
		d.log.Warn("stylus reset", zap.Error(dynamo.ErrInvalidState))
		d.push(hd.DeviceFault)
		d.force = geom.Zero
		d.resetStylus()
	}
	d.simTime += dt
	d.transform = gimbalTransform(d.gimbal, d.position())

	if !d.lastTick.IsZero() {
		if p := now.Sub(d.lastTick).Seconds(); p > 0 {
			d.instRate = 1 / p
		}
	}
	d.lastTick = now
	d.tickWall = time.Now()
}

// push records an error on the stack. Caller holds mu.
func (d *Device) push(code hd.ErrorCode) {
	if len(d.errs) == maxErrorStack {
		d.errs = d.errs[1:]
	}
	d.errs = append(d.errs, hd.ErrorInfo{Code: code, Device: simHandle})
}

// ready reports whether a device call may go ahead and pushes the reason
// when it may not. Caller holds mu.
func (d *Device) ready() bool {
	if len(d.injected) > 0 {
		code := d.injected[0]
		d.injected = d.injected[1:]
		d.push(code)
		return false
	}
	if !d.initialized {
		d.push(hd.BadHandle)
		return false
	}
	return true
}

func (d *Device) InitDevice(name string) hd.DeviceHandle {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.injected) > 0 {
		d.ready()
		return hd.InvalidHandle
	}
	if d.opts.Unavailable || (name != hd.DefaultDevice && name != d.opts.Name) {
		d.push(hd.DeviceFault)
		return hd.InvalidHandle
	}
	if d.initialized {
		d.push(hd.DeviceAlreadyInitiated)
		return hd.InvalidHandle
	}

	d.initialized = true
	clear(d.caps)
	d.force = geom.Zero
	d.resetStylus()
	d.log.Info("device initialized",
		zap.String("model", d.opts.Model),
		zap.String("serial", d.opts.Serial))
	return simHandle
}

func (d *Device) DisableDevice(h hd.DeviceHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready() {
		return
	}
	if h != simHandle {
		d.push(hd.BadHandle)
		return
	}
	d.initialized = false
	d.frameDepth = 0
	clear(d.caps)
	d.force = geom.Zero
	d.log.Info("device disabled")
}

// BeginFrame opens a frame. Frames nest; the force set inside the
// outermost frame is committed by the matching EndFrame.
func (d *Device) BeginFrame(h hd.DeviceHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready() {
		return
	}
	if h != simHandle {
		d.push(hd.BadHandle)
		return
	}
	if d.frameDepth == 0 {
		d.pending = geom.Zero
	}
	d.frameDepth++
}

func (d *Device) EndFrame(h hd.DeviceHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready() {
		return
	}
	if h != simHandle {
		d.push(hd.BadHandle)
		return
	}
	if d.frameDepth == 0 {
		d.push(hd.IllegalEnd)
		return
	}
	d.frameDepth--
	if d.frameDepth == 0 {
		d.commit()
	}
}

// commit applies the frame's force to the stylus. Caller holds mu.
func (d *Device) commit() {
	if !d.caps[hd.ForceOutput] {
		d.force = geom.Zero
		return
	}
	f := d.pending
	if m := f.Length(); m > d.opts.NominalMaxForce {
		if d.caps[hd.MaxForceClamping] {
			f = f.Scale(d.opts.NominalMaxForce / m)
		} else {
			d.push(hd.ExceededMaxForce)
			f = geom.Zero
		}
	}
	d.force = f
}

func knownCapability(c hd.Capability) bool {
	switch c {
	case hd.ForceOutput, hd.MaxForceClamping, hd.ForceRamping, hd.SoftwareForceLim, hd.OneFrameLimit:
		return true
	}
	return false
}

func (d *Device) Enable(c hd.Capability) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready() {
		return
	}
	if !knownCapability(c) {
		d.push(hd.InvalidEnum)
		return
	}
	d.caps[c] = true
}

func (d *Device) Disable(c hd.Capability) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready() {
		return
	}
	if !knownCapability(c) {
		d.push(hd.InvalidEnum)
		return
	}
	d.caps[c] = false
	if c == hd.ForceOutput {
		d.force = geom.Zero
	}
}

func (d *Device) IsEnabled(c hd.Capability) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.caps[c]
}

func (d *Device) GetError() hd.ErrorInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.errs)
	if n == 0 {
		return hd.ErrorInfo{Code: hd.Success}
	}
	info := d.errs[n-1]
	d.errs = d.errs[:n-1]
	return info
}

func (d *Device) ErrorString(code hd.ErrorCode) string {
	if s, ok := errorText[code]; ok {
		return s
	}
	return code.String()
}

// InjectError makes the next device call fail with code.
func (d *Device) InjectError(code hd.ErrorCode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.injected = append(d.injected, code)
}

// SetTarget moves the hand's rest point and clears any nudges.
func (d *Device) SetTarget(p geom.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opts.Center = p
	d.offset = geom.Zero
}

// Nudge shifts the hand target by delta on top of the scripted motion.
func (d *Device) Nudge(delta geom.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offset = d.offset.Add(delta)
}

func (d *Device) Target() geom.Vec3 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opts.target(d.simTime).Add(d.offset)
}

func (d *Device) SetMotion(m Motion) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opts.Motion = m
}

func (d *Device) SetButtons(mask int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buttons = mask
}

// ToggleButtons flips the given button bits.
func (d *Device) ToggleButtons(mask int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buttons ^= mask
}

// SetOrientation sets the gimbal angles (yaw, pitch, roll) in radians.
func (d *Device) SetOrientation(gimbal geom.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gimbal = gimbal
	d.transform = gimbalTransform(gimbal, d.position())
}

// Stylus returns the true simulated position and velocity.
func (d *Device) Stylus() (pos, vel geom.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position(), d.velocity()
}

// Force returns the force last committed by EndFrame.
func (d *Device) Force() geom.Vec3 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.force
}

func (d *Device) Ticks() uint64 { return d.ticks.Load() }
