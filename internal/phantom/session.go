package phantom

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/san-kum/phantomgo/internal/geom"
	"github.com/san-kum/phantomgo/internal/hd"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Workspace holds the device limits read at connection time, in mm.
type Workspace struct {
	Min            geom.Vec3
	Max            geom.Vec3
	UsableMin      geom.Vec3
	UsableMax      geom.Vec3
	TabletopOffset float64
}

// Contains reports whether p lies inside the usable workspace.
func (w Workspace) Contains(p geom.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p.At(i) < w.UsableMin.At(i) || p.At(i) > w.UsableMax.At(i) {
			return false
		}
	}
	return true
}

type Info struct {
	Model           string
	Serial          string
	Vendor          string
	DriverVersion   string
	NominalMaxForce float64
}

// Session is an open device. A process should hold at most one session
// per physical device.
type Session struct {
	rt     hd.Runtime
	log    *zap.Logger
	id     string
	handle hd.DeviceHandle
	limits Workspace

	// life serializes Start, Stop and Close. It is never held while a
	// callback could be waiting on mu.
	life    sync.Mutex
	running atomic.Bool
	closed  atomic.Bool

	mu       sync.Mutex
	registry map[hd.SchedulerHandle]*registration

	// callMu makes a runtime call and the pop of its error one step. The
	// runtime keeps a single error stack for every goroutine.
	callMu sync.Mutex

	servoErr atomic.Pointer[error]
}

// Connect opens the named device, or the default one for
// hd.DefaultDevice, and reads its workspace limits.
func Connect(rt hd.Runtime, name string, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		rt:       rt,
		id:       uuid.NewString(),
		registry: make(map[hd.SchedulerHandle]*registration),
	}
	s.log = log.Named("session").With(zap.String("session", s.id))

	if err := s.call("init device", func() { s.handle = rt.InitDevice(name) }); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	if s.handle == hd.InvalidHandle {
		return nil, ErrDeviceUnavailable
	}

	if err := s.readWorkspace(); err != nil {
		return nil, multierr.Append(err, s.call("disable device", func() { rt.DisableDevice(s.handle) }))
	}

	s.log.Info("device connected",
		zap.String("device", name),
		zap.Stringer("workspace_min", s.limits.Min),
		zap.Stringer("workspace_max", s.limits.Max))
	return s, nil
}

func (s *Session) readWorkspace() error {
	var dims [6]float64
	if err := s.call("get max workspace", func() { s.rt.GetDoublev(hd.MaxWorkspaceDims, dims[:]) }); err != nil {
		return err
	}
	s.limits.Min = geom.FromSlice(dims[0:3])
	s.limits.Max = geom.FromSlice(dims[3:6])

	if err := s.call("get usable workspace", func() { s.rt.GetDoublev(hd.UsableWorkspaceDims, dims[:]) }); err != nil {
		return err
	}
	s.limits.UsableMin = geom.FromSlice(dims[0:3])
	s.limits.UsableMax = geom.FromSlice(dims[3:6])

	var offset [1]float32
	if err := s.call("get tabletop offset", func() { s.rt.GetFloatv(hd.TabletopOffset, offset[:]) }); err != nil {
		return err
	}
	s.limits.TabletopOffset = float64(offset[0])
	return nil
}

// call runs fn, which makes one runtime call, and pops the error it left
// while holding callMu, so no other goroutine can take that error or
// leave its own in between. fn must not block on the servo thread.
func (s *Session) call(op string, fn func()) error {
	s.callMu.Lock()
	defer s.callMu.Unlock()
	fn()
	return s.checkLocked(op)
}

// check pops the error left by a runtime call that was made without
// callMu. Only the calls that wait for the servo thread are made that way:
// StopScheduler, ScheduleSynchronous, Unschedule and WaitForCompletion.
func (s *Session) check(op string) error {
	s.callMu.Lock()
	defer s.callMu.Unlock()
	return s.checkLocked(op)
}

// checkLocked pops the most recent runtime error. Entries below it are left
// for the calls that pushed them. Caller holds callMu.
func (s *Session) checkLocked(op string) error {
	info := s.rt.GetError()
	if !info.IsError() {
		return nil
	}
	return &DeviceError{
		Op:       op,
		Code:     info.Code,
		Internal: info.InternalCode,
		Message:  s.rt.ErrorString(info.Code),
	}
}

func (s *Session) ID() string                 { return s.id }
func (s *Session) Handle() hd.DeviceHandle    { return s.handle }
func (s *Session) IsRunning() bool            { return s.running.Load() }
func (s *Session) WorkspaceLimits() Workspace { return s.limits }

// IsAvailable reports whether the device is still held by this session.
func (s *Session) IsAvailable() bool {
	return !s.closed.Load()
}

// Start enables force output and the servo scheduler. It is a no-op when
// already running.
func (s *Session) Start() error {
	s.life.Lock()
	defer s.life.Unlock()

	if s.closed.Load() {
		return ErrClosed
	}
	if s.running.Load() {
		return nil
	}

	if err := s.call("enable force output", func() { s.rt.Enable(hd.ForceOutput) }); err != nil {
		return err
	}
	if err := s.call("start scheduler", s.rt.StartScheduler); err != nil {
		return multierr.Append(err, s.call("disable force output", func() { s.rt.Disable(hd.ForceOutput) }))
	}

	s.running.Store(true)
	s.log.Info("servo loop started")
	return nil
}

// Stop disables the scheduler and force output. It is a no-op when not
// running. If either step fails the session still counts as running, so
// Stop can be called again.
func (s *Session) Stop() error {
	s.life.Lock()
	defer s.life.Unlock()
	return s.stopLocked()
}

func (s *Session) stopLocked() error {
	if !s.running.Load() {
		return nil
	}

	s.rt.StopScheduler()
	err := s.check("stop scheduler")
	err = multierr.Append(err, s.call("disable force output", func() { s.rt.Disable(hd.ForceOutput) }))
	if err != nil {
		s.log.Error("servo loop not fully stopped, force output may still be enabled", zap.Error(err))
		return err
	}

	s.running.Store(false)
	s.log.Info("servo loop stopped")
	return nil
}

// Close stops the servo loop, unschedules every callback and releases the
// device. Every step runs even if an earlier one fails. Closing twice is
// a no-op.
func (s *Session) Close() error {
	s.life.Lock()
	defer s.life.Unlock()

	if s.closed.Swap(true) {
		return nil
	}

	err := s.stopLocked()
	err = multierr.Append(err, s.ClearSchedule())
	err = multierr.Append(err, s.call("disable device", func() { s.rt.DisableDevice(s.handle) }))
	s.running.Store(false)

	if err != nil {
		s.log.Warn("session closed with errors", zap.Error(err))
	} else {
		s.log.Info("session closed")
	}
	return err
}

func (s *Session) vec3(p hd.Param, op string) (geom.Vec3, error) {
	if s.closed.Load() {
		return geom.Zero, ErrClosed
	}
	var buf [3]float64
	if err := s.call(op, func() { s.rt.GetDoublev(p, buf[:]) }); err != nil {
		return geom.Zero, err
	}
	return geom.FromArray(buf), nil
}

// Position returns the gimbal position in mm.
func (s *Session) Position() (geom.Vec3, error) {
	return s.vec3(hd.CurrentPosition, "get position")
}

// Velocity returns the gimbal velocity in mm/s.
func (s *Session) Velocity() (geom.Vec3, error) {
	return s.vec3(hd.CurrentVelocity, "get velocity")
}

// GimbalAngles returns the gimbal joint angles in radians.
func (s *Session) GimbalAngles() (geom.Vec3, error) {
	return s.vec3(hd.CurrentGimbalAngles, "get gimbal angles")
}

// Force returns the force currently commanded, in N.
func (s *Session) Force() (geom.Vec3, error) {
	return s.vec3(hd.CurrentForce, "get force")
}

func (s *Session) Transform() (geom.Matrix, error) {
	if s.closed.Load() {
		return geom.Identity(), ErrClosed
	}
	var m geom.Matrix
	if err := s.call("get transform", func() { s.rt.GetDoublev(hd.CurrentTransform, m[:]) }); err != nil {
		return geom.Identity(), err
	}
	return m, nil
}

func (s *Session) Buttons() (Buttons, error) {
	if s.closed.Load() {
		return None, ErrClosed
	}
	var b [1]int32
	if err := s.call("get buttons", func() { s.rt.GetIntegerv(hd.CurrentButtons, b[:]) }); err != nil {
		return None, err
	}
	return Buttons(b[0]), nil
}

// SetForce commands f in N. It must be called inside a scheduled callback;
// the runtime applies it when the callback's frame ends.
func (s *Session) SetForce(f geom.Vec3) error {
	if s.closed.Load() {
		return ErrClosed
	}
	buf := f.Array()
	return s.call("set force", func() { s.rt.SetDoublev(hd.CurrentForce, buf[:]) })
}

// SetSchedulerRate sets the servo rate. Devices commonly accept 500 and
// 1000 Hz.
func (s *Session) SetSchedulerRate(hz uint32) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if hz == 0 {
		return fmt.Errorf("%w: scheduler rate 0 Hz", ErrInvalidParameter)
	}
	err := s.call("set scheduler rate", func() { s.rt.SetSchedulerRate(hz) })
	if Code(err) == hd.InvalidValue {
		return fmt.Errorf("%w: %d Hz: %w", ErrInvalidParameter, hz, err)
	}
	if err == nil {
		s.log.Info("scheduler rate set", zap.Uint32("rate_hz", hz))
	}
	return err
}

func (s *Session) UpdateRate() (uint32, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var r [1]int32
	if err := s.call("get update rate", func() { s.rt.GetIntegerv(hd.UpdateRate, r[:]) }); err != nil {
		return 0, err
	}
	return uint32(r[0]), nil
}

// SchedulerTimeStamp returns the seconds elapsed since the current servo
// tick began.
func (s *Session) SchedulerTimeStamp() float64 {
	return s.rt.SchedulerTimeStamp()
}

func (s *Session) DeviceInfo() (Info, error) {
	if s.closed.Load() {
		return Info{}, ErrClosed
	}
	var info Info
	str := func(p hd.Param, op string, dst *string) error {
		return s.call(op, func() { *dst = s.rt.GetString(p) })
	}

	err := multierr.Combine(
		str(hd.DeviceModelType, "get model", &info.Model),
		str(hd.DeviceSerialNumber, "get serial number", &info.Serial),
		str(hd.DeviceVendor, "get vendor", &info.Vendor),
		str(hd.DeviceDriverVersion, "get driver version", &info.DriverVersion),
	)
	if err != nil {
		return info, err
	}

	var f [1]float64
	if err := s.call("get nominal max force", func() { s.rt.GetDoublev(hd.NominalMaxForce, f[:]) }); err != nil {
		return info, err
	}
	info.NominalMaxForce = f[0]
	return info, nil
}

// Err returns and clears the error that last terminated a servo callback.
func (s *Session) Err() error {
	if p := s.servoErr.Swap(nil); p != nil {
		return *p
	}
	return nil
}
