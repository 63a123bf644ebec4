package phantom

import (
	"sync"
	"sync/atomic"

	"github.com/san-kum/phantomgo/internal/hd"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Callback is servo-thread logic. Returning false ends a periodic
// registration. It must not block.
type Callback func() bool

// registration owns the closure handed to the runtime for one handle.
type registration struct {
	handle hd.SchedulerHandle
	active atomic.Bool
	// running is held for the duration of each invocation.
	running sync.Mutex
}

// transaction runs fn between BeginFrame and EndFrame.
func (s *Session) transaction(fn Callback) (bool, error) {
	if err := s.call("begin frame", func() { s.rt.BeginFrame(s.handle) }); err != nil {
		return false, err
	}
	ok := fn()
	if err := s.call("end frame", func() { s.rt.EndFrame(s.handle) }); err != nil {
		return false, err
	}
	return ok, nil
}

// ScheduleAsynchronous registers fn to run once per servo tick, higher
// priorities first, until fn returns false or the handle is unscheduled.
// A frame error also ends the registration and is kept for [Session.Err].
func (s *Session) ScheduleAsynchronous(fn Callback, prio hd.Priority) (hd.SchedulerHandle, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}

	reg := &registration{}
	reg.active.Store(true)
	wrapper := func() hd.CallbackResult {
		reg.running.Lock()
		defer reg.running.Unlock()

		if !reg.active.Load() {
			return hd.Done
		}
		ok, err := s.transaction(fn)
		if ok {
			return hd.Continue
		}
		reg.active.Store(false)
		if err != nil {
			s.servoErr.Store(&err)
			s.log.Warn("servo callback terminated", zap.Error(err))
		}
		s.forget(reg)
		return hd.Done
	}

	// Held across the runtime call so a first tick that ends the callback
	// finds it in the registry.
	s.mu.Lock()
	var h hd.SchedulerHandle
	err := s.call("schedule asynchronous", func() { h = s.rt.ScheduleAsynchronous(wrapper, prio) })
	reg.handle = h
	if err == nil {
		s.registry[h] = reg
	}
	s.mu.Unlock()

	if err != nil {
		// the runtime may have registered it anyway
		if h != 0 {
			err = multierr.Append(err, s.release(reg))
		}
		return 0, err
	}
	return h, nil
}

func (s *Session) forget(reg *registration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry[reg.handle] == reg {
		delete(s.registry, reg.handle)
	}
}

// ScheduleSynchronous runs fn once inside a frame on the servo thread and
// waits for it. fn's result is ignored.
func (s *Session) ScheduleSynchronous(fn Callback, prio hd.Priority) error {
	if s.closed.Load() {
		return ErrClosed
	}

	var frameErr error
	s.rt.ScheduleSynchronous(func() hd.CallbackResult {
		_, frameErr = s.transaction(fn)
		return hd.Done
	}, prio)
	return multierr.Append(frameErr, s.check("schedule synchronous"))
}

// Unschedule cancels h and waits for an invocation in progress. Unknown or
// already finished handles are ignored.
func (s *Session) Unschedule(h hd.SchedulerHandle) error {
	s.mu.Lock()
	reg, ok := s.registry[h]
	delete(s.registry, h)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.release(reg)
}

func (s *Session) release(reg *registration) error {
	reg.active.Store(false)
	s.rt.Unschedule(reg.handle)
	err := s.check("unschedule")
	// no invocation is in progress once running can be taken
	reg.running.Lock()
	reg.running.Unlock() //nolint:staticcheck
	return err
}

// ClearSchedule unschedules every registration. All are released even if
// some fail.
func (s *Session) ClearSchedule() error {
	s.mu.Lock()
	regs := s.registry
	s.registry = make(map[hd.SchedulerHandle]*registration)
	s.mu.Unlock()

	var err error
	for _, reg := range regs {
		err = multierr.Append(err, s.release(reg))
	}
	if len(regs) > 0 {
		s.log.Debug("schedule cleared", zap.Int("callbacks", len(regs)))
	}
	return err
}

// WaitForCompletion blocks until the callback behind h has finished,
// either by returning false or by being unscheduled.
func (s *Session) WaitForCompletion(h hd.SchedulerHandle) {
	s.rt.WaitForCompletion(h, hd.WaitInfinite)
}

// IsScheduled reports whether h is still registered with the runtime.
func (s *Session) IsScheduled(h hd.SchedulerHandle) bool {
	return s.rt.WaitForCompletion(h, hd.WaitCheckStatus)
}

// Callbacks returns the number of live registrations.
func (s *Session) Callbacks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registry)
}
