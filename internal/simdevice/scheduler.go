package simdevice

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/phantomgo/internal/hd"
	"go.uber.org/zap"
)

const maxCallbacks = 64

type entry struct {
	handle hd.SchedulerHandle
	cb     hd.SchedulerCallback
	prio   hd.Priority

	// mu is held while cb runs.
	mu      sync.Mutex
	removed atomic.Bool
	done    chan struct{}
	once    sync.Once
}

func (e *entry) retire() {
	e.once.Do(func() {
		e.removed.Store(true)
		close(e.done)
	})
}

type syncCall struct {
	cb   hd.SchedulerCallback
	done chan struct{}
}

type scheduler struct {
	mu      sync.Mutex
	running bool
	nextID  hd.SchedulerHandle
	entries map[hd.SchedulerHandle]*entry
	order   []*entry
	calls   []*syncCall
	stop    chan struct{}
	stopped chan struct{}

	rate  atomic.Uint32
	batch []*entry // owned by the ticking goroutine
}

func (s *scheduler) init(rate uint32) {
	s.entries = make(map[hd.SchedulerHandle]*entry)
	s.rate.Store(rate)
}

// removeLocked drops h from the schedule. Caller holds s.mu.
func (s *scheduler) removeLocked(h hd.SchedulerHandle) *entry {
	e, ok := s.entries[h]
	if !ok {
		return nil
	}
	delete(s.entries, h)
	s.order = slices.DeleteFunc(s.order, func(o *entry) bool { return o == e })
	e.retire()
	return e
}

func period(hz uint32) time.Duration {
	return time.Second / time.Duration(hz)
}

func (d *Device) StartScheduler() {
	d.mu.Lock()
	ok := d.ready()
	d.mu.Unlock()
	if !ok {
		return
	}

	s := &d.sched
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	if d.opts.ManualClock {
		s.mu.Unlock()
		d.log.Info("scheduler started", zap.Bool("manual", true))
		return
	}
	stop, stopped := make(chan struct{}), make(chan struct{})
	s.stop, s.stopped = stop, stopped
	s.mu.Unlock()

	go d.loop(stop, stopped)
	d.log.Info("scheduler started", zap.Uint32("rate_hz", s.rate.Load()))
}

// StopScheduler returns once the scheduler goroutine has exited, so no
// callback is running afterwards. It must not be called from a callback.
func (d *Device) StopScheduler() {
	s := &d.sched
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, stopped := s.stop, s.stopped
	s.stop, s.stopped = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-stopped
	}
	d.log.Info("scheduler stopped", zap.Uint64("ticks", d.ticks.Load()))
}

func (d *Device) SetSchedulerRate(hz uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.injected) > 0 {
		d.ready()
		return
	}
	if !slices.Contains(d.opts.Rates, hz) {
		d.push(hd.InvalidValue)
		return
	}
	d.rate = hz
	d.sched.rate.Store(hz)
	d.log.Debug("scheduler rate set", zap.Uint32("rate_hz", hz))
}

func (d *Device) SchedulerTimeStamp() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.tickWall.IsZero() {
		return 0
	}
	return time.Since(d.tickWall).Seconds()
}

func (d *Device) loop(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	rate := d.sched.rate.Load()
	ticker := time.NewTicker(period(rate))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			d.drain()
			return
		case now := <-ticker.C:
			if r := d.sched.rate.Load(); r != rate {
				rate = r
				ticker.Reset(period(rate))
			}
			d.tick(now)
		}
	}
}

// drain runs synchronous calls queued after the last tick so their
// callers are released.
func (d *Device) drain() {
	s := &d.sched
	s.mu.Lock()
	calls := s.calls
	s.calls = nil
	s.mu.Unlock()

	for _, c := range calls {
		c.cb()
		close(c.done)
	}
}

// Step runs n ticks on the calling goroutine. It only has an effect with
// ManualClock set and the scheduler started.
func (d *Device) Step(n int) {
	if !d.opts.ManualClock {
		return
	}
	for i := 0; i < n; i++ {
		d.sched.mu.Lock()
		running := d.sched.running
		d.sched.mu.Unlock()
		if !running {
			return
		}

		d.mu.Lock()
		d.manualNow = d.manualNow.Add(period(d.rate))
		now := d.manualNow
		d.mu.Unlock()
		d.tick(now)
	}
}

// tick is one servo period: physics first, then queued synchronous
// calls, then asynchronous callbacks by descending priority.
func (d *Device) tick(now time.Time) {
	d.mu.Lock()
	d.advance(now)
	d.mu.Unlock()

	s := &d.sched
	s.mu.Lock()
	calls := s.calls
	s.calls = nil
	s.batch = append(s.batch[:0], s.order...)
	s.mu.Unlock()

	for _, c := range calls {
		c.cb()
		close(c.done)
	}
	for _, e := range s.batch {
		d.invoke(e)
	}
	d.ticks.Add(1)
}

func (d *Device) invoke(e *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed.Load() {
		return
	}
	if e.cb() == hd.Done {
		d.sched.mu.Lock()
		d.sched.removeLocked(e.handle)
		d.sched.mu.Unlock()
	}
}

func (d *Device) ScheduleAsynchronous(cb hd.SchedulerCallback, prio hd.Priority) hd.SchedulerHandle {
	s := &d.sched
	s.mu.Lock()
	if len(s.entries) >= maxCallbacks {
		s.mu.Unlock()
		d.mu.Lock()
		d.push(hd.SchedulerFull)
		d.mu.Unlock()
		return 0
	}
	s.nextID++
	e := &entry{handle: s.nextID, cb: cb, prio: prio, done: make(chan struct{})}
	s.entries[e.handle] = e
	s.order = append(s.order, e)
	slices.SortStableFunc(s.order, func(a, b *entry) int {
		return int(b.prio) - int(a.prio)
	})
	s.mu.Unlock()
	return e.handle
}

// ScheduleSynchronous runs cb once on the next tick and waits for it. With
// the scheduler stopped, or under ManualClock, cb runs on the calling
// goroutine. The result of cb is ignored.
func (d *Device) ScheduleSynchronous(cb hd.SchedulerCallback, prio hd.Priority) {
	s := &d.sched
	s.mu.Lock()
	if s.running && !d.opts.ManualClock {
		c := &syncCall{cb: cb, done: make(chan struct{})}
		s.calls = append(s.calls, c)
		s.mu.Unlock()
		<-c.done
		return
	}
	s.mu.Unlock()
	cb()
}

// Unschedule waits for an in-flight invocation of h to finish. Unknown
// handles are ignored. It must not be called from h's own callback.
func (d *Device) Unschedule(h hd.SchedulerHandle) {
	s := &d.sched
	s.mu.Lock()
	e := s.removeLocked(h)
	s.mu.Unlock()
	if e == nil {
		return
	}
	// wait out a call already in progress
	e.mu.Lock()
	e.mu.Unlock() //nolint:staticcheck
}

// WaitForCompletion reports whether h is still scheduled. With
// WaitInfinite it first blocks until h is unscheduled or returns Done.
func (d *Device) WaitForCompletion(h hd.SchedulerHandle, mode hd.WaitCode) bool {
	s := &d.sched
	s.mu.Lock()
	e, ok := s.entries[h]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if mode == hd.WaitInfinite {
		<-e.done
		return false
	}
	return true
}

// Callbacks returns the number of scheduled asynchronous callbacks.
func (d *Device) Callbacks() int {
	d.sched.mu.Lock()
	defer d.sched.mu.Unlock()
	return len(d.sched.entries)
}

func (d *Device) SchedulerRunning() bool {
	d.sched.mu.Lock()
	defer d.sched.mu.Unlock()
	return d.sched.running
}
