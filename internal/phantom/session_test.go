package phantom_test

import (
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/phantomgo/internal/geom"
	"github.com/san-kum/phantomgo/internal/hd"
	"github.com/san-kum/phantomgo/internal/phantom"
	"github.com/san-kum/phantomgo/internal/simdevice"
)

// leakyScheduler registers the callback and still reports an error.
type leakyScheduler struct{ *simdevice.Device }

func (l leakyScheduler) ScheduleAsynchronous(cb hd.SchedulerCallback, prio hd.Priority) hd.SchedulerHandle {
	h := l.Device.ScheduleAsynchronous(cb, prio)
	l.Device.InjectError(hd.SchedulerFull)
	l.Device.SetSchedulerRate(500) // surfaces the injected error
	return h
}

func manualDevice() *simdevice.Device {
	opts := simdevice.DefaultOptions()
	opts.ManualClock = true
	dev, err := simdevice.New(opts)
	Expect(err).NotTo(HaveOccurred())
	return dev
}

var _ = Describe("Session", func() {
	var (
		dev *simdevice.Device
		s   *phantom.Session
	)

	BeforeEach(func() {
		dev = manualDevice()
		var err error
		s, err = phantom.Connect(dev, hd.DefaultDevice, nil)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			Expect(s.Close()).To(Succeed())
		})
	})

	Describe("Connect", func() {
		It("caches the workspace limits", func() {
			w := s.WorkspaceLimits()
			Expect(w.Min).To(Equal(geom.V(-210, -110, -85)))
			Expect(w.Max).To(Equal(geom.V(210, 205, 130)))
			Expect(w.UsableMin).To(Equal(geom.V(-80, -60, -35)))
			Expect(w.TabletopOffset).To(BeNumerically("~", -88, 1e-6))
			Expect(w.Contains(geom.Zero)).To(BeTrue())
			Expect(w.Contains(geom.V(0, 100, 0))).To(BeFalse())
		})

		It("reports a missing device as unavailable", func() {
			opts := simdevice.DefaultOptions()
			opts.Unavailable = true
			missing, err := simdevice.New(opts)
			Expect(err).NotTo(HaveOccurred())

			_, err = phantom.Connect(missing, hd.DefaultDevice, nil)
			Expect(err).To(MatchError(phantom.ErrDeviceUnavailable))
			Expect(phantom.Code(err)).To(Equal(hd.DeviceFault))
		})

		It("refuses an unknown device name", func() {
			_, err := phantom.Connect(manualDevice(), "Right Arm", nil)
			Expect(errors.Is(err, phantom.ErrDeviceUnavailable)).To(BeTrue())
		})

		It("gives each session its own id", func() {
			other, err := phantom.Connect(manualDevice(), hd.DefaultDevice, nil)
			Expect(err).NotTo(HaveOccurred())
			defer other.Close()
			Expect(other.ID()).NotTo(Equal(s.ID()))
		})

		It("reads the device info", func() {
			info, err := s.DeviceInfo()
			Expect(err).NotTo(HaveOccurred())
			Expect(info.NominalMaxForce).To(BeNumerically("~", 3.3, 1e-9))
			Expect(info.Model).NotTo(BeEmpty())
		})
	})

	Describe("lifecycle", func() {
		It("starts and stops idempotently", func() {
			Expect(s.Start()).To(Succeed())
			Expect(s.Start()).To(Succeed())
			Expect(s.IsRunning()).To(BeTrue())
			Expect(dev.IsEnabled(hd.ForceOutput)).To(BeTrue())

			Expect(s.Stop()).To(Succeed())
			Expect(s.Stop()).To(Succeed())
			Expect(s.IsRunning()).To(BeFalse())
			Expect(dev.SchedulerRunning()).To(BeFalse())
			Expect(dev.IsEnabled(hd.ForceOutput)).To(BeFalse())
		})

		It("can be closed twice", func() {
			Expect(s.Start()).To(Succeed())
			Expect(s.Close()).To(Succeed())
			Expect(s.Close()).To(Succeed())
			Expect(s.IsAvailable()).To(BeFalse())
			Expect(s.IsRunning()).To(BeFalse())
		})

		It("stays running when force output cannot be disabled", func() {
			Expect(s.Start()).To(Succeed())
			dev.InjectError(hd.CommError)

			err := s.Stop()
			var de *phantom.DeviceError
			Expect(errors.As(err, &de)).To(BeTrue())
			Expect(de.Op).To(Equal("disable force output"))
			Expect(s.IsRunning()).To(BeTrue())
			Expect(dev.IsEnabled(hd.ForceOutput)).To(BeTrue())

			Expect(s.Stop()).To(Succeed())
			Expect(s.IsRunning()).To(BeFalse())
			Expect(dev.IsEnabled(hd.ForceOutput)).To(BeFalse())
		})

		It("finishes cleanup when a close step fails", func() {
			Expect(s.Start()).To(Succeed())
			for i := 0; i < 2; i++ {
				_, err := s.ScheduleAsynchronous(func() bool { return true }, hd.DefaultPriority)
				Expect(err).NotTo(HaveOccurred())
			}
			dev.InjectError(hd.CommError)

			Expect(phantom.Code(s.Close())).To(Equal(hd.CommError))
			Expect(s.Callbacks()).To(BeZero())
			Expect(dev.Callbacks()).To(BeZero())
			Expect(dev.SchedulerRunning()).To(BeFalse())
			Expect(s.IsRunning()).To(BeFalse())

			// the device was released, so it can be opened again
			again, err := phantom.Connect(dev, hd.DefaultDevice, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Close()).To(Succeed())
		})

		It("rejects use after close", func() {
			Expect(s.Close()).To(Succeed())
			Expect(s.Start()).To(MatchError(phantom.ErrClosed))
			_, err := s.Position()
			Expect(err).To(MatchError(phantom.ErrClosed))
			_, err = s.ScheduleAsynchronous(func() bool { return true }, hd.DefaultPriority)
			Expect(err).To(MatchError(phantom.ErrClosed))
		})
	})

	Describe("asynchronous callbacks", func() {
		BeforeEach(func() {
			Expect(s.Start()).To(Succeed())
		})

		It("runs every tick until unscheduled", func() {
			var calls atomic.Int32
			h, err := s.ScheduleAsynchronous(func() bool {
				calls.Add(1)
				return true
			}, hd.DefaultPriority)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.IsScheduled(h)).To(BeTrue())

			dev.Step(5)
			Expect(calls.Load()).To(BeEquivalentTo(5))

			Expect(s.Unschedule(h)).To(Succeed())
			Expect(s.Unschedule(h)).To(Succeed())
			dev.Step(5)
			Expect(calls.Load()).To(BeEquivalentTo(5))
			Expect(s.IsScheduled(h)).To(BeFalse())
		})

		It("ends a callback that returns false", func() {
			var calls atomic.Int32
			h, err := s.ScheduleAsynchronous(func() bool {
				return calls.Add(1) < 3
			}, hd.DefaultPriority)
			Expect(err).NotTo(HaveOccurred())

			dev.Step(10)
			Expect(calls.Load()).To(BeEquivalentTo(3))
			Expect(s.Callbacks()).To(BeZero())
			Expect(s.IsScheduled(h)).To(BeFalse())
			Expect(s.Err()).NotTo(HaveOccurred())
		})

		It("clears every registration", func() {
			for i := 0; i < 8; i++ {
				_, err := s.ScheduleAsynchronous(func() bool { return true }, hd.Priority(i))
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(s.Callbacks()).To(Equal(8))

			Expect(s.ClearSchedule()).To(Succeed())
			Expect(s.Callbacks()).To(BeZero())
			Expect(dev.Callbacks()).To(BeZero())
		})

		It("unschedules a callback the runtime registered despite an error", func() {
			inner := manualDevice()
			leaky, err := phantom.Connect(leakyScheduler{inner}, hd.DefaultDevice, nil)
			Expect(err).NotTo(HaveOccurred())
			defer leaky.Close()
			Expect(leaky.Start()).To(Succeed())

			var calls atomic.Int32
			_, err = leaky.ScheduleAsynchronous(func() bool {
				calls.Add(1)
				return true
			}, hd.DefaultPriority)
			var de *phantom.DeviceError
			Expect(errors.As(err, &de)).To(BeTrue())
			Expect(de.Op).To(Equal("schedule asynchronous"))
			Expect(de.Code).To(Equal(hd.SchedulerFull))

			Expect(leaky.Callbacks()).To(BeZero())
			Expect(inner.Callbacks()).To(BeZero())
			inner.Step(3)
			Expect(calls.Load()).To(BeZero())
		})

		It("applies the force set inside the callback", func() {
			f := geom.V(0.5, 0, -0.25)
			_, err := s.ScheduleAsynchronous(func() bool {
				return s.SetForce(f) == nil
			}, hd.DefaultPriority)
			Expect(err).NotTo(HaveOccurred())

			dev.Step(1)
			Expect(dev.Force()).To(Equal(f))
			got, err := s.Force()
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(f))
		})

		It("keeps the frame error that ended a callback", func() {
			_, err := s.ScheduleAsynchronous(func() bool {
				s.SetForce(geom.V(10, 0, 0))
				return true
			}, hd.DefaultPriority)
			Expect(err).NotTo(HaveOccurred())

			dev.Step(3)
			Expect(s.Callbacks()).To(BeZero())
			servoErr := s.Err()
			Expect(phantom.Code(servoErr)).To(Equal(hd.ExceededMaxForce))
			Expect(s.Err()).NotTo(HaveOccurred())
		})
	})

	Describe("synchronous callbacks", func() {
		It("runs once and returns", func() {
			var pos geom.Vec3
			calls := 0
			err := s.ScheduleSynchronous(func() bool {
				calls++
				var err error
				pos, err = s.Position()
				return err == nil
			}, hd.MaxPriority)
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(1))
			Expect(pos).To(Equal(geom.Zero))
		})
	})

	Describe("errors", func() {
		It("wraps a device error with the operation", func() {
			dev.InjectError(hd.CommError)
			_, err := s.Position()

			var de *phantom.DeviceError
			Expect(errors.As(err, &de)).To(BeTrue())
			Expect(de.Op).To(Equal("get position"))
			Expect(de.Code).To(Equal(hd.CommError))

			_, err = s.Position()
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects unsupported scheduler rates", func() {
			Expect(s.SetSchedulerRate(0)).To(MatchError(phantom.ErrInvalidParameter))
			Expect(s.SetSchedulerRate(750)).To(MatchError(phantom.ErrInvalidParameter))

			Expect(s.SetSchedulerRate(500)).To(Succeed())
			rate, err := s.UpdateRate()
			Expect(err).NotTo(HaveOccurred())
			Expect(rate).To(BeEquivalentTo(500))
		})
	})

	Describe("buttons", func() {
		It("tracks edges across frames", func() {
			tr := phantom.NewButtonTracker(s)

			dev.SetButtons(int32(phantom.Button1))
			_, err := tr.Advance()
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.WasPressed(phantom.Button1)).To(BeTrue())

			dev.SetButtons(0)
			tr.Advance()
			Expect(tr.WasReleased(phantom.Button1)).To(BeTrue())
		})
	})
})

var _ = Describe("Session on a ticking device", func() {
	var s *phantom.Session

	BeforeEach(func() {
		dev, err := simdevice.New(simdevice.DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		s, err = phantom.Connect(dev, hd.DefaultDevice, nil)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			Expect(s.Close()).To(Succeed())
		})
		Expect(s.Start()).To(Succeed())
	})

	It("keeps each error with the goroutine that caused it", func() {
		var ticks atomic.Int32
		var servoErr atomic.Pointer[error]
		h, err := s.ScheduleAsynchronous(func() bool {
			for i := 0; i < 50; i++ {
				if _, err := s.Position(); err != nil {
					servoErr.Store(&err)
					return false
				}
			}
			ticks.Add(1)
			return true
		}, hd.DefaultPriority)
		Expect(err).NotTo(HaveOccurred())

		deadline := time.Now().Add(300 * time.Millisecond)
		for time.Now().Before(deadline) {
			err := s.SetSchedulerRate(750)
			Expect(err).To(MatchError(phantom.ErrInvalidParameter))
			Expect(phantom.Code(err)).To(Equal(hd.InvalidValue))
		}

		Expect(servoErr.Load()).To(BeNil())
		Expect(s.Err()).NotTo(HaveOccurred())
		Expect(s.IsScheduled(h)).To(BeTrue())
		Expect(ticks.Load()).To(BeNumerically(">", 0))
	})

	It("waits for a callback that ends itself", func() {
		var calls atomic.Int32
		h, err := s.ScheduleAsynchronous(func() bool {
			return calls.Add(1) < 3
		}, hd.DefaultPriority)
		Expect(err).NotTo(HaveOccurred())

		done := make(chan struct{})
		go func() {
			s.WaitForCompletion(h)
			close(done)
		}()
		Eventually(done).Should(BeClosed())
		Expect(calls.Load()).To(BeEquivalentTo(3))
		Expect(s.IsScheduled(h)).To(BeFalse())
	})

	It("waits until a callback is unscheduled", func() {
		h, err := s.ScheduleAsynchronous(func() bool { return true }, hd.DefaultPriority)
		Expect(err).NotTo(HaveOccurred())

		done := make(chan struct{})
		go func() {
			s.WaitForCompletion(h)
			close(done)
		}()
		Consistently(done, 30*time.Millisecond).ShouldNot(BeClosed())

		Expect(s.Unschedule(h)).To(Succeed())
		Eventually(done).Should(BeClosed())
	})

	It("returns from Unschedule only after the running invocation", func() {
		var inFlight atomic.Bool
		var calls atomic.Int32
		h, err := s.ScheduleAsynchronous(func() bool {
			inFlight.Store(true)
			time.Sleep(2 * time.Millisecond)
			calls.Add(1)
			inFlight.Store(false)
			return true
		}, hd.DefaultPriority)
		Expect(err).NotTo(HaveOccurred())

		Eventually(calls.Load).Should(BeNumerically(">=", 2))
		Expect(s.Unschedule(h)).To(Succeed())
		Expect(inFlight.Load()).To(BeFalse())

		n := calls.Load()
		Consistently(calls.Load, 30*time.Millisecond).Should(Equal(n))
		Expect(s.Callbacks()).To(BeZero())
	})
})
