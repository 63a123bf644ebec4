// Package simdevice is a software haptic device implementing [hd.Runtime].
//
// It stands in for the native runtime when no stylus is attached and in
// tests. The stylus is a point mass pulled around by a simulated hand (a
// [control.PID] tracking a scripted target) and pushed back by whatever
// force the servo callbacks command, so force rendering is closed-loop:
// a stiff sphere really does stop the stylus at its surface.
//
// The scheduler runs on its own goroutine driven by a [time.Ticker]. With
// [Options.ManualClock] set it does not tick by itself and tests advance it
// with [Device.Step].
//
//	dev := simdevice.New(simdevice.DefaultOptions())
//	sess, err := phantom.Connect(dev, hd.DefaultDevice, log)
//
// Errors follow the native last-error stack: a failing call pushes an
// [hd.ErrorInfo] and leaves state unchanged.
package simdevice
