// Package phantom drives a haptic stylus through an [hd.Runtime].
//
// A [Session] owns one device from [Connect] to [Session.Close]. It
// exposes snapshot accessors for the stylus pose and buttons, the force
// command, and the servo scheduler:
//
//   - [Session.ScheduleAsynchronous] runs a [Callback] every servo tick
//     until it returns false or is unscheduled
//   - [Session.ScheduleSynchronous] runs a [Callback] once and waits
//
// Every invocation is wrapped in a begin/end frame. The session keeps the
// wrapping closure of each registration in a registry keyed by scheduler
// handle until the runtime has dropped it, and [Session.Unschedule] waits
// for an invocation in progress before returning.
//
// [ButtonTracker] turns the button mask into press and release edges for
// an application frame loop.
//
// # Errors
//
// Each accessor makes exactly one runtime query followed by an error
// check. Failures come back as [*DeviceError] naming the operation, for
// example "get position". Connect failures match [ErrDeviceUnavailable]
// and rejected scheduler rates match [ErrInvalidParameter]. Nothing is
// retried.
//
// # Concurrency
//
// Accessors may be called from the servo callback and from application
// goroutines at the same time. The runtime has one error stack, so the
// session holds a short lock across each runtime call and the pop of its
// error; an error always reaches the goroutine whose call caused it. The
// scheduler calls that wait for the servo thread are made outside that
// lock and checked right after. [Session.SetForce] is only meaningful
// inside a callback's frame. Unschedule, ClearSchedule, Stop and Close
// must not be called from inside a callback.
package phantom
