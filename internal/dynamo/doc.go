// Package dynamo provides the numerical primitives shared by the simulated
// stylus and the servo metrics.
//
//   - [State]: flat state vector, positions first then velocities
//   - [System]: ODE right-hand side dX/dt = f(X, u, t)
//   - [Integrator]: advances a [State] in place by one time step
//   - [Metric]: accumulates one scalar over servo ticks
//
// Everything here runs on the servo thread, so implementations write into
// caller-owned or preallocated buffers instead of returning fresh slices.
//
// # Example
//
//	x := dynamo.State{0, 0, 0, 0, 0, 0}
//	integ := integrators.NewRK4()
//	for t := 0.0; t < 1; t += dt {
//		integ.Step(stylus, x, u, t, dt)
//	}
package dynamo
