// Package control provides the feedback controller that plays the user's
// hand in the simulated device.
//
//   - [PID]: three-axis PID tracking a target position
//
// # Usage
//
//	hand := control.NewPID(0.08, 0, 0.004, geom.V(0, 0, 0))
//	u := hand.Compute(pos, vel, t) // N, applied to the stylus mass
//
// [PID] implements [dynamo.Configurable] for live tuning.
package control
