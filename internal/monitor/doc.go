// Package monitor is a live terminal view of a running haptic session.
//
// The Bubble Tea program is the outer frame loop: every frame it calls
// [pen.Pen.Frame], draws the workspace seen from the front and shows pose,
// force, buttons and servo metrics with a force history plot.
//
// # Key Bindings
//
//	Space     - Attach/detach the servo callback
//	D         - Toggle damping
//	T         - Cycle color themes
//	?         - Show help overlay
//	Q         - Quit
//
// With the simulated device:
//
//	Arrows    - Nudge the hand along X and Y
//	PgUp/PgDn - Nudge the hand along Z
//	1-4       - Toggle stylus buttons
//	M         - Cycle hand motion
package monitor
