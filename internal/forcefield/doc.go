// Package forcefield computes the forces a haptic scene renders at the
// stylus tip.
//
// [RigidSphere] is a spring-damper sphere that pushes the tip out along
// the radius. [LogField] repels the tip from a point with a force that
// grows logarithmically as the tip approaches. A [Scene] holds named
// fields that the application edits while the servo loop reads them.
//
// All lengths are in mm, velocities in mm/s and forces in N.
package forcefield
