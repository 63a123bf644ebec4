// Package metrics summarizes a servo run from the per-tick observations
// the haptic loop reports.
//
// Each metric follows the [dynamo.Metric] contract. A [Recorder] feeds a
// set of them from the servo goroutine and serves their values to readers
// on other goroutines.
package metrics
