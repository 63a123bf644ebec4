// Package hd describes the native haptic device runtime the servo core is
// built on.
//
// The runtime itself is an external collaborator. [Runtime] is its call
// surface, one method per native entry point, with the same last-error
// discipline: a call that fails pushes an [ErrorInfo] that the caller
// retrieves with [Runtime.GetError] immediately afterwards.
//
// Two implementations exist:
//
//   - simdevice: a software device with a goroutine scheduler
//   - hd/openhaptics: the cgo binding to libHD (build tag openhaptics)
//
// Codes, parameter names and capabilities carry the values of the device
// headers so the cgo binding can pass them straight through.
package hd
