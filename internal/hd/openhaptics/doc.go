// Package openhaptics binds [hd.Runtime] to the OpenHaptics HDAPI (libHD).
//
// The binding is only compiled with the openhaptics build tag and cgo:
//
//	go build -tags openhaptics ./...
//
// Without the tag [New] reports [ErrNotBuilt] and callers fall back to the
// simulated device.
//
// Go closures cannot cross into C, so every scheduled callback is wrapped
// in a runtime/cgo.Handle that is passed as the HDAPI user-data pointer
// and released once the scheduler has let go of it.
package openhaptics

import "errors"

var ErrNotBuilt = errors.New("openhaptics: binding not compiled in (build with -tags openhaptics)")
