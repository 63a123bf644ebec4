package phantom

import (
	"errors"
	"fmt"

	"github.com/san-kum/phantomgo/internal/hd"
)

var (
	// ErrDeviceUnavailable indicates no device could be opened.
	ErrDeviceUnavailable = errors.New("phantom: device unavailable")

	// ErrInvalidParameter indicates a configuration value the device rejects.
	ErrInvalidParameter = errors.New("phantom: invalid parameter")

	// ErrClosed indicates use of a session after Close.
	ErrClosed = errors.New("phantom: session closed")
)

// DeviceError is a failure reported by the device runtime.
type DeviceError struct {
	Op       string
	Code     hd.ErrorCode
	Internal int
	Message  string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("phantom: %s: %s (%s)", e.Op, e.Message, e.Code)
}

// Code returns the runtime error code carried by err, or hd.Success.
func Code(err error) hd.ErrorCode {
	var de *DeviceError
	if errors.As(err, &de) {
		return de.Code
	}
	return hd.Success
}
