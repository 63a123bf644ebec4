//go:build !openhaptics || !cgo

package openhaptics

import "github.com/san-kum/phantomgo/internal/hd"

func Available() bool { return false }

func New() (hd.Runtime, error) {
	return nil, ErrNotBuilt
}
