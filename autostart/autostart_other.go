//go:build !windows

package autostart

import "markestedt/clippath/platform"

// Enabled is always false off Windows.
func Enabled() (bool, error) {
	return false, nil
}

func Set(enabled bool) error {
	return platform.ErrUnsupported
}
