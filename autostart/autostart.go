// Package autostart adds ClipPath to the current user's login programs.
package autostart

import (
	"fmt"
	"os"
	"path/filepath"
)

// ValueName is the Run key value ClipPath owns.
const ValueName = "ClipPath"

// HideFlag is passed on login so the app starts without a notification.
const HideFlag = "--hide"

// Command builds the Run value for exe.
func Command(exe string) string {
	return `"` + exe + `" ` + HideFlag
}

// Executable returns the absolute path of the running binary.
func Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
