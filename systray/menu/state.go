package menu

import (
	"fmt"

	"markestedt/clippath/paths"
)

// State is everything the tray renders.
type State struct {
	PathMode   paths.Mode
	FileCount  int
	ImageReady bool
	Autostart  bool
	Shortcut   string
	Capturing  bool
}

// Tooltip is the text shown when hovering the tray icon.
func (s State) Tooltip() string {
	switch {
	case s.Capturing:
		return "ClipPath - Press the new shortcut (Esc cancels)"
	case s.ImageReady:
		return fmt.Sprintf("ClipPath - Image ready! (%s)", s.Shortcut)
	}
	return "ClipPath - No image"
}

// PathLabel is the menu text for a path mode item.
func PathLabel(m paths.Mode) string {
	switch m {
	case paths.ModeWSL:
		return "Path: WSL (/mnt/c/...)"
	case paths.ModeWindows:
		return `Path: Windows (C:\...)`
	}
	return "Path: Auto-detect"
}

// CleanLabel is the menu text for the clean item.
func CleanLabel(files int) string {
	switch files {
	case 0:
		return "Clean now (empty)"
	case 1:
		return "Clean now (1 file)"
	}
	return fmt.Sprintf("Clean now (%d files)", files)
}

// ShortcutLabel is the menu text for the change shortcut item.
func (s State) ShortcutLabel() string {
	if s.Capturing {
		return "Change shortcut... (press keys)"
	}
	return fmt.Sprintf("Change shortcut... (%s)", s.Shortcut)
}
