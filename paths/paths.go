// Package paths decides whether a saved file is pasted as a Windows path or
// as its WSL mount path.
package paths

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

// Mode selects the path style.
type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeWSL     Mode = "wsl"
	ModeWindows Mode = "windows"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAuto, ModeWSL, ModeWindows:
		return m, nil
	}
	return "", fmt.Errorf("unknown path mode %q", s)
}

// Label is the human readable form used in the tray menu.
func (m Mode) Label() string {
	switch m {
	case ModeWSL:
		return "WSL"
	case ModeWindows:
		return "Windows"
	}
	return "Auto-detect"
}

var drivePath = regexp.MustCompile(`^([A-Za-z]):\\(.*)$`)

// ToWSL maps a drive-letter path to its /mnt mount, e.g. C:\a\b to
// /mnt/c/a/b. Any other input is returned unchanged.
func ToWSL(p string) string {
	m := drivePath.FindStringSubmatch(p)
	if m == nil {
		return p
	}
	return "/mnt/" + strings.ToLower(m[1]) + "/" + strings.ReplaceAll(m[2], `\`, "/")
}

var wslIndicators = []string{
	"wsl", "ubuntu", "debian", "kali", "opensuse", "fedora", "pengwin",
	"alpine", "arch", "oracle", "suse", "linux", "bash", "zsh",
}

var wslPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\w+@\w+:`), // user@host: prompt
	regexp.MustCompile(`/home/`),
	regexp.MustCompile(`/mnt/[a-z]/`),
	regexp.MustCompile(`~/`),
}

// IsWSLTitle guesses from a window title whether the window is a WSL
// terminal.
func IsWSLTitle(title string) bool {
	title = strings.ToLower(title)
	if title == "" {
		return false
	}
	for _, ind := range wslIndicators {
		if strings.Contains(title, ind) {
			return true
		}
	}
	for _, pat := range wslPatterns {
		if pat.MatchString(title) {
			return true
		}
	}
	return false
}

// Resolver converts paths according to the current mode. It is safe for
// concurrent use.
type Resolver struct {
	mu    sync.RWMutex
	mode  Mode
	title func() string
}

// NewResolver creates a resolver. title returns the foreground window
// title and is only consulted in auto mode.
func NewResolver(mode Mode, title func() string) *Resolver {
	if title == nil {
		title = func() string { return "" }
	}
	return &Resolver{mode: mode, title: title}
}

func (r *Resolver) Mode() Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

func (r *Resolver) SetMode(m Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = m
}

// Resolve returns p in the style the focused window expects.
func (r *Resolver) Resolve(p string) string {
	switch r.Mode() {
	case ModeWSL:
		return ToWSL(p)
	case ModeWindows:
		return p
	}

	title := r.title()
	wsl := IsWSLTitle(title)
	slog.Debug("Detected terminal", "title", title, "wsl", wsl)
	if wsl {
		return ToWSL(p)
	}
	return p
}
