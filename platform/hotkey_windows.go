//go:build windows

package platform

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"markestedt/clippath/hotkey"
)

var (
	registerHotKey       = user32.NewProc("RegisterHotKey")
	unregisterHotKey     = user32.NewProc("UnregisterHotKey")
	getAsyncKeyState     = user32.NewProc("GetAsyncKeyState")
	getForegroundWindow  = user32.NewProc("GetForegroundWindow")
	getWindowTextW       = user32.NewProc("GetWindowTextW")
	getWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
)

// RegisterHotKey implements hotkey.API for the message window.
func (w *messageWindow) RegisterHotKey(id int, mods hotkey.Modifiers, key hotkey.Key) error {
	r, _, err := registerHotKey.Call(w.hwnd, uintptr(id), uintptr(mods), uintptr(key))
	if r == 0 {
		return fmt.Errorf("RegisterHotKey failed: %w", err)
	}
	return nil
}

// UnregisterHotKey implements hotkey.API for the message window.
func (w *messageWindow) UnregisterHotKey(id int) error {
	r, _, err := unregisterHotKey.Call(w.hwnd, uintptr(id))
	if r == 0 {
		return fmt.Errorf("UnregisterHotKey failed: %w", err)
	}
	return nil
}

// WindowsKeyboard implements the Keyboard interface for Windows
type WindowsKeyboard struct {
	poll time.Duration
}

// NewKeyboard creates a keyboard state reader.
func NewKeyboard() Keyboard {
	return &WindowsKeyboard{poll: 5 * time.Millisecond}
}

func (k *WindowsKeyboard) IsDown(key hotkey.Key) bool {
	r, _, _ := getAsyncKeyState.Call(uintptr(key))
	return r&0x8000 != 0
}

func (k *WindowsKeyboard) WaitForRelease(timeout time.Duration, keys ...hotkey.Key) bool {
	deadline := time.Now().Add(timeout)
	for {
		held := false
		for _, key := range keys {
			if k.IsDown(key) {
				held = true
				break
			}
		}
		if !held {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(k.poll)
	}
}

func (k *WindowsKeyboard) ForegroundTitle() string {
	hwnd, _, _ := getForegroundWindow.Call()
	if hwnd == 0 {
		return ""
	}
	n, _, _ := getWindowTextLengthW.Call(hwnd)
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	getWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf)
}
