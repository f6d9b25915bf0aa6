//go:build !windows

package platform

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"markestedt/clippath/hotkey"
)

// NewWindow is only available on Windows.
func NewWindow() (Window, error) {
	return nil, ErrUnsupported
}

// NewClipboard is only available on Windows.
func NewClipboard() Clipboard {
	return unsupported{}
}

// NewKeyboard is only available on Windows.
func NewKeyboard() Keyboard {
	return unsupported{}
}

// NewPaster is only available on Windows.
func NewPaster() Paster {
	return unsupported{}
}

// Lock is a no-op outside Windows.
type Lock struct{}

// TryLock is only available on Windows.
func TryLock(name string) (*Lock, error) {
	return nil, ErrUnsupported
}

// Release does nothing.
func (l *Lock) Release() error { return nil }

// OpenFolder is only available on Windows.
func OpenFolder(dir string) error {
	return ErrUnsupported
}

// OpenURL opens url in the default browser.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		return fmt.Errorf("open %s: %w", url, ErrUnsupported)
	}
	return cmd.Start()
}

type unsupported struct{}

func (unsupported) HasImage() bool { return false }

func (unsupported) ReadDIB() ([]byte, error) { return nil, ErrUnsupported }

func (unsupported) SetText(string) error { return ErrUnsupported }

func (unsupported) IsDown(hotkey.Key) bool { return false }

func (unsupported) WaitForRelease(time.Duration, ...hotkey.Key) bool { return true }

func (unsupported) ForegroundTitle() string { return "" }

func (unsupported) Paste() error { return ErrUnsupported }
