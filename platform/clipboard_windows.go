//go:build windows

package platform

import (
	"errors"
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sys/windows"
)

var (
	openClipboard              = user32.NewProc("OpenClipboard")
	closeClipboard             = user32.NewProc("CloseClipboard")
	emptyClipboard             = user32.NewProc("EmptyClipboard")
	getClipboardData           = user32.NewProc("GetClipboardData")
	setClipboardData           = user32.NewProc("SetClipboardData")
	isClipboardFormatAvailable = user32.NewProc("IsClipboardFormatAvailable")
	globalAlloc                = kernel32.NewProc("GlobalAlloc")
	globalFree                 = kernel32.NewProc("GlobalFree")
	globalLock                 = kernel32.NewProc("GlobalLock")
	globalUnlock               = kernel32.NewProc("GlobalUnlock")
	globalSize                 = kernel32.NewProc("GlobalSize")
)

const (
	cfDIB         = 8
	cfUnicodeText = 13
	gmemMoveable  = 0x0002
)

var errClipboardBusy = errors.New("clipboard is held by another window")

// WindowsClipboard implements the Clipboard interface for Windows
type WindowsClipboard struct {
	retry func() backoff.BackOff
}

// NewClipboard creates a new Windows clipboard instance
func NewClipboard() Clipboard {
	return &WindowsClipboard{
		retry: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewConstantBackOff(10*time.Millisecond), 10)
		},
	}
}

func (c *WindowsClipboard) HasImage() bool {
	r, _, _ := isClipboardFormatAvailable.Call(cfDIB)
	return r != 0
}

func (c *WindowsClipboard) ReadDIB() ([]byte, error) {
	if !c.HasImage() {
		return nil, nil
	}
	if err := c.open(); err != nil {
		return nil, err
	}
	defer c.close()

	h, _, err := getClipboardData.Call(cfDIB)
	if h == 0 {
		if err != nil && err != syscall.Errno(0) {
			return nil, fmt.Errorf("GetClipboardData failed: %w", err)
		}
		return nil, nil
	}

	size, _, _ := globalSize.Call(h)
	if size == 0 {
		return nil, nil
	}

	l, _, err := globalLock.Call(h)
	if l == 0 {
		return nil, fmt.Errorf("GlobalLock failed: %w", err)
	}
	defer globalUnlock.Call(h)

	data := make([]byte, size)
	copy(data, unsafe.Slice((*byte)(unsafe.Pointer(l)), size))
	return data, nil
}

// SetText places text on the clipboard as CF_UNICODETEXT.
func (c *WindowsClipboard) SetText(text string) error {
	utf16, err := windows.UTF16FromString(text)
	if err != nil {
		return fmt.Errorf("UTF16 conversion failed: %w", err)
	}

	n := len(utf16) * 2 // UTF-16 uses 2 bytes per character
	h, _, err := globalAlloc.Call(gmemMoveable, uintptr(n))
	if h == 0 {
		return fmt.Errorf("GlobalAlloc failed: %w", err)
	}

	l, _, err := globalLock.Call(h)
	if l == 0 {
		globalFree.Call(h)
		return fmt.Errorf("GlobalLock failed: %w", err)
	}
	dest := unsafe.Slice((*uint16)(unsafe.Pointer(l)), len(utf16))
	copy(dest, utf16)
	globalUnlock.Call(h)

	if err := c.open(); err != nil {
		globalFree.Call(h)
		return err
	}
	defer c.close()

	emptyClipboard.Call()
	r, _, err := setClipboardData.Call(cfUnicodeText, h)
	if r == 0 {
		globalFree.Call(h)
		return fmt.Errorf("SetClipboardData failed: %w", err)
	}
	// The clipboard owns h from here on.
	return nil
}

func (c *WindowsClipboard) open() error {
	err := backoff.Retry(func() error {
		if r, _, _ := openClipboard.Call(0); r == 0 {
			return errClipboardBusy
		}
		return nil
	}, c.retry())
	if err != nil {
		return fmt.Errorf("failed to open clipboard after retries: %w", err)
	}
	return nil
}

func (c *WindowsClipboard) close() {
	closeClipboard.Call()
}
