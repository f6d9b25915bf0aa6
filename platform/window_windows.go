//go:build windows

package platform

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"markestedt/clippath/events"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	registerClassEx               = user32.NewProc("RegisterClassExW")
	unregisterClass               = user32.NewProc("UnregisterClassW")
	createWindowEx                = user32.NewProc("CreateWindowExW")
	destroyWindow                 = user32.NewProc("DestroyWindow")
	defWindowProc                 = user32.NewProc("DefWindowProcW")
	peekMessage                   = user32.NewProc("PeekMessageW")
	translateMessage              = user32.NewProc("TranslateMessage")
	postMessage                   = user32.NewProc("PostMessageW")
	addClipboardFormatListener    = user32.NewProc("AddClipboardFormatListener")
	removeClipboardFormatListener = user32.NewProc("RemoveClipboardFormatListener")
	getModuleHandle               = kernel32.NewProc("GetModuleHandleW")
)

const (
	wsExToolWindow = 0x00000080
	wsPopup        = 0x80000000
	pmRemove       = 0x0001

	className  = "ClipPathClass"
	windowName = "ClipPath"
)

type wndClassEx struct {
	cbSize        uint32
	style         uint32
	lpfnWndProc   uintptr
	cbClsExtra    int32
	cbWndExtra    int32
	hInstance     uintptr
	hIcon         uintptr
	hCursor       uintptr
	hbrBackground uintptr
	lpszMenuName  *uint16
	lpszClassName *uint16
	hIconSm       uintptr
}

type point struct {
	x int32
	y int32
}

// msg mirrors the Win32 MSG struct.
type msg struct {
	hwnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

// The window procedure is created once; windows.NewCallback slots are never
// released.
var (
	wndProcOnce sync.Once
	wndProcPtr  uintptr

	windowsMu sync.RWMutex
	byHandle  = map[uintptr]*messageWindow{}
)

func wndProc(hwnd, message, wParam, lParam uintptr) uintptr {
	windowsMu.RLock()
	w := byHandle[hwnd]
	windowsMu.RUnlock()

	if w != nil && w.direct != nil {
		return w.direct(events.Event{Source: hwnd, Code: uint32(message), Param1: wParam, Param2: lParam})
	}
	r, _, _ := defWindowProc.Call(hwnd, message, wParam, lParam)
	return r
}

type messageWindow struct {
	hwnd      uintptr
	instance  uintptr
	class     *uint16
	direct    func(ev events.Event) uintptr
	listening bool
}

// NewWindow registers the window class and creates the hidden message
// window on the calling thread.
func NewWindow() (Window, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("user32.dll is unavailable: %w", err)
	}
	wndProcOnce.Do(func() { wndProcPtr = windows.NewCallback(wndProc) })

	instance, _, _ := getModuleHandle.Call(0)
	class, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return nil, err
	}
	title, err := windows.UTF16PtrFromString(windowName)
	if err != nil {
		return nil, err
	}

	wc := wndClassEx{
		lpfnWndProc:   wndProcPtr,
		hInstance:     instance,
		lpszClassName: class,
	}
	wc.cbSize = uint32(unsafe.Sizeof(wc))
	if atom, _, err := registerClassEx.Call(uintptr(unsafe.Pointer(&wc))); atom == 0 {
		return nil, fmt.Errorf("RegisterClassExW failed: %w", err)
	}

	// Positioned off-screen; the window is never shown.
	offscreen := int32(-1000)
	hwnd, _, err := createWindowEx.Call(
		wsExToolWindow,
		uintptr(unsafe.Pointer(class)),
		uintptr(unsafe.Pointer(title)),
		wsPopup,
		uintptr(offscreen),
		uintptr(offscreen),
		1,
		1,
		0,
		0,
		instance,
		0,
	)
	if hwnd == 0 {
		unregisterClass.Call(uintptr(unsafe.Pointer(class)), instance)
		return nil, fmt.Errorf("CreateWindowExW failed: %w", err)
	}

	w := &messageWindow{hwnd: hwnd, instance: instance, class: class}
	windowsMu.Lock()
	byHandle[hwnd] = w
	windowsMu.Unlock()
	return w, nil
}

// SetDirect implements events.DirectSource.
func (w *messageWindow) SetDirect(deliver func(ev events.Event) uintptr) {
	w.direct = deliver
}

// Next implements events.Source.
func (w *messageWindow) Next() (events.Event, bool, error) {
	var m msg
	r, _, _ := peekMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
	if r == 0 {
		return events.Event{}, false, nil
	}
	translateMessage.Call(uintptr(unsafe.Pointer(&m)))
	return events.Event{Source: m.hwnd, Code: m.message, Param1: m.wParam, Param2: m.lParam}, true, nil
}

// Default implements events.Source.
func (w *messageWindow) Default(ev events.Event) uintptr {
	if ev.Source == 0 {
		return 0
	}
	r, _, _ := defWindowProc.Call(ev.Source, uintptr(ev.Code), ev.Param1, ev.Param2)
	return r
}

// Post implements events.Poster. It is safe to call from any goroutine.
func (w *messageWindow) Post(ev events.Event) error {
	if r, _, err := postMessage.Call(w.hwnd, uintptr(ev.Code), ev.Param1, ev.Param2); r == 0 {
		return fmt.Errorf("PostMessageW failed: %w", err)
	}
	return nil
}

func (w *messageWindow) ListenClipboard() error {
	if w.listening {
		return nil
	}
	if r, _, err := addClipboardFormatListener.Call(w.hwnd); r == 0 {
		return fmt.Errorf("AddClipboardFormatListener failed: %w", err)
	}
	w.listening = true
	return nil
}

// Close removes the clipboard listener and destroys the window.
func (w *messageWindow) Close() error {
	if w.hwnd == 0 {
		return nil
	}
	var errs []error
	if w.listening {
		if r, _, err := removeClipboardFormatListener.Call(w.hwnd); r == 0 {
			errs = append(errs, fmt.Errorf("RemoveClipboardFormatListener failed: %w", err))
		}
		w.listening = false
	}

	windowsMu.Lock()
	delete(byHandle, w.hwnd)
	windowsMu.Unlock()

	if r, _, err := destroyWindow.Call(w.hwnd); r == 0 {
		errs = append(errs, fmt.Errorf("DestroyWindow failed: %w", err))
	}
	unregisterClass.Call(uintptr(unsafe.Pointer(w.class)), w.instance)
	w.hwnd = 0
	return errors.Join(errs...)
}
