package systray

import (
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"markestedt/clippath/events"
	"markestedt/clippath/paths"
	"markestedt/clippath/systray/icon"
	"markestedt/clippath/systray/menu"
)

// SystrayManager manages the system tray icon and menu. Clicks are posted
// to the message window as tray command events.
type SystrayManager struct {
	poster events.Poster

	mu    sync.Mutex
	ready bool
	state menu.State
	items map[menu.Command]*systray.MenuItem
	// iconReady tracks which icon variant is shown.
	iconReady bool
	// notice is a Notify that arrived before the tray was ready.
	notice string
	// stopping is set by a Stop that arrived before the tray was ready.
	stopping bool
}

// NewSystrayManager creates a new systray manager
func NewSystrayManager(poster events.Poster, initial menu.State) *SystrayManager {
	return &SystrayManager{
		poster: poster,
		state:  initial,
		items:  make(map[menu.Command]*systray.MenuItem),
	}
}

// Run starts the system tray (blocking call)
func (m *SystrayManager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop stops the system tray. A Stop before the tray is ready takes
// effect as soon as it is.
func (m *SystrayManager) Stop() {
	m.mu.Lock()
	ready := m.ready
	m.stopping = true
	m.mu.Unlock()
	if ready {
		systray.Quit()
	}
}

// Render shows s. Safe from any goroutine; state set before the tray is
// ready is applied once it is.
func (m *SystrayManager) Render(s menu.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	if m.ready {
		m.apply()
	}
}

// Notify shows a short message in the tooltip until the next Render.
func (m *SystrayManager) Notify(title, message string) {
	slog.Info(title, "message", message)
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready {
		m.notice = title + "\n" + message
		return
	}
	systray.SetTooltip(title + "\n" + message)
}

// onReady is called when the systray is ready
func (m *SystrayManager) onReady() {
	systray.SetIcon(icon.ICO(false))
	systray.SetTitle("ClipPath")

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopping {
		go systray.Quit()
		return
	}

	header := m.add(menu.CmdHeader, systray.AddMenuItem("ClipPath", "Paste clipboard images as file paths"))
	header.Disable()
	systray.AddSeparator()

	for _, mode := range []paths.Mode{paths.ModeWindows, paths.ModeWSL, paths.ModeAuto} {
		m.add(menu.ModeCommand(mode), systray.AddMenuItemCheckbox(menu.PathLabel(mode), "", false))
	}
	systray.AddSeparator()

	m.add(menu.CmdOpenFolder, systray.AddMenuItem("Open folder", "Open the folder saved images are written to"))
	m.add(menu.CmdCleanNow, systray.AddMenuItem(menu.CleanLabel(0), "Delete all saved images"))
	systray.AddSeparator()

	m.add(menu.CmdChangeShortcut, systray.AddMenuItem("Change shortcut...", "Press a new key combination"))
	m.add(menu.CmdSettings, systray.AddMenuItem("Settings...", "Open the settings page"))
	m.add(menu.CmdAutostart, systray.AddMenuItemCheckbox("Start with Windows", "", false))
	systray.AddSeparator()

	m.add(menu.CmdExit, systray.AddMenuItem("Exit", "Exit ClipPath"))

	m.ready = true
	m.apply()
	if m.notice != "" {
		systray.SetTooltip(m.notice)
		m.notice = ""
	}
	slog.Info("System tray ready")
}

// add forwards clicks on item as cmd events.
func (m *SystrayManager) add(cmd menu.Command, item *systray.MenuItem) *systray.MenuItem {
	m.items[cmd] = item
	go func() {
		for range item.ClickedCh {
			if err := m.poster.Post(cmd.Event()); err != nil {
				slog.Error("Failed to post tray command", "command", cmd, "error", err)
			}
		}
	}()
	return item
}

// apply pushes m.state into the menu. Caller holds m.mu.
func (m *SystrayManager) apply() {
	s := m.state

	for _, mode := range []paths.Mode{paths.ModeWindows, paths.ModeWSL, paths.ModeAuto} {
		setChecked(m.items[menu.ModeCommand(mode)], s.PathMode == mode)
	}
	setChecked(m.items[menu.CmdAutostart], s.Autostart)

	m.items[menu.CmdCleanNow].SetTitle(menu.CleanLabel(s.FileCount))
	m.items[menu.CmdChangeShortcut].SetTitle(s.ShortcutLabel())
	if s.Capturing {
		m.items[menu.CmdChangeShortcut].Disable()
	} else {
		m.items[menu.CmdChangeShortcut].Enable()
	}

	systray.SetTooltip(s.Tooltip())
	if s.ImageReady != m.iconReady {
		systray.SetIcon(icon.ICO(s.ImageReady))
		m.iconReady = s.ImageReady
	}
}

func setChecked(item *systray.MenuItem, checked bool) {
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}

// onExit is called when the systray is exiting
func (m *SystrayManager) onExit() {
	slog.Info("System tray exited")
}
