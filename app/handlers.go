package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"markestedt/clippath/capture"
	"markestedt/clippath/cleanup"
	"markestedt/clippath/clipboard"
	"markestedt/clippath/config"
	"markestedt/clippath/hotkey"
	"markestedt/clippath/paths"
	"markestedt/clippath/storage"
	"markestedt/clippath/systray/menu"
	"markestedt/clippath/web"
)

// The handlers in this file run on the loop.

func (a *App) onHotkey() {
	if a.coordinator != nil && a.coordinator.Capturing() {
		return
	}
	err := a.paster.HandlePress()
	// Render replaces the tooltip, so it must come before any notice.
	a.render()
	switch {
	case errors.Is(err, clipboard.ErrNoImage):
		a.notify("ClipPath", "No image on the clipboard. Copy an image first.")
	case err != nil:
		slog.Error("Hotkey paste failed", "error", err)
		a.notify("ClipPath", "Paste failed: "+err.Error())
	}
}

func (a *App) onImageChange(hasImage bool) {
	a.render()
	a.server.Broadcast(web.MessageTypeClipboard, map[string]bool{"hasImage": hasImage})
}

func (a *App) bindCommands() {
	for _, mode := range []paths.Mode{paths.ModeWindows, paths.ModeWSL, paths.ModeAuto} {
		a.dispatcher.On(menu.ModeCommand(mode), func() { a.setPathMode(mode) })
	}
	a.dispatcher.On(menu.CmdOpenFolder, func() {
		if err := a.openFolder(); err != nil {
			slog.Error("Failed to open folder", "error", err)
		}
	})
	a.dispatcher.On(menu.CmdCleanNow, func() {
		removed := a.cleanNow()
		a.notify("ClipPath", cleanMessage(removed))
	})
	a.dispatcher.On(menu.CmdChangeShortcut, func() {
		if a.coordinator.TryStart(capture.SourceMenu) {
			a.render()
		}
	})
	a.dispatcher.On(menu.CmdSettings, func() {
		if a.opts.Deps.OpenURL == nil {
			return
		}
		if err := a.opts.Deps.OpenURL(a.server.URL()); err != nil {
			slog.Error("Failed to open settings page", "url", a.server.URL(), "error", err)
		}
	})
	a.dispatcher.On(menu.CmdAutostart, func() {
		enabled, _ := a.opts.Deps.Autostart.Enabled()
		if err := a.opts.Deps.Autostart.Set(!enabled); err != nil {
			slog.Error("Failed to change autostart", "error", err)
		}
		a.render()
		a.server.Broadcast(web.MessageTypeSettings, a.settings())
	})
	a.dispatcher.On(menu.CmdExit, func() {
		slog.Info("Exit requested from tray")
		a.Stop()
	})
}

func (a *App) notify(title, message string) {
	if a.tray != nil {
		a.tray.Notify(title, message)
	}
}

func cleanMessage(removed int) string {
	switch removed {
	case 0:
		return "No saved images to clean."
	case 1:
		return "Deleted 1 saved image."
	}
	return fmt.Sprintf("Deleted %d saved images.", removed)
}

func (a *App) setPathMode(mode paths.Mode) {
	if a.resolver.Mode() == mode {
		return
	}
	a.resolver.SetMode(mode)
	a.cfg.Paths.Mode = string(mode)
	if err := a.saveConfig(); err != nil {
		slog.Error("Failed to persist path mode", "error", err)
	}
	slog.Info("Path mode changed", "mode", mode)
	a.render()
	a.server.Broadcast(web.MessageTypeSettings, a.settings())
}

func (a *App) openFolder() error {
	if a.opts.Deps.OpenFolder == nil {
		return errors.New("opening folders is not available")
	}
	return a.opts.Deps.OpenFolder(a.opts.Store.Dir())
}

// cleanNow deletes every saved image on request.
func (a *App) cleanNow() int {
	removed := a.opts.Store.CleanAll()
	a.paster.ClearCache()
	slog.Info("Cleaned saved images", "removed", removed)
	a.recordCleanup("manual", removed)
	a.render()
	return removed
}

func (a *App) onAutoClean(removed int) {
	if removed > 0 {
		a.paster.ClearCache()
	}
	a.recordCleanup(string(a.cleaner.Schedule()), removed)
	a.render()
}

func (a *App) recordCleanup(reason string, removed int) {
	if a.opts.DB != nil {
		if err := a.opts.DB.SaveCleanup(reason, removed); err != nil {
			slog.Warn("Failed to record cleanup", "error", err)
		}
	}
	a.server.Broadcast(web.MessageTypeCleanup, map[string]any{
		"reason":    reason,
		"removed":   removed,
		"fileCount": a.opts.Store.Count(),
	})
}

// persistShortcut saves a binding captured by the coordinator.
func (a *App) persistShortcut(b hotkey.Binding) error {
	a.cfg.Shortcut = b.String()
	return a.saveConfig()
}

func (a *App) onCaptureFinish(src capture.Source, snap capture.Snapshot) {
	if a.opts.DB != nil {
		err := a.opts.DB.SaveShortcutChange(&storage.ShortcutChange{
			Source:   src.String(),
			Status:   snap.Status.String(),
			Shortcut: snap.Shortcut,
			Previous: snap.Previous,
		})
		if err != nil {
			slog.Warn("Failed to record shortcut change", "error", err)
		}
	}

	a.render()
	if src == capture.SourceMenu {
		a.notify("ClipPath", captureMessage(snap, a.registrar.Binding()))
	}
	a.server.Broadcast(web.MessageTypeCapture, map[string]any{
		"source":   src.String(),
		"status":   snap.Status,
		"shortcut": a.registrar.Binding().String(),
	})
}

func captureMessage(snap capture.Snapshot, current hotkey.Binding) string {
	switch snap.Status {
	case capture.Done:
		return "Shortcut changed to " + snap.Shortcut
	case capture.Failed:
		return "That shortcut is in use by another application. Keeping " + current.String()
	}
	if snap.Reason == "timeout" {
		return "No shortcut pressed. Keeping " + current.String()
	}
	return "Shortcut change cancelled. Keeping " + current.String()
}

// applyConfig brings the running app in line with an edited config file.
func (a *App) applyConfig(cfg *config.Config) {
	old := *a.cfg

	if cfg.PathMode() != a.resolver.Mode() {
		a.resolver.SetMode(cfg.PathMode())
		slog.Info("Path mode changed", "mode", cfg.PathMode())
	}
	a.cfg.Paths = cfg.Paths

	if cfg.Cleanup != old.Cleanup {
		if err := a.cleaner.Reschedule(cleanup.Schedule(cfg.Cleanup.Schedule), cfg.Cleanup.DailyHour); err != nil {
			slog.Warn("Failed to reschedule cleanup", "error", err)
		} else {
			a.cfg.Cleanup = cfg.Cleanup
		}
	}

	if b := cfg.Binding(); b != a.registrar.Binding() && !a.coordinator.Capturing() {
		previous := a.registrar.Binding()
		if a.registrar.Reregister(b) {
			a.cfg.Shortcut = b.String()
			slog.Info("Shortcut changed from config", "shortcut", b.String())
		} else {
			slog.Warn("Shortcut from config unavailable", "shortcut", b.String())
			if !previous.IsZero() && !a.registrar.Reregister(previous) {
				slog.Error("Failed to restore previous shortcut", "shortcut", previous.String())
			}
		}
	}

	if !strings.EqualFold(cfg.Log.Level, old.Log.Level) {
		a.cfg.Log.Level = cfg.Log.Level
		if a.opts.LogLevel != nil {
			a.opts.LogLevel.Set(ParseLevel(cfg.Log.Level))
		}
	}

	a.render()
	a.server.Broadcast(web.MessageTypeSettings, a.settings())
}

// ParseLevel maps a config log level to slog, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
