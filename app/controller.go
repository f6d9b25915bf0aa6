package app

import (
	"errors"
	"fmt"
	"log/slog"

	"markestedt/clippath/capture"
	"markestedt/clippath/cleanup"
	"markestedt/clippath/paths"
	"markestedt/clippath/web"
)

// The web.Controller methods arrive on HTTP goroutines and hop onto the
// loop with Do. Once the loop has stopped they return zero values.

var _ web.Controller = (*App)(nil)

// settings runs on the loop.
func (a *App) settings() web.Settings {
	enabled, err := a.opts.Deps.Autostart.Enabled()
	if err != nil {
		slog.Debug("Autostart state unknown", "error", err)
	}
	return web.Settings{
		Shortcut:        a.registrar.Binding().String(),
		PathMode:        string(a.resolver.Mode()),
		QuoteSpaces:     a.cfg.Paths.QuoteSpaces,
		CleanupSchedule: a.cfg.Cleanup.Schedule,
		DailyHour:       a.cfg.Cleanup.DailyHour,
		Autostart:       enabled,
		FileCount:       a.opts.Store.Count(),
		HasImage:        a.monitor.HasImage(),
		Folder:          a.opts.Store.Dir(),
	}
}

func (a *App) Settings() web.Settings {
	var s web.Settings
	a.loop.Do(func() { s = a.settings() })
	return s
}

func (a *App) UpdateSettings(u web.SettingsUpdate) error {
	var err error
	if doErr := a.loop.Do(func() { err = a.updateSettings(u) }); doErr != nil {
		return doErr
	}
	return err
}

// updateSettings validates every field before changing anything.
func (a *App) updateSettings(u web.SettingsUpdate) error {
	next := *a.cfg
	var errs []error

	if u.PathMode != nil {
		m, err := paths.ParseMode(*u.PathMode)
		if err != nil {
			errs = append(errs, fmt.Errorf("pathMode: %w", err))
		}
		next.Paths.Mode = string(m)
	}
	if u.QuoteSpaces != nil {
		next.Paths.QuoteSpaces = *u.QuoteSpaces
	}
	if u.CleanupSchedule != nil {
		if !cleanup.Schedule(*u.CleanupSchedule).Valid() {
			errs = append(errs, fmt.Errorf("cleanupSchedule: unknown schedule %q", *u.CleanupSchedule))
		}
		next.Cleanup.Schedule = *u.CleanupSchedule
	}
	if u.DailyHour != nil {
		if *u.DailyHour < 0 || *u.DailyHour > 23 {
			errs = append(errs, fmt.Errorf("dailyHour: %d is not between 0 and 23", *u.DailyHour))
		}
		next.Cleanup.DailyHour = *u.DailyHour
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	if u.Autostart != nil {
		if err := a.opts.Deps.Autostart.Set(*u.Autostart); err != nil {
			return fmt.Errorf("autostart: %w", err)
		}
	}

	if next.Cleanup != a.cfg.Cleanup {
		if err := a.cleaner.Reschedule(cleanup.Schedule(next.Cleanup.Schedule), next.Cleanup.DailyHour); err != nil {
			return err
		}
	}
	a.resolver.SetMode(next.PathMode())
	*a.cfg = next

	if err := a.saveConfig(); err != nil {
		slog.Error("Failed to persist settings", "error", err)
	}
	slog.Info("Settings updated",
		"path_mode", a.cfg.Paths.Mode,
		"quote_spaces", a.cfg.Paths.QuoteSpaces,
		"cleanup", a.cfg.Cleanup.Schedule,
		"daily_hour", a.cfg.Cleanup.DailyHour,
	)
	a.render()
	return nil
}

func (a *App) StartCapture() bool {
	started := false
	a.loop.Do(func() {
		started = a.coordinator.TryStart(capture.SourceAPI)
		if started {
			a.render()
		}
	})
	return started
}

func (a *App) CaptureStatus() capture.Snapshot {
	snap := capture.Snapshot{Status: capture.Idle}
	a.loop.Do(func() { snap = a.coordinator.Status(capture.SourceAPI) })
	return snap
}

func (a *App) CancelCapture() {
	a.loop.Do(func() { a.coordinator.Cancel(capture.SourceAPI) })
}

func (a *App) Clean() int {
	removed := 0
	a.loop.Do(func() { removed = a.cleanNow() })
	return removed
}

func (a *App) OpenFolder() error {
	return a.openFolder()
}
