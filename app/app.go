// Package app wires the message window, hotkey, capture sessions, paste
// pipeline, cleanup timer and settings server into one running program.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"markestedt/clippath/autostart"
	"markestedt/clippath/bitmap"
	"markestedt/clippath/capture"
	"markestedt/clippath/cleanup"
	"markestedt/clippath/clipboard"
	"markestedt/clippath/config"
	"markestedt/clippath/events"
	"markestedt/clippath/hotkey"
	"markestedt/clippath/loop"
	"markestedt/clippath/paths"
	"markestedt/clippath/platform"
	"markestedt/clippath/postprocess"
	"markestedt/clippath/storage"
	"markestedt/clippath/systray/menu"
	"markestedt/clippath/web"
)

// Tray is the notification area icon.
type Tray interface {
	Render(s menu.State)
	Notify(title, message string)
}

// Autostart toggles launching at login.
type Autostart interface {
	Enabled() (bool, error)
	Set(enabled bool) error
}

// SystemAutostart uses the current user's Run key.
type SystemAutostart struct{}

func (SystemAutostart) Enabled() (bool, error) { return autostart.Enabled() }

func (SystemAutostart) Set(enabled bool) error { return autostart.Set(enabled) }

// Deps are the operating system facilities the app drives.
type Deps struct {
	// NewWindow is called on the loop thread, which then owns the window.
	NewWindow  func() (platform.Window, error)
	Clipboard  platform.Clipboard
	Keyboard   platform.Keyboard
	Input      platform.Paster
	Autostart  Autostart
	OpenFolder func(dir string) error
	OpenURL    func(url string) error
}

// SystemDeps returns the real platform implementations.
func SystemDeps() Deps {
	return Deps{
		NewWindow:  platform.NewWindow,
		Clipboard:  platform.NewClipboard(),
		Keyboard:   platform.NewKeyboard(),
		Input:      platform.NewPaster(),
		Autostart:  SystemAutostart{},
		OpenFolder: platform.OpenFolder,
		OpenURL:    platform.OpenURL,
	}
}

// Options configures an App.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Store      *bitmap.Store
	// DB records history. May be nil.
	DB      *storage.DB
	Deps    Deps
	Favicon []byte
	// Hide suppresses the startup notice.
	Hide bool
	// LogLevel is adjusted when the config file changes. May be nil.
	LogLevel LevelSetter
}

// LevelSetter is satisfied by *slog.LevelVar.
type LevelSetter interface {
	Set(l slog.Level)
}

// App coordinates hotkey detection, clipboard images and path pasting
type App struct {
	opts   Options
	cfg    *config.Config
	loop   *loop.Loop
	server *web.Server
	tray   Tray
	cancel context.CancelFunc

	posterMu sync.Mutex
	poster   events.Poster

	// Owned by the loop goroutine once setup has run.
	window      platform.Window
	bus         *events.Bus
	pump        *events.Pump
	registrar   *hotkey.Registrar
	coordinator *capture.Coordinator
	resolver    *paths.Resolver
	monitor     *clipboard.Monitor
	paster      *clipboard.Paster
	cleaner     *cleanup.Scheduler
	dispatcher  *menu.Dispatcher
}

// New creates an App. Nothing touches the system until Run.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Store == nil {
		opts.Store = bitmap.NewStore(bitmap.DefaultDir())
	}
	if opts.Deps.NewWindow == nil {
		return nil, errors.New("a window factory is required")
	}
	if opts.Deps.Autostart == nil {
		opts.Deps.Autostart = SystemAutostart{}
	}

	cfg := *opts.Config
	a := &App{
		opts: opts,
		cfg:  &cfg,
		loop: loop.New(),
	}
	a.server = web.NewServer(a, opts.DB, cfg.Web.Port, opts.Favicon)
	return a, nil
}

// SetTray attaches the tray icon. Call before Run.
func (a *App) SetTray(t Tray) {
	a.tray = t
}

// Server returns the settings server.
func (a *App) Server() *web.Server {
	return a.server
}

// Run starts the app and blocks until ctx is cancelled, Exit is chosen
// from the tray, or startup fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.cancel = cancel

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.loop.Run(gctx, a.setup, a.teardown)
	})

	g.Go(func() error {
		if err := a.server.Start(gctx); err != nil {
			slog.Error("Settings server unavailable", "error", err)
		}
		return nil
	})

	if a.opts.ConfigPath != "" {
		g.Go(func() error {
			err := config.Watch(gctx, a.opts.ConfigPath, func(cfg *config.Config) {
				a.loop.Post(func() { a.applyConfig(cfg) })
			})
			if err != nil {
				slog.Warn("Config watcher stopped", "error", err)
			}
			return nil
		})
	}

	// The loop exiting for any reason stops the rest.
	g.Go(func() error {
		<-a.loop.Done()
		cancel()
		return nil
	})

	return g.Wait()
}

// Post queues ev on the message window. Safe from any goroutine.
func (a *App) Post(ev events.Event) error {
	a.posterMu.Lock()
	p := a.poster
	a.posterMu.Unlock()
	if p == nil {
		return errors.New("message window not ready")
	}
	return p.Post(ev)
}

func (a *App) setPoster(p events.Poster) {
	a.posterMu.Lock()
	a.poster = p
	a.posterMu.Unlock()
}

// Stop asks Run to return.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
}

// setup runs on the loop thread before any other loop work.
func (a *App) setup() error {
	win, err := a.opts.Deps.NewWindow()
	if err != nil {
		return fmt.Errorf("failed to create message window: %w", err)
	}
	a.window = win
	a.setPoster(win)

	a.bus = events.NewBus()
	a.bus.Register(a.onDestroy)
	a.pump = events.NewPump(win, a.bus, a.loop)

	a.registrar = hotkey.NewRegistrar(win, a.bus)
	a.registrar.OnPress(a.onHotkey)

	a.monitor = clipboard.NewMonitor(a.opts.Deps.Clipboard, a.bus)
	a.monitor.OnChange(a.onImageChange)
	if err := win.ListenClipboard(); err != nil {
		slog.Warn("Clipboard monitor unavailable", "error", err)
	}
	a.monitor.Check()

	a.resolver = paths.NewResolver(a.cfg.PathMode(), a.opts.Deps.Keyboard.ForegroundTitle)
	a.paster = clipboard.NewPaster(clipboard.Options{
		Monitor:   a.monitor,
		Clipboard: a.opts.Deps.Clipboard,
		Keyboard:  a.opts.Deps.Keyboard,
		Input:     a.opts.Deps.Input,
		Store:     a.opts.Store,
		Pipeline: postprocess.NewPipeline(
			postprocess.TerminalPath(a.resolver),
			postprocess.QuoteSpaces(func() bool { return a.cfg.Paths.QuoteSpaces }),
		),
		Binding:  a.registrar.Binding,
		Recorder: &pasteRecorder{db: a.opts.DB, server: a.server},
	})

	a.dispatcher = menu.NewDispatcher(a.bus)
	a.bindCommands()

	binding := a.cfg.Binding()
	if !a.registrar.Register(binding) {
		a.setPoster(nil)
		win.Close()
		return fmt.Errorf("failed to register shortcut %s: it may be in use by another application", binding)
	}

	a.coordinator = capture.NewCoordinator(capture.Options{
		Registrar: a.registrar,
		Keys:      capture.KeyFunc(a.opts.Deps.Keyboard.IsDown),
		Scheduler: a.loop,
		OnChange:  a.persistShortcut,
		OnFinish:  a.onCaptureFinish,
	})

	a.cleaner = cleanup.NewScheduler(a.loop, a.opts.Store, time.Now)
	a.cleaner.OnClean(a.onAutoClean)
	if err := a.cleaner.Reschedule(cleanup.Schedule(a.cfg.Cleanup.Schedule), a.cfg.Cleanup.DailyHour); err != nil {
		slog.Warn("Auto-clean disabled", "error", err)
	}

	a.pump.Start()
	a.render()

	slog.Info("ClipPath started", "shortcut", binding.String(), "path_mode", a.resolver.Mode(),
		"cleanup", a.cfg.Cleanup.Schedule, "images", a.opts.Store.Dir())
	if !a.opts.Hide && a.tray != nil {
		a.tray.Notify("ClipPath", fmt.Sprintf("Running in the system tray. Copy an image and press %s to paste its path.", binding))
	}
	return nil
}

// onDestroy stops the app when the message window goes away underneath it.
func (a *App) onDestroy(ev events.Event) (uintptr, bool) {
	if ev.Code != events.CodeDestroy {
		return 0, false
	}
	slog.Warn("Message window destroyed, shutting down")
	a.Stop()
	return 0, true
}

// teardown runs on the loop thread after ctx is cancelled.
func (a *App) teardown() {
	if a.coordinator != nil && a.coordinator.Capturing() {
		a.coordinator.Cancel(capture.SourceMenu)
		a.coordinator.Cancel(capture.SourceAPI)
	}
	a.cleaner.Stop()
	a.pump.Stop()
	a.registrar.Unregister()
	a.setPoster(nil)
	if err := a.window.Close(); err != nil {
		slog.Warn("Failed to close message window", "error", err)
	}
	slog.Info("ClipPath stopped")
}

// saveConfig writes the live config. Runs on the loop.
func (a *App) saveConfig() error {
	if a.opts.ConfigPath == "" {
		return nil
	}
	if err := a.cfg.Save(a.opts.ConfigPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// trayState snapshots what the tray shows. Runs on the loop.
func (a *App) trayState() menu.State {
	enabled, err := a.opts.Deps.Autostart.Enabled()
	if err != nil {
		slog.Debug("Autostart state unknown", "error", err)
	}
	return menu.State{
		PathMode:   a.resolver.Mode(),
		FileCount:  a.opts.Store.Count(),
		ImageReady: a.monitor.HasImage(),
		Autostart:  enabled,
		Shortcut:   a.registrar.Binding().String(),
		Capturing:  a.coordinator != nil && a.coordinator.Capturing(),
	}
}

func (a *App) render() {
	if a.tray != nil {
		a.tray.Render(a.trayState())
	}
}

// pasteRecorder stores each paste and pushes it to open settings pages.
type pasteRecorder struct {
	db     *storage.DB
	server *web.Server
}

func (r *pasteRecorder) SavePaste(p *storage.Paste) error {
	if r.db != nil {
		if err := r.db.SavePaste(p); err != nil {
			return err
		}
	}
	r.server.BroadcastPaste(p)
	return nil
}
