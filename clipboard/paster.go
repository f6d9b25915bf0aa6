package clipboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"markestedt/clippath/bitmap"
	"markestedt/clippath/hotkey"
	"markestedt/clippath/platform"
	"markestedt/clippath/postprocess"
	"markestedt/clippath/storage"
)

// ReleaseTimeout bounds how long a paste waits for the hotkey to be let go.
const ReleaseTimeout = 2 * time.Second

// ErrNoImage is reported when there is neither a new image nor a cached file.
var ErrNoImage = errors.New("no image available")

// Recorder persists paste history.
type Recorder interface {
	SavePaste(p *storage.Paste) error
}

// Options wires a Paster to its collaborators.
type Options struct {
	Monitor   *Monitor
	Clipboard platform.Clipboard
	Keyboard  platform.Keyboard
	Input     platform.Paster
	Store     *bitmap.Store
	Pipeline  *postprocess.Pipeline
	// Binding returns the current hotkey so its keys can be waited on.
	Binding  func() hotkey.Binding
	Recorder Recorder
	// Go runs the injection off the loop. Defaults to a new goroutine.
	Go  func(fn func())
	Now func() time.Time
}

// Paster turns a hotkey press into a pasted path. The last saved image is
// cached so repeated presses paste the same file until a new image arrives
// or the file is cleaned up.
type Paster struct {
	opts Options

	mu     sync.Mutex
	cached string

	injectMu sync.Mutex
}

// NewPaster creates a Paster.
func NewPaster(opts Options) *Paster {
	if opts.Go == nil {
		opts.Go = func(fn func()) { go fn() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Pipeline == nil {
		opts.Pipeline = postprocess.NewPipeline()
	}
	return &Paster{opts: opts}
}

// Cached returns the path of the image the next press will paste.
func (p *Paster) Cached() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cached
}

// ClearCache forgets the cached image, e.g. after its file was cleaned up.
func (p *Paster) ClearCache() {
	p.mu.Lock()
	p.cached = ""
	p.mu.Unlock()
}

// HandlePress runs on the loop for each hotkey press. It saves a new image
// when one is on the clipboard, converts the cached path and hands the
// injection to Go.
func (p *Paster) HandlePress() error {
	start := p.opts.Now()
	newImage := false
	var size int64

	if p.opts.Monitor.HasImage() {
		path, n, err := p.saveClipboardImage()
		if err != nil {
			slog.Error("Failed to save clipboard image", "error", err)
		} else if path != "" {
			p.mu.Lock()
			p.cached = path
			p.mu.Unlock()
			newImage = true
			size = n
			slog.Info("Saved clipboard image", "path", path, "bytes", n)
		}
	}

	path := p.Cached()
	if path == "" || !p.opts.Store.Exists(path) {
		p.ClearCache()
		slog.Info("No image available")
		return ErrNoImage
	}

	res, err := p.opts.Pipeline.Process(context.Background(), path)
	if err != nil {
		return fmt.Errorf("failed to convert path: %w", err)
	}

	rec := &storage.Paste{
		ImagePath:  path,
		ImageBytes: size,
		NewImage:   newImage,
		PastedText: res.Text,
		PathStyle:  pathStyle(res),
	}
	binding := hotkey.Binding{}
	if p.opts.Binding != nil {
		binding = p.opts.Binding()
	}
	p.opts.Go(func() { p.inject(rec, binding, start) })
	return nil
}

func (p *Paster) saveClipboardImage() (string, int64, error) {
	dib, err := p.opts.Clipboard.ReadDIB()
	if err != nil {
		return "", 0, fmt.Errorf("failed to read clipboard: %w", err)
	}
	if dib == nil {
		return "", 0, nil
	}
	path, err := p.opts.Store.SaveDIB(dib)
	if err != nil {
		return "", 0, err
	}
	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	return path, size, nil
}

// inject types the text into the focused window through the clipboard.
func (p *Paster) inject(rec *storage.Paste, binding hotkey.Binding, start time.Time) {
	p.injectMu.Lock()
	defer p.injectMu.Unlock()

	err := p.paste(rec.PastedText, binding)
	rec.LatencyMs = p.opts.Now().Sub(start).Milliseconds()
	rec.Success = err == nil
	if err != nil {
		rec.ErrorMessage = err.Error()
		slog.Error("Paste failed", "text", rec.PastedText, "error", err)
	} else {
		slog.Info("Pasted path", "text", rec.PastedText, "latency_ms", rec.LatencyMs)
	}

	if p.opts.Recorder != nil {
		if err := p.opts.Recorder.SavePaste(rec); err != nil {
			slog.Warn("Failed to record paste", "error", err)
		}
	}
}

func (p *Paster) paste(text string, binding hotkey.Binding) error {
	if text == "" {
		return nil
	}
	if !p.opts.Keyboard.WaitForRelease(ReleaseTimeout, releaseKeys(binding)...) {
		slog.Warn("Hotkey still held after timeout", "timeout", ReleaseTimeout)
	}
	if err := p.opts.Clipboard.SetText(text); err != nil {
		return fmt.Errorf("failed to set clipboard text: %w", err)
	}
	if err := p.opts.Input.Paste(); err != nil {
		return fmt.Errorf("failed to send paste: %w", err)
	}
	return nil
}

// releaseKeys lists the keys that must be up before Ctrl+V is injected.
func releaseKeys(b hotkey.Binding) []hotkey.Key {
	keys := []hotkey.Key{platform.VKCtrl, platform.VKShift, platform.VKAlt}
	if b.Key != 0 {
		keys = append(keys, b.Key)
	} else {
		keys = append(keys, hotkey.KeyV)
	}
	return keys
}

func pathStyle(res postprocess.Result) string {
	if res.ChangedBy(postprocess.StepTerminalPath) {
		return "wsl"
	}
	return "windows"
}
