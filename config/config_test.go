package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/clippath/hotkey"
	"markestedt/clippath/paths"
)

func TestLoadFromCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.FileExists(t, path)

	again, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadFromKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
shortcut = "shift + ctrl + f9"

[paths]
mode = "WSL"
`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "Ctrl+Shift+F9", cfg.Shortcut)
	assert.Equal(t, paths.ModeWSL, cfg.PathMode())
	assert.Equal(t, "1h", cfg.Cleanup.Schedule)
	assert.Equal(t, DefaultPort, cfg.Web.Port)
	assert.Equal(t, hotkey.MustParse("Ctrl+Shift+F9"), cfg.Binding())
}

func TestLoadFromRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
shortcut = "V"

[cleanup]
schedule = "weekly"
daily_hour = 25
`), 0644))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, hotkey.ErrInvalidShortcut)
	assert.Contains(t, err.Error(), "cleanup.schedule")
	assert.Contains(t, err.Error(), "cleanup.daily_hour")
}

func TestLoadFromRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("shortcut = "), 0644))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "failed to decode config")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Default()
	cfg.Shortcut = "Alt+PgUp"
	cfg.Paths.QuoteSpaces = true
	cfg.Cleanup.Schedule = "daily"
	cfg.Cleanup.DailyHour = 5
	require.NoError(t, cfg.Save(path))
	assert.NoFileExists(t, path+".tmp")

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad mode", func(c *Config) { c.Paths.Mode = "linux" }, "paths.mode"},
		{"bad port", func(c *Config) { c.Web.Port = 0 }, "web.port"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"negative hour", func(c *Config) { c.Cleanup.DailyHour = -1 }, "cleanup.daily_hour"},
		{"off schedule", func(c *Config) { c.Cleanup.Schedule = "off" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestWatchReloadsOnEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Default().Save(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		seen []*Config
	)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) {
			mu.Lock()
			seen = append(seen, c)
			mu.Unlock()
		})
	}()

	// Give the watcher time to subscribe before editing.
	time.Sleep(100 * time.Millisecond)
	edited := Default()
	edited.Paths.Mode = "windows"
	require.NoError(t, edited.Save(path))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "windows", seen[len(seen)-1].Paths.Mode)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
