package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"markestedt/clippath/app"
	"markestedt/clippath/bitmap"
	"markestedt/clippath/config"
	"markestedt/clippath/hotkey"
	"markestedt/clippath/platform"
	"markestedt/clippath/storage"
	"markestedt/clippath/systray"
	"markestedt/clippath/systray/icon"
	"markestedt/clippath/systray/menu"
)

const instanceMutex = `Local\ClipPathSingleInstance`

var (
	hide       bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "clippath",
	Short: "Paste clipboard images as file paths",
	Long: `ClipPath sits in the system tray. Copy an image, press the shortcut
(Ctrl+Shift+V by default) and the image is saved as a BMP file whose path
is pasted into the focused window, converted to /mnt/... form for WSL
terminals.`,
	SilenceUsage: true,
	RunE:         runApp,
}

var shortcutCmd = &cobra.Command{
	Use:   "shortcut",
	Short: "Shortcut utilities",
}

var shortcutCheckCmd = &cobra.Command{
	Use:   "check <shortcut>",
	Short: "Validate a shortcut and print its canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := hotkey.Parse(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), b.String())
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete every saved image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := bitmap.NewStore(bitmap.DefaultDir())
		removed := store.CleanAll()
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d image(s) from %s\n", removed, store.Dir())
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration utilities",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVar(&hide, "hide", false, "Start without the startup notification")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml (default %APPDATA%\\clippath\\config.toml)")

	shortcutCmd.AddCommand(shortcutCheckCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(shortcutCmd, cleanCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return filepath.Abs(configPath)
	}
	return config.Path()
}

// setupLogging writes to stdout and a rotating file next to the config.
func setupLogging(dir string, level *slog.LevelVar) io.Closer {
	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "clippath.log"),
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28,
	}
	logger := slog.New(slog.NewTextHandler(io.MultiWriter(os.Stdout, logFile), &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logFile
}

func runApp(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}

	level := new(slog.LevelVar)
	logs := setupLogging(filepath.Dir(path), level)
	defer logs.Close()

	lock, err := platform.TryLock(instanceMutex)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		slog.Info("ClipPath is already running")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	defer lock.Release()

	// Load configuration
	cfg, err := config.LoadFrom(path)
	if err != nil {
		slog.Error("Failed to load config", "path", path, "error", err)
		return err
	}
	level.Set(app.ParseLevel(cfg.Log.Level))
	slog.Info("Configuration loaded", "path", path)

	db, err := storage.Open(filepath.Dir(path))
	if err != nil {
		slog.Warn("History disabled", "error", err)
		db = nil
	} else {
		defer db.Close()
	}

	a, err := app.New(app.Options{
		Config:     cfg,
		ConfigPath: path,
		Store:      bitmap.NewStore(bitmap.DefaultDir()),
		DB:         db,
		Deps:       app.SystemDeps(),
		Favicon:    icon.ICO(false),
		Hide:       hide,
		LogLevel:   level,
	})
	if err != nil {
		return err
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The tray owns the main goroutine; the app runs beside it and
	// stops the tray when it exits.
	tray := systray.NewSystrayManager(a, menu.State{Shortcut: cfg.Shortcut, PathMode: cfg.PathMode()})
	a.SetTray(tray)

	runErr := make(chan error, 1)
	go func() {
		runErr <- a.Run(ctx)
		tray.Stop()
	}()
	tray.Run()
	cancel()

	if err := <-runErr; err != nil {
		slog.Error("ClipPath error", "error", err)
		return err
	}
	return nil
}
