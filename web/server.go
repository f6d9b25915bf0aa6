package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"markestedt/clippath/capture"
	"markestedt/clippath/storage"
)

//go:embed static/*
var staticFiles embed.FS

// Host is the only interface the settings server listens on.
const Host = "127.0.0.1"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// Settings is the state shown on the settings page.
type Settings struct {
	Shortcut        string `json:"shortcut"`
	PathMode        string `json:"pathMode"`
	QuoteSpaces     bool   `json:"quoteSpaces"`
	CleanupSchedule string `json:"cleanupSchedule"`
	DailyHour       int    `json:"dailyHour"`
	Autostart       bool   `json:"autostart"`
	FileCount       int    `json:"fileCount"`
	HasImage        bool   `json:"hasImage"`
	Folder          string `json:"folder"`
}

// SettingsUpdate carries the fields a POST /api/config changes. Nil fields
// are left alone.
type SettingsUpdate struct {
	PathMode        *string `json:"pathMode"`
	QuoteSpaces     *bool   `json:"quoteSpaces"`
	CleanupSchedule *string `json:"cleanupSchedule"`
	DailyHour       *int    `json:"dailyHour"`
	Autostart       *bool   `json:"autostart"`
}

// Controller is the application as seen by the settings server. Calls
// arrive on HTTP goroutines.
type Controller interface {
	Settings() Settings
	UpdateSettings(u SettingsUpdate) error
	StartCapture() bool
	CaptureStatus() capture.Snapshot
	CancelCapture()
	Clean() int
	OpenFolder() error
}

// Server represents the web server
type Server struct {
	ctrl    Controller
	db      *storage.DB
	port    atomic.Int32
	hub     *Hub
	favicon []byte
}

// NewServer creates a new web server. db may be nil, in which case the
// history and stats endpoints report 503.
func NewServer(ctrl Controller, db *storage.DB, port int, favicon []byte) *Server {
	s := &Server{
		ctrl:    ctrl,
		db:      db,
		hub:     NewHub(),
		favicon: favicon,
	}
	s.port.Store(int32(port))
	return s
}

// URL is the address of the settings page. With port 0 it is only valid
// once Start is listening.
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s:%d/", Host, s.port.Load())
}

// Handler returns the routes served by Start.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shortcut/capture", s.handleStartCapture)
	mux.HandleFunc("/api/shortcut/status", s.handleCaptureStatus)
	mux.HandleFunc("/api/shortcut/cancel", s.handleCancelCapture)
	mux.HandleFunc("/api/clean", s.handleClean)
	mux.HandleFunc("/api/open-folder", s.handleOpenFolder)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/history/", s.handleHistory)
	mux.HandleFunc("/favicon.ico", s.handleFavicon)
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	return mux, nil
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(Host, fmt.Sprint(s.port.Load()))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		s.port.Store(int32(tcp.Port))
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Web server shutdown", "error", err)
		}
	}()

	slog.Info("Starting web server", "url", s.URL())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

// Broadcast pushes a message to every open settings page.
func (s *Server) Broadcast(msgType string, data any) {
	s.hub.BroadcastMessage(Message{Type: msgType, Data: data})
}

// BroadcastPaste broadcasts a new paste to all connected clients
func (s *Server) BroadcastPaste(p *storage.Paste) {
	s.Broadcast(MessageTypePaste, p)
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}
	s.hub.AddClient(conn)
}

// sameOrigin accepts pages served by this server and non-browser clients.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host
}
