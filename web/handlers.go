package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"markestedt/clippath/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var okResponse = map[string]bool{"ok": true}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// handleConfig handles GET and POST requests for configuration
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.ctrl.Settings())
	case http.MethodPost:
		s.handlePostConfig(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePostConfig updates the configuration
func (s *Server) handlePostConfig(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.ctrl.UpdateSettings(req); err != nil {
		slog.Warn("Rejected settings update", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.Broadcast(MessageTypeSettings, s.ctrl.Settings())
	writeJSON(w, http.StatusOK, okResponse)
}

func (s *Server) handleStartCapture(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if !s.ctrl.StartCapture() {
		writeError(w, http.StatusConflict, "Capture already in progress")
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}

// handleCaptureStatus reports the API session. Terminal statuses are
// returned once, then the session reads as idle.
func (s *Server) handleCaptureStatus(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.CaptureStatus())
}

func (s *Server) handleCancelCapture(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s.ctrl.CancelCapture()
	writeJSON(w, http.StatusOK, okResponse)
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	removed := s.ctrl.Clean()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleOpenFolder(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if err := s.ctrl.OpenFolder(); err != nil {
		slog.Error("Failed to open folder", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to open folder")
		return
	}
	writeJSON(w, http.StatusOK, okResponse)
}

func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	if len(s.favicon) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/x-icon")
	w.Header().Set("Cache-Control", "max-age=86400")
	w.Write(s.favicon)
}

// handleStats returns statistics for the specified time range
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "History is disabled")
		return
	}

	days := queryInt(r, "days", 7, 1)

	overall, err := s.db.GetOverallStats(days)
	if err != nil {
		slog.Error("Failed to get overall stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	daily, err := s.db.GetDailyStats(days)
	if err != nil {
		slog.Error("Failed to get daily stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"overall": overall,
		"daily":   daily,
	})
}

// handleHistory handles GET and DELETE requests for paste history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "History is disabled")
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.handleGetHistory(w, r)
	case http.MethodDelete:
		s.handleDeleteHistory(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetHistory returns paginated paste history and recent shortcut
// changes
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50, 1)
	offset := queryInt(r, "offset", 0, 0)

	pastes, err := s.db.GetPastes(limit, offset)
	if err != nil {
		slog.Error("Failed to get pastes", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	total, err := s.db.GetPasteCount()
	if err != nil {
		slog.Error("Failed to get paste count", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	changes, err := s.db.GetShortcutChanges(20)
	if err != nil {
		slog.Error("Failed to get shortcut changes", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	if pastes == nil {
		pastes = []storage.Paste{}
	}
	if changes == nil {
		changes = []storage.ShortcutChange{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pastes":           pastes,
		"shortcut_changes": changes,
		"total":            total,
		"limit":            limit,
		"offset":           offset,
	})
}

// handleDeleteHistory deletes a paste by ID
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	// Extract ID from path (e.g., /api/history/123)
	idStr := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if idStr == r.URL.Path || idStr == "" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if err := s.db.DeletePaste(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Paste not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to delete paste", "error", err, "id", id)
		http.Error(w, "Failed to delete paste", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, okResponse)
}

// queryInt reads an integer query parameter, falling back to def when it
// is missing, malformed or below floor.
func queryInt(r *http.Request, name string, def, floor int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < floor {
		return def
	}
	return n
}
