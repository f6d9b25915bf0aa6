package bitmap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultDir is where saved images live: %TEMP%\clippath.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "clippath")
}

// Store saves bitmaps into a single directory and cleans them up.
type Store struct {
	dir string
	now func() time.Time

	mu      sync.Mutex
	counter int
}

// NewStore creates a store rooted at dir. The directory is created on the
// first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// SaveDIB converts dib to BMP and writes it under a unique name.
func (s *Store) SaveDIB(dib []byte) (string, error) {
	data, err := DIBToBMP(dib)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	s.mu.Lock()
	n := s.counter
	s.counter++
	s.mu.Unlock()

	name := fmt.Sprintf("clipboard-%d-%d.bmp", s.now().UnixMilli(), n)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

// CleanAll deletes every saved image and returns how many were removed.
func (s *Store) CleanAll() int {
	return s.clean(func(os.FileInfo) bool { return true })
}

// CleanOlderThan deletes images last modified more than age ago.
func (s *Store) CleanOlderThan(age time.Duration) int {
	cutoff := s.now().Add(-age)
	return s.clean(func(info os.FileInfo) bool { return info.ModTime().Before(cutoff) })
}

// Count returns the number of saved images.
func (s *Store) Count() int {
	return len(s.images())
}

// Exists reports whether path is still on disk.
func (s *Store) Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) clean(match func(os.FileInfo) bool) int {
	removed := 0
	for _, entry := range s.images() {
		info, err := entry.Info()
		if err != nil || !match(info) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			slog.Debug("Failed to remove image", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed
}

func (s *Store) images() []os.DirEntry {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	out := entries[:0]
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".bmp") {
			out = append(out, e)
		}
	}
	return out
}
