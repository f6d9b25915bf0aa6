package bitmap

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveDIB(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "clippath")
	s := NewStore(dir)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }

	first, err := s.SaveDIB(makeDIB(32, 0, 0, 4))
	require.NoError(t, err)
	second, err := s.SaveDIB(makeDIB(32, 0, 0, 4))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "clipboard-1700000000123-0.bmp"), first)
	assert.Equal(t, filepath.Join(dir, "clipboard-1700000000123-1.bmp"), second)
	assert.True(t, s.Exists(first))
	assert.Equal(t, 2, s.Count())

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "BM", string(data[:2]))
}

func TestStoreSaveRejectsBadDIB(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.SaveDIB([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrShortDIB)
	assert.Equal(t, 0, s.Count())
}

func TestStoreCleanAll(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	for i := 0; i < 3; i++ {
		_, err := s.SaveDIB(makeDIB(24, 0, 0, 4))
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0644))

	assert.Equal(t, 3, s.CleanAll())
	assert.Equal(t, 0, s.Count())
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
	assert.Equal(t, 0, s.CleanAll())
}

func TestStoreCleanOlderThan(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	now := time.Now()
	s.now = func() time.Time { return now }

	old, err := s.SaveDIB(makeDIB(32, 0, 0, 4))
	require.NoError(t, err)
	fresh, err := s.SaveDIB(makeDIB(32, 0, 0, 4))
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(old, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))

	assert.Equal(t, 1, s.CleanOlderThan(time.Hour))
	assert.False(t, s.Exists(old))
	assert.True(t, s.Exists(fresh))
}

func TestStoreMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent"))
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 0, s.CleanAll())
	assert.False(t, s.Exists(""))
}

func TestDefaultDir(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`clippath$`), DefaultDir())
}
