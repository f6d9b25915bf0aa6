package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPastesRoundTrip(t *testing.T) {
	db := openTestDB(t)

	first := &Paste{ImagePath: `C:\Temp\clippath\a.bmp`, ImageBytes: 1024, NewImage: true,
		PastedText: "/mnt/c/Temp/clippath/a.bmp", PathStyle: "wsl", LatencyMs: 40, Success: true}
	second := &Paste{ImagePath: `C:\Temp\clippath\a.bmp`, PastedText: "", PathStyle: "windows",
		LatencyMs: 2000, Success: false, ErrorMessage: "SendInput failed"}
	require.NoError(t, db.SavePaste(first))
	require.NoError(t, db.SavePaste(second))
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	pastes, err := db.GetPastes(10, 0)
	require.NoError(t, err)
	require.Len(t, pastes, 2)
	assert.Equal(t, second.ID, pastes[0].ID)
	assert.Equal(t, "SendInput failed", pastes[0].ErrorMessage)
	assert.False(t, pastes[0].Success)
	assert.True(t, pastes[1].NewImage)
	assert.Equal(t, "/mnt/c/Temp/clippath/a.bmp", pastes[1].PastedText)
	assert.False(t, pastes[1].Timestamp.IsZero())

	page, err := db.GetPastes(1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	count, err := db.GetPasteCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDeletePaste(t *testing.T) {
	db := openTestDB(t)
	p := &Paste{ImagePath: "x", PathStyle: "windows", Success: true}
	require.NoError(t, db.SavePaste(p))

	require.NoError(t, db.DeletePaste(p.ID))
	assert.ErrorIs(t, db.DeletePaste(p.ID), ErrNotFound)
}

func TestShortcutChanges(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveShortcutChange(&ShortcutChange{Source: "menu", Status: "cancelled", Previous: "Ctrl+Shift+V"}))
	require.NoError(t, db.SaveShortcutChange(&ShortcutChange{Source: "api", Status: "done", Previous: "Ctrl+Shift+V", Shortcut: "Alt+F9"}))

	changes, err := db.GetShortcutChanges(5)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "Alt+F9", changes[0].Shortcut)
	assert.Equal(t, "menu", changes[1].Source)
}

func TestOverallStats(t *testing.T) {
	db := openTestDB(t)

	empty, err := db.GetOverallStats(7)
	require.NoError(t, err)
	assert.Equal(t, OverallStats{}, *empty)

	require.NoError(t, db.SavePaste(&Paste{ImagePath: "a", ImageBytes: 100, NewImage: true, PathStyle: "wsl", LatencyMs: 10, Success: true}))
	require.NoError(t, db.SavePaste(&Paste{ImagePath: "a", ImageBytes: 100, PathStyle: "windows", LatencyMs: 30, Success: true}))
	require.NoError(t, db.SavePaste(&Paste{ImagePath: "b", PathStyle: "windows", LatencyMs: 20, Success: false}))
	require.NoError(t, db.SaveShortcutChange(&ShortcutChange{Source: "api", Status: "done", Shortcut: "F8"}))
	require.NoError(t, db.SaveShortcutChange(&ShortcutChange{Source: "api", Status: "failed"}))
	require.NoError(t, db.SaveCleanup("manual", 4))
	require.NoError(t, db.SaveCleanup("1h", 1))

	stats, err := db.GetOverallStats(7)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalPastes)
	assert.Equal(t, 1, stats.NewImages)
	assert.Equal(t, 2, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailureCount)
	assert.Equal(t, 1, stats.WSLPastes)
	assert.InDelta(t, 20.0, stats.AvgLatencyMs, 0.001)
	assert.Equal(t, int64(100), stats.TotalImageBytes)
	assert.Equal(t, 1, stats.ShortcutChanges)
	assert.Equal(t, 5, stats.FilesCleaned)

	daily, err := db.GetDailyStats(7)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, 3, daily[0].TotalPastes)
	assert.Equal(t, 1, daily[0].FailureCount)
}
