package autostart

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandQuotesExecutable(t *testing.T) {
	assert.Equal(t, `"C:\Program Files\ClipPath\clippath.exe" --hide`, Command(`C:\Program Files\ClipPath\clippath.exe`))
}

func TestExecutableIsAbsolute(t *testing.T) {
	exe, err := Executable()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(exe))
}
