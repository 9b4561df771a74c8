package authz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileToggle_Absent(t *testing.T) {
	toggle := NewFileToggle(filepath.Join(t.TempDir(), "armed"))
	open, err := toggle.Open()
	require.NoError(t, err)
	assert.False(t, open)
}

func TestFileToggle_Present(t *testing.T) {
	path := filepath.Join(t.TempDir(), "armed")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	toggle := NewFileToggle(path)
	open, err := toggle.Open()
	require.NoError(t, err)
	assert.True(t, open)
}

func TestNewFileToggle_DefaultPath(t *testing.T) {
	toggle := NewFileToggle("")
	assert.Equal(t, DefaultTogglePath, toggle.Path)
}
