package images

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkspace(t *testing.T) {
	root := t.TempDir()

	ws, err := NewWorkspace(root)
	require.NoError(t, err)

	assert.Equal(t, root, filepath.Dir(ws.Dir()))
	assert.DirExists(t, ws.ImagesDir())
	assert.DirExists(t, ws.ResizedDir())
	assert.Equal(t, filepath.Join(ws.ImagesDir(), "a.jpg"), ws.ImagePath("a.jpg"))
}

func TestWorkspace_ReleaseRemovesEverything(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ws.ImagePath("a.png"), []byte("x"), 0644))

	require.NoError(t, ws.Release())
	assert.NoDirExists(t, ws.Dir())

	// Releasing twice is harmless
	assert.NoError(t, ws.Release())

	var nilWS *Workspace
	assert.NoError(t, nilWS.Release())
}

func TestWorkspaces_AreIsolated(t *testing.T) {
	root := t.TempDir()
	first, err := NewWorkspace(root)
	require.NoError(t, err)
	second, err := NewWorkspace(root)
	require.NoError(t, err)

	assert.NotEqual(t, first.Dir(), second.Dir())

	require.NoError(t, first.Release())
	assert.DirExists(t, second.Dir())
}

func TestResetRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "workspace")
	ws, err := NewWorkspace(root)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ws.ImagePath("left-over.jpg"), []byte("x"), 0644))

	require.NoError(t, ResetRoot(root))

	assert.DirExists(t, root)
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResetRoot_KeepsForeignEntries(t *testing.T) {
	root := t.TempDir()
	ws, err := NewWorkspace(root)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("PORT=8188\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "recommendations.db"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "templates"), 0755))
	// uuid-shaped file, not a workspace directory
	require.NoError(t, os.WriteFile(filepath.Join(root, "6f1c2a9e-3b4d-4e5f-8a7b-9c0d1e2f3a4b"), []byte("x"), 0644))

	require.NoError(t, ResetRoot(root))

	assert.NoDirExists(t, ws.Dir())
	assert.FileExists(t, filepath.Join(root, ".env"))
	assert.FileExists(t, filepath.Join(root, "recommendations.db"))
	assert.DirExists(t, filepath.Join(root, "templates"))
	assert.FileExists(t, filepath.Join(root, "6f1c2a9e-3b4d-4e5f-8a7b-9c0d1e2f3a4b"))
}

func TestResetRoot_CreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "workspace")

	require.NoError(t, ResetRoot(root))

	assert.DirExists(t, root)
}
