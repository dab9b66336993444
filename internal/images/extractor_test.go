package images

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_SkipsCorruptEntries(t *testing.T) {
	ws := newTestWorkspace(t)
	archive := buildZip(t,
		zipEntry{"one.png", pngBytes(t, 4, 4)},
		zipEntry{"two.png", pngBytes(t, 8, 2)},
		zipEntry{"broken.jpg", []byte("definitely not a jpeg")},
		zipEntry{"three.png", pngBytes(t, 3, 5)},
	)

	result, err := Extract(archive, archive.Size(), ws)
	require.NoError(t, err)

	assert.Equal(t, []string{"one.png", "two.png", "three.png"}, result.Files)
	assert.Equal(t, []string{"broken.jpg"}, result.Corrupt)
	assert.Equal(t, []string{"broken.jpg: corrupted image!"}, result.Warnings())

	for _, name := range result.Files {
		assert.FileExists(t, ws.ImagePath(name))
	}
	assert.NoFileExists(t, ws.ImagePath("broken.jpg"))
}

func TestExtract_FlattensDirectories(t *testing.T) {
	ws := newTestWorkspace(t)
	archive := buildZip(t,
		zipEntry{"photos/", nil},
		zipEntry{"photos/cafes/sunset_resized_final.png", pngBytes(t, 2, 2)},
		zipEntry{"hotels/harbour.png", pngBytes(t, 2, 2)},
	)

	result, err := Extract(archive, archive.Size(), ws)
	require.NoError(t, err)

	assert.Equal(t, []string{"sunset_resized_final.png", "harbour.png"}, result.Files)
	assert.Empty(t, result.Corrupt)

	entries, err := os.ReadDir(ws.ImagesDir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, e.IsDir(), "unexpected directory %s", e.Name())
	}
}

func TestExtract_SameBaseNameOverwrites(t *testing.T) {
	ws := newTestWorkspace(t)
	first := pngBytes(t, 2, 2)
	second := pngBytes(t, 6, 6)
	archive := buildZip(t,
		zipEntry{"a/cover.png", first},
		zipEntry{"b/cover.png", second},
	)

	result, err := Extract(archive, archive.Size(), ws)
	require.NoError(t, err)

	assert.Equal(t, []string{"cover.png"}, result.Files)
	stored, err := os.ReadFile(ws.ImagePath("cover.png"))
	require.NoError(t, err)
	assert.Equal(t, second, stored)
}

func TestExtract_InvalidArchive(t *testing.T) {
	ws := newTestWorkspace(t)
	path := filepath.Join(t.TempDir(), "not-a.zip")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	_, err := ExtractFile(path, ws)
	assert.Error(t, err)
}

func TestExtractFile(t *testing.T) {
	ws := newTestWorkspace(t)
	archive := buildZip(t, zipEntry{"x.png", pngBytes(t, 2, 2)})

	path := filepath.Join(t.TempDir(), "images.zip")
	data := make([]byte, archive.Size())
	_, err := archive.ReadAt(data, 0)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	result, err := ExtractFile(path, ws)
	require.NoError(t, err)
	assert.Equal(t, []string{"x.png"}, result.Files)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "a.jpg", baseName("dir/sub/a.jpg"))
	assert.Equal(t, "a.jpg", baseName(`dir\a.jpg`))
	assert.Equal(t, "a.jpg", baseName("a.jpg"))
	assert.Equal(t, "", baseName("dir/.."))
}
