package images

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	imagesDirName  = "images"
	resizedDirName = "resized"
)

// Workspace holds the extracted and resized images of one image-archive upload.
// It is acquired with NewWorkspace and must be released with Release.
type Workspace struct {
	dir string
}

// NewWorkspace creates a fresh, uniquely named workspace under root.
func NewWorkspace(root string) (*Workspace, error) {
	dir := filepath.Join(root, uuid.NewString())
	ws := &Workspace{dir: dir}

	for _, sub := range []string{ws.ImagesDir(), ws.ResizedDir()} {
		if err := os.MkdirAll(sub, 0755); err != nil {
			os.RemoveAll(dir)
			return nil, fmt.Errorf("create workspace dir: %w", err)
		}
	}

	return ws, nil
}

// ResetRoot removes workspaces left under root by earlier processes and makes
// sure root exists. Only directories named like a workspace are removed, so
// anything else sharing root is left alone.
func ResetRoot(root string) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("create workspace root: %w", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read workspace root: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := uuid.Parse(entry.Name()); err != nil {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, entry.Name())); err != nil {
			return fmt.Errorf("remove workspace %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// ImagesDir holds files extracted from the archive, keyed by base name.
func (w *Workspace) ImagesDir() string {
	return filepath.Join(w.dir, imagesDirName)
}

// ResizedDir holds the resized copies that get uploaded.
func (w *Workspace) ResizedDir() string {
	return filepath.Join(w.dir, resizedDirName)
}

// ImagePath returns the path of an extracted image.
func (w *Workspace) ImagePath(name string) string {
	return filepath.Join(w.ImagesDir(), name)
}

// Release deletes the workspace and everything in it. Safe to call more than once.
func (w *Workspace) Release() error {
	if w == nil || w.dir == "" {
		return nil
	}
	return os.RemoveAll(w.dir)
}
