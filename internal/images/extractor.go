package images

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strings"
)

// Extraction is the result of unpacking an image archive.
type Extraction struct {
	// Files lists the base names written to the workspace, in archive order.
	Files []string
	// Corrupt lists the archive entries that could not be decoded as images.
	Corrupt []string
}

// Warnings returns one operator-facing message per corrupt entry.
func (e *Extraction) Warnings() []string {
	warnings := make([]string, 0, len(e.Corrupt))
	for _, name := range e.Corrupt {
		warnings = append(warnings, fmt.Sprintf("%s: corrupted image!", name))
	}
	return warnings
}

// ExtractFile extracts the zip archive at path into the workspace.
func ExtractFile(path string, ws *Workspace) (*Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	return Extract(f, info.Size(), ws)
}

// Extract decodes every entry of a zip archive and stores the valid images in the
// workspace under their base name, dropping archive directories. Entries that are
// not decodable images are skipped and reported in Extraction.Corrupt. When two
// entries share a base name the later one overwrites the earlier file.
func Extract(archive io.ReaderAt, size int64, ws *Workspace) (*Extraction, error) {
	zr, err := zip.NewReader(archive, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	result := &Extraction{}
	seen := make(map[string]bool)

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}

		name := baseName(entry.Name)
		if name == "" {
			continue
		}

		data, err := readEntry(entry)
		if err == nil {
			_, _, err = image.Decode(bytes.NewReader(data))
		}
		if err != nil {
			log.Printf("WARNING: %s: corrupted image! (%v)", entry.Name, err)
			result.Corrupt = append(result.Corrupt, entry.Name)
			continue
		}

		if err := writeFileAtomic(ws.ImagesDir(), ws.ImagePath(name), data); err != nil {
			return nil, fmt.Errorf("failed to save %s: %w", name, err)
		}

		if !seen[name] {
			seen[name] = true
			result.Files = append(result.Files, name)
		}
	}

	return result, nil
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// baseName returns the last path element of an archive entry name.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// writeFileAtomic writes data to a temp file in dir and renames it into place.
func writeFileAtomic(dir, path string, data []byte) error {
	tmpFile, err := os.CreateTemp(dir, ".extract_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}
