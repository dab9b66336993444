package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/mrlokans/curator/internal/assethost"
)

// CanvasSize is the width and height every uploaded image is resized to.
const CanvasSize = 1000

// ErrImageNotFound is returned when a row's picture reference matches no extracted file.
var ErrImageNotFound = errors.New("image not found")

// Processor resolves a picture reference against the extracted files, resizes the
// match and uploads it.
type Processor struct {
	ws       *Workspace
	uploader assethost.Uploader
}

// NewProcessor creates a processor working on the files of ws.
func NewProcessor(ws *Workspace, uploader assethost.Uploader) *Processor {
	return &Processor{ws: ws, uploader: uploader}
}

// FindImage returns the first known file name containing imageRef, ignoring case.
// When nothing contains the full reference, the reference without its extension is
// tried the same way.
func FindImage(imageRef string, known []string) (string, bool) {
	ref := strings.ToLower(strings.TrimSpace(imageRef))
	if ref == "" {
		return "", false
	}

	if name, ok := firstContaining(ref, known); ok {
		return name, true
	}

	stem := strings.TrimSuffix(ref, filepath.Ext(ref))
	if stem != "" && stem != ref {
		return firstContaining(stem, known)
	}
	return "", false
}

func firstContaining(needle string, known []string) (string, bool) {
	for _, name := range known {
		if strings.Contains(strings.ToLower(name), needle) {
			return strings.TrimSpace(name), true
		}
	}
	return "", false
}

// ResolveAndUpload finds the referenced image, resizes it to the fixed canvas and
// uploads the resized copy. It returns ErrImageNotFound for an empty or unmatched
// reference and the uploader's error otherwise. There is no retry.
func (p *Processor) ResolveAndUpload(ctx context.Context, imageRef string, known []string) (string, error) {
	name, ok := FindImage(imageRef, known)
	if !ok {
		return "", ErrImageNotFound
	}

	resized, err := p.Resize(name)
	if err != nil {
		return "", err
	}

	url, err := p.uploader.Upload(ctx, resized)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return url, nil
}

// Resize stretches the extracted image to CanvasSize x CanvasSize, ignoring its
// aspect ratio, and stores the result in the resized directory. It returns the
// path of the resized copy.
func (p *Processor) Resize(name string) (string, error) {
	data, err := os.ReadFile(p.ws.ImagePath(name))
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", name, err)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image %s: %w", name, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, CanvasSize, CanvasSize))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	encode, outName := encoderFor(name)
	var buf bytes.Buffer
	if err := encode(&buf, dst); err != nil {
		return "", fmt.Errorf("encode image %s: %w", name, err)
	}

	outPath := filepath.Join(p.ws.ResizedDir(), "resized_"+outName)
	if err := writeFileAtomic(p.ws.ResizedDir(), outPath, buf.Bytes()); err != nil {
		return "", fmt.Errorf("save resized image %s: %w", name, err)
	}
	return outPath, nil
}
