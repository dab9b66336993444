package images

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 75

// encoderFor picks an encoder from the file extension. Formats without an
// encoder are written as PNG, in which case the returned name gains a .png suffix.
func encoderFor(name string) (func(io.Writer, image.Image) error, string) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".jpe", ".jfif":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
		}, name
	case ".png":
		return png.Encode, name
	case ".gif":
		return func(w io.Writer, img image.Image) error {
			return gif.Encode(w, img, nil)
		}, name
	case ".bmp":
		return bmp.Encode, name
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, nil)
		}, name
	default:
		return png.Encode, name + ".png"
	}
}
