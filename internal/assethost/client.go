// Package assethost uploads images to a remote asset host and returns their public URLs.
package assethost

import "context"

// Uploader stores a local file on the asset host.
type Uploader interface {
	// Upload sends the file at path and returns its canonical secure URL.
	Upload(ctx context.Context, path string) (string, error)
}
