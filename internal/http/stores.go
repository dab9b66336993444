package http

import (
	"context"

	"github.com/mrlokans/curator/internal/assethost"
	"github.com/mrlokans/curator/internal/database"
	"github.com/mrlokans/curator/internal/images"
	"github.com/mrlokans/curator/internal/importers"
)

// RecommendationStore is the datastore seen by the ingestion controller.
type RecommendationStore interface {
	importers.DuplicateChecker
	importers.RecommendationWriter
}

// DatabaseChecker reports datastore health. Connected tells whether the lazily
// opened connection exists yet; Ping opens it when needed.
type DatabaseChecker interface {
	Connected() bool
	Ping(ctx context.Context) error
}

// Compile-time interface checks
var (
	_ RecommendationStore     = (*database.Handle)(nil)
	_ DatabaseChecker         = (*database.Handle)(nil)
	_ importers.ImageUploader = (*images.Processor)(nil)
	_ assethost.Uploader      = (*assethost.CloudinaryClient)(nil)
)
