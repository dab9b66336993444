package http

import (
	"github.com/mrlokans/curator/internal/assethost"
	"github.com/mrlokans/curator/internal/audit"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Store         RecommendationStore
	Database      DatabaseChecker
	Uploader      assethost.Uploader
	Auditor       *audit.Auditor
	WorkspaceRoot string

	// UI
	TemplatesPath string

	// Origin of the uploaded images, allowed as an image source in the UI
	AssetOrigin string

	// CSRF protection of the forms; disabled when the secret is empty
	CSRFSecret    []byte
	SecureCookies bool

	// Application info
	Version string
}
