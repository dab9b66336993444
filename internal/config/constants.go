package config

const (
	// DefaultDatabasePath is the default sqlite file when no DSN is configured
	DefaultDatabasePath = "./recommendations.db"

	// DefaultWorkspaceDir holds per-run image workspaces
	DefaultWorkspaceDir = "./workspace"

	// DefaultAssetHostURL is the Cloudinary upload API
	DefaultAssetHostURL = "https://api.cloudinary.com"

	// DefaultUploadPreset is the unsigned upload profile name
	DefaultUploadPreset = "unsigned_preset"
)
