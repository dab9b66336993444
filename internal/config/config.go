package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite DatabaseDriver = "sqlite" // Local file database (default)
	DriverMySQL  DatabaseDriver = "mysql"  // Shared recommendations database
)

type (
	Config struct {
		HTTP
		Global
		Database
		AssetHost
		Workspace
		Audit
		UI
		CSRF
	}

	HTTP struct {
		Port int32  `validate:"gt=0,lte=65535"`
		Host string `validate:"required"`
	}
	Global struct {
		ShutdownTimeoutInSeconds int `validate:"gte=0"`
	}
	Database struct {
		Driver      DatabaseDriver `validate:"required,oneof=sqlite mysql"`
		DSN         string         `validate:"required"` // File path for sqlite, DSN for mysql
		AutoMigrate bool           // Create the recommendations table if missing; never alters it
	}
	AssetHost struct {
		CloudName    string `validate:"required"`
		UploadPreset string `validate:"required"` // Unsigned upload preset
		BaseURL      string `validate:"required,url"`
		Timeout      time.Duration
	}
	Workspace struct {
		Dir string `validate:"required"` // Root for extracted and resized images
	}
	Audit struct {
		Dir string // Run reports are skipped when empty
	}
	UI struct {
		TemplatesPath string `validate:"required"`
	}
	CSRF struct {
		Secret        string // Generated at start-up when empty
		SecureCookies bool   // Set to false for local dev without HTTPS
	}
)

// loadDotEnv reads a .env file from the working directory when one exists.
// Values already present in the environment win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("WARNING: failed to load .env file: %v", err)
	}
}

func NewConfig() *Config {
	loadDotEnv()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("templates_path", "./templates")

	// Datastore defaults
	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_dsn", DefaultDatabasePath)

	// Asset host defaults
	v.SetDefault("assets_cloud_name", "")
	v.SetDefault("assets_upload_preset", DefaultUploadPreset)
	v.SetDefault("assets_base_url", DefaultAssetHostURL)
	v.SetDefault("assets_timeout", "60s")

	v.SetDefault("workspace_dir", DefaultWorkspaceDir)
	v.SetDefault("audit_dir", "./audit")

	v.SetDefault("csrf_secret", "")
	v.SetDefault("csrf_secure_cookies", false)

	// The shared mysql table is owned elsewhere; only a local sqlite file gets
	// its table created unless asked explicitly.
	driver := DatabaseDriver(v.GetString("DATABASE_DRIVER"))
	v.SetDefault("database_auto_migrate", driver == DriverSQLite)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:      driver,
			DSN:         v.GetString("DATABASE_DSN"),
			AutoMigrate: v.GetBool("DATABASE_AUTO_MIGRATE"),
		},
		AssetHost: AssetHost{
			CloudName:    v.GetString("ASSETS_CLOUD_NAME"),
			UploadPreset: v.GetString("ASSETS_UPLOAD_PRESET"),
			BaseURL:      v.GetString("ASSETS_BASE_URL"),
			Timeout:      v.GetDuration("ASSETS_TIMEOUT"),
		},
		Workspace: Workspace{
			Dir: v.GetString("WORKSPACE_DIR"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
		},
		CSRF: CSRF{
			Secret:        v.GetString("CSRF_SECRET"),
			SecureCookies: v.GetBool("CSRF_SECURE_COOKIES"),
		},
	}
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
