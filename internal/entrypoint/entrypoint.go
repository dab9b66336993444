package entrypoint

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/curator/internal/assethost"
	"github.com/mrlokans/curator/internal/audit"
	"github.com/mrlokans/curator/internal/config"
	"github.com/mrlokans/curator/internal/database"
	http_controllers "github.com/mrlokans/curator/internal/http"
	"github.com/mrlokans/curator/internal/images"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: handler,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for SIGINT or SIGTERM, then shut down with the configured timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// CSRFSecret decodes the configured secret, accepting hex or raw bytes, and
// generates a random one when none is configured.
func CSRFSecret(configured string) ([]byte, bool, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, false, nil
		}
		return []byte(configured), false, nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, false, err
	}
	return secret, true, nil
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Curator v%s", version)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	// Workspaces left by an earlier process are never reused
	if err := images.ResetRoot(cfg.Workspace.Dir); err != nil {
		log.Fatalf("Failed to prepare workspace directory %s: %v", cfg.Workspace.Dir, err)
	}

	// The datastore connection is opened on first use
	handle := database.NewHandle(cfg.Database)

	var auditor *audit.Auditor
	if cfg.Audit.Dir != "" {
		auditor = audit.NewAuditor(cfg.Audit.Dir)
		log.Printf("Run reports will be written to %s", cfg.Audit.Dir)
	}

	csrfSecret, generated, err := CSRFSecret(cfg.CSRF.Secret)
	if err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}
	if generated {
		log.Printf("Generated CSRF secret (set CSRF_SECRET to persist)")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Store:         handle,
		Database:      handle,
		Uploader:      assethost.NewCloudinaryClientFromConfig(cfg.AssetHost),
		Auditor:       auditor,
		WorkspaceRoot: cfg.Workspace.Dir,
		TemplatesPath: cfg.UI.TemplatesPath,
		AssetOrigin:   assethost.DeliveryOrigin,
		CSRFSecret:    csrfSecret,
		SecureCookies: cfg.CSRF.SecureCookies,
		Version:       version,
	})

	onShutdown := func(ctx context.Context) {
		if err := router.Ingest.Close(); err != nil {
			log.Printf("Failed to release workspace: %v", err)
		}
		if err := handle.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}

	Serve(router, cfg, onShutdown)
}
