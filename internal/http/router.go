package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/curator/internal/auth"
)

const hstsMaxAge = 31536000 // 1 year

// Router bundles the gin engine with the controller owning the ingestion state.
type Router struct {
	*gin.Engine
	Ingest *IngestController
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *Router {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware(cfg.AssetOrigin))
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware(hstsMaxAge))
	}

	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	tmpl := template.Must(template.New("").ParseGlob(cfg.TemplatesPath + "/*.html"))
	router.SetHTMLTemplate(tmpl)

	health := NewHealthController(cfg.Database, cfg.Version)
	ingest := NewIngestController(cfg.Store, cfg.Uploader, cfg.Auditor, cfg.WorkspaceRoot)

	registerRoutes(router, health, ingest)

	return &Router{Engine: router, Ingest: ingest}
}

func registerRoutes(router gin.IRouter, health *HealthController, ingest *IngestController) {
	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// UI routes
	router.GET("/", ingest.Index)
	router.POST("/ingest/table", ingest.UploadTable)
	router.POST("/ingest/images", ingest.UploadImages)
	router.POST("/ingest/run", ingest.Run)

	// API
	router.GET("/api/ingest/status", ingest.Status)
}
