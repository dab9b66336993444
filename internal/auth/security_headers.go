package auth

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const permissionsPolicy = "accelerometer=(), camera=(), geolocation=(), gyroscope=(), " +
	"magnetometer=(), microphone=(), payment=(), usb=()"

// SecurityHeadersMiddleware sets the response headers of the operator page.
// The page only loads its own inline script and styles; uploaded pictures are
// shown from the asset host, so assetOrigins are allowed as image sources.
func SecurityHeadersMiddleware(assetOrigins ...string) gin.HandlerFunc {
	imgSrc := []string{"'self'", "data:"}
	for _, origin := range assetOrigins {
		if o := extractOrigin(origin); o != "" {
			imgSrc = append(imgSrc, o)
		}
	}

	policy := strings.Join([]string{
		"default-src 'self'",
		"script-src 'self' 'unsafe-inline'",
		"style-src 'self' 'unsafe-inline'",
		"img-src " + strings.Join(imgSrc, " "),
		"connect-src 'self'",
		"frame-ancestors 'none'",
	}, "; ")

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", permissionsPolicy)

		// Uploads post back to the host the page was served from, which may be
		// a proxy address rather than the listen address.
		formAction := "'self'"
		if host := c.Request.Host; host != "" {
			formAction += " https://" + host
		}
		h.Set("Content-Security-Policy", policy+"; form-action "+formAction)

		c.Next()
	}
}

// extractOrigin reduces a URL to scheme://host. A bare host is taken as https.
func extractOrigin(rawURL string) string {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// StrictTransportSecurityMiddleware sends HSTS on requests that arrived over TLS,
// directly or through a proxy. It is installed only when secure cookies are on.
func StrictTransportSecurityMiddleware(maxAge int) gin.HandlerFunc {
	header := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains"

	return func(c *gin.Context) {
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			c.Header("Strict-Transport-Security", header)
		}
		c.Next()
	}
}
