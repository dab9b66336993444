// Package auth protects the ingestion forms against cross-site request forgery
// and sets the security headers of every response.
//
// The tool has a single operator and no login. CSRF protection uses
// gorilla/csrf with a secret from CSRF_SECRET, generated at start-up when empty:
//
//	router.Use(auth.SecurityHeadersMiddleware())
//	router.Use(auth.CSRFMiddleware(secret, cfg.CSRF.SecureCookies))
//
// Templates embed the token with {{ .CSRFField }} and scripts send it in the
// X-CSRF-Token header.
package auth
