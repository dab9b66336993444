package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

const csrfTokenKey = "csrf_token"

// CSRFMiddleware guards the upload and run forms. Only unsafe methods need a
// valid token; the token for the next form is stored in the gin context.
//
// Without secure cookies the tool is served over plain HTTP, where gorilla/csrf
// must not demand a same-origin Referer.
func CSRFMiddleware(secret []byte, secure bool) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		passed := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(csrfTokenKey, csrf.Token(r))
			c.Request = r
			c.Next()
		})

		req := c.Request
		if !secure {
			req = csrf.PlaintextHTTPRequest(req)
		}
		protect(next).ServeHTTP(c.Writer, req)
		if !passed {
			c.Abort()
		}
	}
}

// csrfErrorHandler answers a rejected form post. API and stream clients get JSON,
// the operator page gets a short notice linking back to the start page, where a
// fresh token is issued.
func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") || strings.Contains(accept, "text/event-stream") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing","code":"csrf_failed"}`))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Form expired</title></head>
<body style="font-family: system-ui; max-width: 420px; margin: 100px auto; text-align: center;">
<h1>Form expired</h1>
<p>The upload form is out of date. Nothing was uploaded or ingested.</p>
<p><a href="/">Reload the CSV and Image Reader</a></p>
</body>
</html>`))
}

// GetCSRFToken returns the token stored by CSRFMiddleware, or "".
func GetCSRFToken(c *gin.Context) string {
	token, _ := c.Get(csrfTokenKey)
	t, _ := token.(string)
	return t
}

// CSRFTokenField renders the hidden input the upload and run forms submit.
func CSRFTokenField(c *gin.Context) string {
	token := GetCSRFToken(c)
	if token == "" {
		return ""
	}
	return `<input type="hidden" name="gorilla.csrf.Token" value="` + token + `">`
}
