package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key-32-bytes-long!!!")

func init() {
	gin.SetMode(gin.TestMode)
}

func newCSRFRouter(secure bool) *gin.Engine {
	router := gin.New()
	router.Use(CSRFMiddleware(testSecret, secure))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetCSRFToken(c))
	})
	router.POST("/ingest/run", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestCSRFMiddleware_AllowsGET(t *testing.T) {
	rr := httptest.NewRecorder()
	newCSRFRouter(false).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Body.String(), "token should be exposed to handlers")
}

func TestCSRFMiddleware_BlocksPOSTWithoutToken(t *testing.T) {
	ran := false
	router := gin.New()
	router.Use(CSRFMiddleware(testSecret, false))
	router.POST("/ingest/run", func(c *gin.Context) {
		ran = true
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/ingest/run", nil))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, ran, "handler must not run after a rejected token")
}

func TestCSRFMiddleware_AcceptsTokenHeader(t *testing.T) {
	router := newCSRFRouter(false)

	getRR := httptest.NewRecorder()
	router.ServeHTTP(getRR, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, getRR.Code)
	token := getRR.Body.String()

	req := httptest.NewRequest(http.MethodPost, "/ingest/run", nil)
	req.Header.Set("X-CSRF-Token", token)
	for _, cookie := range getRR.Result().Cookies() {
		req.AddCookie(cookie)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetCSRFToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetCSRFToken(c))

	c.Set(csrfTokenKey, "test-token-123")
	assert.Equal(t, "test-token-123", GetCSRFToken(c))

	c.Set(csrfTokenKey, 42)
	assert.Empty(t, GetCSRFToken(c))
}

func TestCSRFTokenField(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, CSRFTokenField(c))

	c.Set(csrfTokenKey, "abc123")
	assert.Equal(t, `<input type="hidden" name="gorilla.csrf.Token" value="abc123">`, CSRFTokenField(c))
}

func TestCSRFErrorHandler(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Accept", "application/json")

		csrfErrorHandler(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Body.String(), "csrf_failed")
	})

	t.Run("event stream", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/ingest/run", nil)
		req.Header.Set("Accept", "text/event-stream")

		csrfErrorHandler(rr, req)

		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	})

	t.Run("html links back to the start page", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/ingest/table", nil)
		req.Header.Set("Accept", "text/html")
		req.Header.Set("Referer", "http://localhost:8188/")

		csrfErrorHandler(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Empty(t, rr.Header().Get("Location"))
		assert.Contains(t, rr.Body.String(), "Form expired")
		assert.Contains(t, rr.Body.String(), `href="/"`)
	})
}
