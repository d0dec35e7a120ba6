package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	t.Run("generates ID when absent", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestID())
		r.GET("/", func(c *gin.Context) {
			assert.NotEmpty(t, c.GetString("request_id"))
			c.Status(http.StatusOK)
		})

		w := performRequest(r, http.MethodGet, "/", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("preserves incoming ID", func(t *testing.T) {
		r := gin.New()
		r.Use(RequestID())
		r.GET("/", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := performRequest(r, http.MethodGet, "/", map[string]string{
			"X-Request-ID": "incoming-id",
		})

		assert.Equal(t, "incoming-id", w.Header().Get("X-Request-ID"))
	})
}

func TestCORS(t *testing.T) {
	newEngine := func(cfg CORSConfig) *gin.Engine {
		r := gin.New()
		r.Use(CORSWithConfig(cfg))
		r.GET("/", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return r
	}

	t.Run("allows configured origin", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://app.example.com"}
		r := newEngine(cfg)

		w := performRequest(r, http.MethodGet, "/", map[string]string{
			"Origin": "https://app.example.com",
		})

		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("ignores unlisted origin", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"https://app.example.com"}
		r := newEngine(cfg)

		w := performRequest(r, http.MethodGet, "/", map[string]string{
			"Origin": "https://evil.example.com",
		})

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty origin list sets no headers", func(t *testing.T) {
		r := newEngine(DefaultCORSConfig())

		w := performRequest(r, http.MethodGet, "/", map[string]string{
			"Origin": "https://app.example.com",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight returns 204", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowOrigins = []string{"*"}
		r := newEngine(cfg)

		w := performRequest(r, http.MethodOptions, "/", map[string]string{
			"Origin": "https://app.example.com",
		})

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestGenerateRequestID(t *testing.T) {
	a := generateRequestID()
	b := generateRequestID()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 32)
}
