package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyEchoRouter(limit int64) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), BodyLimit(limit))
	router.POST("/upload", func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusBadRequest, "body too large")
			return
		}
		c.String(http.StatusOK, "%d", len(data))
	})
	return router
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name          string
		limit         int64
		body          string
		contentLength int64
		wantStatus    int
		wantBody      string
	}{
		{"within limit", 1024, "small body", 10, http.StatusOK, "10"},
		{"declared length over limit", 100, strings.Repeat("x", 200), 200, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE"},
		{"streamed body over limit", 50, strings.Repeat("x", 100), -1, http.StatusBadRequest, "body too large"},
		{"zero disables the limit", 0, strings.Repeat("x", 100), 100, http.StatusOK, "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			bodyEchoRouter(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}

	t.Run("error carries the request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("0123456789"))
		req.ContentLength = 10
		req.Header.Set(RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		bodyEchoRouter(5).ServeHTTP(w, req)

		assert.Contains(t, w.Body.String(), `"request_id":"req-42"`)
	})
}
