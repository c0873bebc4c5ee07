package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Unix(0, 0)
	rl := NewRateLimiter(100 * time.Millisecond)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if client != "" {
			req.Header.Set(ClientIDHeader, client)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("alice"))
	assert.Equal(t, http.StatusTooManyRequests, do("alice"))
	assert.Equal(t, http.StatusOK, do("bob"), "clients are limited independently")
	assert.Equal(t, http.StatusOK, do(""), "falls back to the remote address")
	assert.Equal(t, http.StatusTooManyRequests, do(""))

	now = now.Add(100 * time.Millisecond)
	assert.Equal(t, http.StatusOK, do("alice"))
}
