package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RateLimit(2), func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLimiterSetEvictsIdle(t *testing.T) {
	set := &limiterSet{limiters: map[string]*rateLimiter{}, limit: 1, burst: 1}
	now := time.Now()
	assert.True(t, set.allow("a", now))
	assert.Len(t, set.limiters, 1)

	assert.True(t, set.allow("b", now.Add(limiterIdle+time.Second)))
	assert.Len(t, set.limiters, 1)
}
