package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/theoprice/pkg/ratelimit"
	"github.com/wyfcoding/theoprice/pkg/response"
)

type fixedLimiter struct {
	d   *ratelimit.Decision
	err error
}

func (l fixedLimiter) Allow(context.Context, string, string) (*ratelimit.Decision, error) {
	return l.d, l.err
}

func serve(l ratelimit.Limiter) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RateLimitMiddleware(l, "reconcile"), func(c *gin.Context) {
		response.Success(c, "ok")
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func TestRateLimitMiddleware_SubSecondWaitRoundsUp(t *testing.T) {
	w := serve(fixedLimiter{d: &ratelimit.Decision{Burst: 2, RetryAfter: 300 * time.Millisecond}})

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	var env response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Code != http.StatusTooManyRequests || env.Message != "too many requests" || env.Detail == "" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestRateLimitMiddleware_Allowed(t *testing.T) {
	w := serve(fixedLimiter{d: &ratelimit.Decision{Allowed: true, Burst: 2, Remaining: 1}})
	if w.Code != http.StatusOK || w.Header().Get("X-RateLimit-Remaining") != "1" {
		t.Errorf("status = %d, headers = %v", w.Code, w.Header())
	}
}

func TestRateLimitMiddleware_LimiterDownFailsOpen(t *testing.T) {
	w := serve(fixedLimiter{err: errors.New("redis: connection refused")})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
