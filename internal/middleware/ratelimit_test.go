package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func limiterRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doRequest(r *gin.Engine, ip string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterBlocksAfterBudget(t *testing.T) {
	r := limiterRouter(NewRateLimiter(3, time.Hour))

	for i := 0; i < 3; i++ {
		if code := doRequest(r, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, code)
		}
	}
	if code := doRequest(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after budget spent, got %d", code)
	}
}

func TestRateLimiterTracksClientsSeparately(t *testing.T) {
	r := limiterRouter(NewRateLimiter(1, time.Hour))

	if code := doRequest(r, "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("first client: expected 200, got %d", code)
	}
	if code := doRequest(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("first client: expected 429, got %d", code)
	}
	if code := doRequest(r, "10.0.0.2"); code != http.StatusOK {
		t.Fatalf("second client: expected 200, got %d", code)
	}
}
