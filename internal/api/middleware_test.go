package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"social-listening-gateway/internal/ratelimit"
	"social-listening-gateway/internal/utils"

	"github.com/gin-gonic/gin"
)

type stubLimiter struct {
	decision ratelimit.Decision
	err      error
	keys     []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (ratelimit.Decision, error) {
	s.keys = append(s.keys, key)
	return s.decision, s.err
}

func newRouter(middleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware...)
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ctxOperator))
	})
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("Expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	if got := serve(r, req).Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("Expected caller request id echoed, got %q", got)
	}
}

func TestAuthMiddleware(t *testing.T) {
	secret := "panel-secret"
	good, err := utils.GenerateJWTToken("alice", []byte(secret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWTToken() error = %v", err)
	}
	forged, _ := utils.GenerateJWTToken("mallory", []byte("other"), time.Hour)

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"bearer", "Bearer " + good, "", http.StatusOK, "alice"},
		{"query token", "", "?access_token=" + good, http.StatusOK, "alice"},
		{"missing", "", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic " + good, "", http.StatusUnauthorized, ""},
		{"wrong key", "Bearer " + forged, "", http.StatusUnauthorized, ""},
	}

	r := newRouter(AuthMiddleware(secret))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("Expected operator %q, got %q", tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	w := serve(newRouter(AuthMiddleware("")), httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if w.Code != http.StatusOK || w.Body.String() != anonymous {
		t.Errorf("Expected anonymous access, got %d %q", w.Code, w.Body.String())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("denied", func(t *testing.T) {
		limiter := &stubLimiter{decision: ratelimit.Decision{Allowed: false, Limit: 6, RetryAfter: 12300 * time.Millisecond}}
		w := serve(newRouter(RateLimitMiddleware(limiter, "cluster")), httptest.NewRequest(http.MethodGet, "/whoami", nil))

		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("Expected 429, got %d", w.Code)
		}
		if got := w.Header().Get("Retry-After"); got != "13" {
			t.Errorf("Expected Retry-After 13, got %q", got)
		}
		if len(limiter.keys) != 1 || limiter.keys[0] != "anonymous:cluster" {
			t.Errorf("Unexpected limiter keys %v", limiter.keys)
		}
	})

	t.Run("allowed", func(t *testing.T) {
		limiter := &stubLimiter{decision: ratelimit.Decision{Allowed: true}}
		w := serve(newRouter(RateLimitMiddleware(limiter, "search")), httptest.NewRequest(http.MethodGet, "/whoami", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("limiter down", func(t *testing.T) {
		limiter := &stubLimiter{err: errors.New("connection refused")}
		w := serve(newRouter(RateLimitMiddleware(limiter, "scrape")), httptest.NewRequest(http.MethodGet, "/whoami", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected request to pass when limiter fails, got %d", w.Code)
		}
	})
}
