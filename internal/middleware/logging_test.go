package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	t.Run("keeps an incoming request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set("X-Request-ID", "req-123")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
			t.Errorf("expected req-123, got %q", got)
		}
		if rec.Body.String() != "req-123" {
			t.Errorf("expected request id in context, got %q", rec.Body.String())
		}
	})

	t.Run("generates an id when missing or oversized", func(t *testing.T) {
		for _, incoming := range []string{"", strings.Repeat("x", 65)} {
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			if incoming != "" {
				req.Header.Set("X-Request-ID", incoming)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get("X-Request-ID")
			if got == "" || got == incoming || len(got) != 36 {
				t.Errorf("expected a generated uuid, got %q", got)
			}
		}
	})
}
