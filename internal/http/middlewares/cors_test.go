package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rsharma-dev/attendhub/internal/http/middlewares"
)

func newCORSRouter(origins []string) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware(origins))
	r.POST("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORSAllowedOrigin(t *testing.T) {
	router := newCORSRouter([]string{"http://localhost:5173"})

	t.Run("preflight answered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "http://localhost:5173")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusNoContent)
		}

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Fatalf("allow-origin = %q", got)
		}

		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Fatalf("allow-credentials = %q", got)
		}
	})

	t.Run("actual request passes through with headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/ping", nil)
		req.Header.Set("Origin", "http://localhost:5173")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
		}

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Fatalf("allow-origin = %q", got)
		}
	})
}

func TestCORSDisallowedOrigin(t *testing.T) {
	router := newCORSRouter([]string{"http://localhost:5173"})

	t.Run("preflight not answered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "http://evil.example")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code == http.StatusNoContent {
			t.Fatalf("preflight for an unknown origin must not be answered")
		}

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("unexpected allow-origin %q", got)
		}
	})

	t.Run("actual request gets no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/ping", nil)
		req.Header.Set("Origin", "http://evil.example")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("unexpected allow-origin %q", got)
		}
	})
}
