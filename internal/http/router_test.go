package http_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rsharma-dev/attendhub/internal/config"
	httpx "github.com/rsharma-dev/attendhub/internal/http"
	"github.com/rsharma-dev/attendhub/internal/observability"
)

// newTestRouter builds the full stack. The DB pool and redis client stay nil;
// every route exercised here fails before touching either.
func newTestRouter() http.Handler {
	cfg := config.Config{Env: "test", MaxBodyBytes: 1 << 20}

	return httpx.NewRouter(cfg, observability.NewLogger(cfg.Env), nil, nil)
}

func TestRefreshAcceptsCookieOnlyRequest(t *testing.T) {
	router := newTestRouter()

	// no body, no Content-Type: the cookie is the whole request
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "not-a-valid-token"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// the refresh flow must answer, not the content-type gate
	if w.Code == http.StatusUnsupportedMediaType {
		t.Fatalf("cookie-only refresh was rejected by the content-type gate: %s", w.Body.String())
	}

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusUnauthorized, w.Body.String())
	}
}

func TestRefreshWithoutAnyTokenThroughRouter(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusUnauthorized, w.Body.String())
	}
}

func TestNonJSONBodyStillRejected(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewBufferString("userName=jdoe"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusUnsupportedMediaType, w.Body.String())
	}
}

func TestBodylessLogoutReachesAuthGate(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// past the content-type gate, stopped by the missing access token
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusUnauthorized, w.Body.String())
	}
}
