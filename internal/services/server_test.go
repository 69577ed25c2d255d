package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"vastucraft/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHealth_ConnectsLazily(t *testing.T) {
	h := newHarness(t, nil)
	require.False(t, h.conn.Connected())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res HealthResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "healthy", res.Status)
	assert.Equal(t, "Vastu Craft API", res.Service)
	assert.Equal(t, "connected", res.Database)
	assert.Equal(t, "sqlite", res.Driver)
	assert.True(t, h.conn.Connected())
}

type downConn struct{}

func (downConn) Ensure(context.Context) error { return errors.New("no route to host") }
func (downConn) Name() string                 { return "mongo" }
func (downConn) Connected() bool              { return false }

func TestHealth_Degraded(t *testing.T) {
	t.Run("not connected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthService("Vastu Craft API", downConn{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var res HealthResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "degraded", res.Status)
		assert.Equal(t, "disconnected", res.Database)
	})

	t.Run("ping fails", func(t *testing.T) {
		ping := func(context.Context) error { return errors.New("connection reset") }
		res := NewHealthService("Vastu Craft API", upConn{}, ping).Check(context.Background())
		assert.Equal(t, "degraded", res.Status)
		assert.Equal(t, "unreachable", res.Database)
	})
}

func TestRouter_Headers(t *testing.T) {
	h := newHarness(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/subscribe", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestRouter_UnknownPath(t *testing.T) {
	h := newHarness(t, nil)

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newHarness(t, nil)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
		req.Header.Set("Origin", "https://www.vastucraft.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://www.vastucraft.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("foreign origin rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, h.conn.Connected())
	})

	t.Run("origin check precedes method check", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/contact", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/api/contact", nil)
		rec = httptest.NewRecorder()
		h.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		cfg := &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"*"}}}
		handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
		req.Header.Set("Origin", "https://anything.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "https://anything.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestLogging_CapturesStatus(t *testing.T) {
	handler := RequestLogging(zaptest.NewLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/subscribe", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
