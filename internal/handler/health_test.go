package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	t.Run("liveness", func(t *testing.T) {
		h := NewHealthHandler(pingFunc(func(context.Context) error { return errors.New("down") }), logger.NewNop())
		rec := httptest.NewRecorder()
		h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("ready", func(t *testing.T) {
		h := NewHealthHandler(pingFunc(func(context.Context) error { return nil }), logger.NewNop())
		rec := httptest.NewRecorder()
		h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("database unreachable", func(t *testing.T) {
		h := NewHealthHandler(pingFunc(func(context.Context) error { return errors.New("server selection timeout") }), logger.NewNop())
		rec := httptest.NewRecorder()
		h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
	})
}
