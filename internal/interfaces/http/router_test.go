package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	voucherHandlers "github.com/lnpos/voucherd/internal/interfaces/http/handlers/voucher"
	"github.com/lnpos/voucherd/internal/interfaces/http/handlers/testutil"
	"github.com/lnpos/voucherd/internal/interfaces/http/middleware"
	"github.com/lnpos/voucherd/internal/shared/logger"
)

func newTestRouter(health HealthCheck, origins ...string) *Router {
	handler := voucherHandlers.NewVoucherHandler(nil, "", logger.NewNopLogger())
	r := NewRouter(handler, health, origins, logger.NewNopLogger())
	r.SetupRoutes()
	return r
}

func TestRouter_Health(t *testing.T) {
	w := testutil.Do(newTestRouter(func(context.Context) error { return nil }).GetEngine(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))

	w = testutil.Do(newTestRouter(func(context.Context) error { return errors.New("down") }).GetEngine(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_Routes(t *testing.T) {
	routes := map[string]bool{}
	for _, info := range newTestRouter(nil).GetEngine().Routes() {
		routes[info.Method+" "+info.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"POST /api/v1/vouchers",
		"GET /api/v1/vouchers",
		"GET /api/v1/vouchers/stats",
		"GET /api/v1/vouchers/:id",
		"GET /api/v1/vouchers/:id/status",
		"GET /api/v1/vouchers/:id/issuer-ref",
		"POST /api/v1/vouchers/:id/claim",
		"POST /api/v1/vouchers/:id/unclaim",
		"POST /api/v1/vouchers/:id/cancel",
		"GET /api/v1/wallets/:wallet_id/unclaimed-count",
		"GET /api/v1/expiry-presets",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func TestRouter_CORS(t *testing.T) {
	engine := newTestRouter(func(context.Context) error { return nil }, "https://pos.example.com").GetEngine()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/vouchers", nil)
	req.Header.Set("Origin", "https://pos.example.com")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://pos.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
