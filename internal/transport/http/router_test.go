package httptransport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "party360/internal/jwt_token"
	"party360/internal/platform/metrics"
	id "party360/pkg/domain"
	"party360/pkg/requestcontext"
)

type whoami struct{}

func (whoami) Register(r chi.Router) {
	r.Get("/api/whoami", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(requestcontext.Tenant(r.Context())))
	})
}

func newTestRouter(t *testing.T, health map[string]HealthCheck) (http.Handler, *jwttoken.JWTService) {
	t.Helper()
	jwtSvc := jwttoken.NewJWTService("k", "party360", "party360-api")
	reg := prometheus.NewRegistry()
	return NewRouter(RouterConfig{
		Logger:    slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
		Validator: jwttoken.NewJWTServiceAdapter(jwtSvc),
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
		Health:    health,
		Handlers:  []RouteRegistrar{whoami{}},
	}), jwtSvc
}

func TestHealth(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("refused") }

	t.Run("all dependencies up", func(t *testing.T) {
		router, _ := newTestRouter(t, map[string]HealthCheck{"redis": up, "postgres": up})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"redis":"up"`)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("redis down", func(t *testing.T) {
		router, _ := newTestRouter(t, map[string]HealthCheck{"redis": down, "postgres": up})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"redis":"down"`)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "party360_http_request_duration_seconds")
}

func TestAuthenticatedRoutes(t *testing.T) {
	router, jwtSvc := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwtSvc.GenerateAccessToken(id.ActorID(uuid.New()), "acme", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acme", rec.Body.String())
}
