package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodGet, "/api/products/{id}", "418"))
	assert.Equal(t, float64(2), got)
}

type mapCache map[string]bool

func (c mapCache) Get(_ context.Context, key string, _ any) bool         { return c[key] }
func (c mapCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (c mapCache) Delete(context.Context, ...string) error               { return nil }

func TestInstrumentCache(t *testing.T) {
	m := New()
	c := m.InstrumentCache(mapCache{"warm": true})

	assert.True(t, c.Get(context.Background(), "warm", nil))
	assert.False(t, c.Get(context.Background(), "cold", nil))
	assert.False(t, c.Get(context.Background(), "cold", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "zaafa_http_requests_in_flight")
}
