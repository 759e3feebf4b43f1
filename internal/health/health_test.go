package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

type fakeStatus struct{}

func (fakeStatus) GetStatus() map[string]interface{} {
	return map[string]interface{}{"running": true}
}

func serve(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestServer_Endpoints(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		pingErr    error
		wantCode   int
		wantStatus string
	}{
		{"healthy", "/health", nil, http.StatusOK, "healthy"},
		{"unhealthy", "/health", errors.New("connection refused"), http.StatusServiceUnavailable, "unhealthy"},
		{"ready", "/ready", nil, http.StatusOK, "ready"},
		{"not ready", "/ready", errors.New("connection refused"), http.StatusServiceUnavailable, "not ready"},
		{"live with broken db", "/live", errors.New("connection refused"), http.StatusOK, "alive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer("0", &fakePinger{err: tt.pingErr}, fakeStatus{}, nil, zap.NewNop())

			rec, body := serve(t, srv, tt.path)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, body["status"])
		})
	}
}

func TestServer_HealthIncludesScheduler(t *testing.T) {
	srv := NewServer("0", &fakePinger{}, fakeStatus{}, nil, zap.NewNop())

	_, body := serve(t, srv, "/health")
	scheduler, ok := body["scheduler"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, scheduler["running"])
}

func TestServer_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "releasewatch_test_total", Help: "test"})
	registry.MustRegister(counter)
	counter.Inc()

	srv := NewServer("0", &fakePinger{}, nil, registry, zap.NewNop())

	rec, _ := serve(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "releasewatch_test_total 1")
}

func TestServer_NoMetricsWithoutGatherer(t *testing.T) {
	srv := NewServer("0", &fakePinger{}, nil, nil, zap.NewNop())

	rec, _ := serve(t, srv, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
