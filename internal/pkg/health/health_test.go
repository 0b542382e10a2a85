package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/matchpredict/internal/pkg/performance"
)

func TestRegister(t *testing.T) {
	r := mux.NewRouter()
	Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong\n", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "ok\n", rec.Body.String())

	performance.GetTracker().Record("health_test", "", time.Millisecond, nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var metrics performance.MetricsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&metrics))
	assert.Contains(t, metrics.Operations, "health_test")
}

func TestRemoteChecker(t *testing.T) {
	r := mux.NewRouter()
	Register(r)
	up := httptest.NewServer(r)
	defer up.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	ctx := context.Background()
	assert.NoError(t, NewRemoteChecker(up.URL+"/", time.Second).Check(ctx))
	assert.Error(t, NewRemoteChecker(down.URL, time.Second).Check(ctx))

	rec := httptest.NewRecorder()
	NewRemoteChecker(down.URL, time.Second).Handler()(rec, httptest.NewRequest(http.MethodGet, "/health/backend", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, "127.0.0.1:0", "test", http.NotFoundHandler(), time.Second)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_RejectsZeroTimeout(t *testing.T) {
	err := Run(context.Background(), ":0", "test", http.NotFoundHandler(), 0)
	assert.Error(t, err)
}

func TestTrackRequests(t *testing.T) {
	r := mux.NewRouter()
	r.Use(TrackRequests("test"))
	r.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {}).Methods(http.MethodGet)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/42", nil))

	metrics := performance.GetTracker().GetMetrics()
	assert.Contains(t, metrics.Operations, "test.http GET /items/{id}")
}
