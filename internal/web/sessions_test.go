package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry_ObtainAndSweep(t *testing.T) {
	backend := &fakeBackend{matches: exampleMatches()}
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := newSessionRegistry(time.Hour, 0, func(ctx context.Context) *Controller {
		return NewController(ctx, backend, testOptions())
	})
	reg.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	first := reg.obtain(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	again := reg.obtain(httptest.NewRecorder(), req)
	assert.Same(t, first, again)

	unknown := httptest.NewRequest(http.MethodGet, "/", nil)
	unknown.AddCookie(&http.Cookie{Name: sessionCookie, Value: "gone"})
	_, ok := reg.lookup(unknown)
	assert.False(t, ok)

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 0, reg.sweep())
	assert.Equal(t, 1, reg.len())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, reg.sweep())
	assert.Equal(t, 0, reg.len())

	_, ok = reg.lookup(req)
	assert.False(t, ok)
}

func TestSessionRegistry_RunClosesOnCancel(t *testing.T) {
	reg := newSessionRegistry(time.Hour, 0, func(ctx context.Context) *Controller {
		return NewController(ctx, &fakeBackend{}, testOptions())
	})
	reg.obtain(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
	assert.Equal(t, 0, reg.len())
}

func TestSessionRegistry_EvictsOldestOverLimit(t *testing.T) {
	backend := &fakeBackend{matches: exampleMatches()}
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := newSessionRegistry(time.Hour, 2, func(ctx context.Context) *Controller {
		return NewController(ctx, backend, testOptions())
	})
	reg.now = func() time.Time { return now }

	cookies := make([]*http.Cookie, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		reg.obtain(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Len(t, rec.Result().Cookies(), 1)
		cookies = append(cookies, rec.Result().Cookies()[0])
		now = now.Add(time.Minute)
	}

	assert.Equal(t, 2, reg.len())
	for i, want := range []bool{false, true, true} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookies[i])
		_, ok := reg.lookup(req)
		assert.Equal(t, want, ok, "session %d", i)
	}
}
