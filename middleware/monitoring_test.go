package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMonitorMiddlewareUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MonitorMiddleware)
	r.HandleFunc("/api/sunsets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}).Methods("DELETE")

	counter := httpRequestsTotal.WithLabelValues("/api/sunsets/{id}", "DELETE", "403")
	rejections := authRejections.WithLabelValues("403_forbidden")
	before, beforeRejected := testutil.ToFloat64(counter), testutil.ToFloat64(rejections)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/sunsets/%d", i), nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
	assert.Equal(t, beforeRejected+2, testutil.ToFloat64(rejections))
}

func TestBasicAuthMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	h := BasicAuthMiddleware("prom", "pw")(ok)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))

	req.SetBasicAuth("prom", "pw")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	unconfigured := BasicAuthMiddleware("", "")(ok)
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("", "")
	rr = httptest.NewRecorder()
	unconfigured.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPprofSecurityMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	rr := httptest.NewRecorder()
	PprofSecurityMiddleware("")(ok).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req.Header.Set("X-Pprof-Secret", "s3")
	rr = httptest.NewRecorder()
	PprofSecurityMiddleware("s3")(ok).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(0.001, 2)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	l.sweep(time.Now().Add(10 * time.Minute))
	l.mu.Lock()
	assert.Empty(t, l.visitors)
	l.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.CleanupVisitors(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop")
	}
}
