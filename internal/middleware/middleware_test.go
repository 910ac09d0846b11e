package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDAndLogging(t *testing.T) {
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get(RequestIDHeader))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	hc := &http.Client{Transport: Chain(nil, RequestID(), Logging(zap.New(core)))}

	resp, err := hc.Get(srv.URL + "/api/doctor")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	id, _ := seen.Load().(string)
	if len(id) != 36 {
		t.Fatalf("expected uuid request id, got %q", id)
	}
	entries := logs.FilterMessage("http call").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != id {
		t.Errorf("logged request id %v, sent %s", got, id)
	}
}

func TestRateLimitWaitsPerEndpoint(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	rl := NewRateLimiter(1, 1)
	defer rl.Close()
	hc := &http.Client{Transport: Chain(nil, RateLimit(rl))}

	// first call spends the burst
	resp, err := hc.Get(srv.URL + "/a")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	resp.Body.Close()

	// other endpoints have their own bucket
	resp, err = hc.Get(srv.URL + "/b")
	if err != nil {
		t.Fatalf("other endpoint: %v", err)
	}
	resp.Body.Close()

	// same endpoint must wait ~1s; a short deadline aborts it
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/a", nil)
	if _, err := hc.Do(req); err == nil {
		t.Fatal("expected wait to be cut short by context")
	}
	if hits.Load() != 2 {
		t.Errorf("expected 2 hits, got %d", hits.Load())
	}
}
