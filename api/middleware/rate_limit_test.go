package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type memoryCounterStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (s *memoryCounterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	return s.counts[key], nil
}

func TestWriteRateLimitBlocksAfterLimit(t *testing.T) {
	store := &memoryCounterStore{}
	policy := NewWriteRateLimitPolicy(time.Minute, 2)
	handler := WriteRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() int {
		r := httptest.NewRequest("POST", "/api/v1/cart/items", nil)
		r.RemoteAddr = "10.0.0.1:4567"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	if got := send(); got != http.StatusOK {
		t.Fatalf("first write should pass, got %d", got)
	}
	if got := send(); got != http.StatusOK {
		t.Fatalf("second write should pass, got %d", got)
	}
	if got := send(); got != http.StatusConflict {
		t.Fatalf("third write should be limited, got %d", got)
	}
}

func TestWriteRateLimitIgnoresReads(t *testing.T) {
	store := &memoryCounterStore{}
	policy := NewWriteRateLimitPolicy(time.Minute, 1)
	handler := WriteRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		r := httptest.NewRequest("GET", "/api/v1/cart", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("read %d should pass, got %d", i, w.Code)
		}
	}
}

func TestWriteRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	handler := WriteRateLimit(WriteRateLimitPolicy{}, &memoryCounterStore{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest("POST", "/api/v1/cart/items", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("disabled policy should pass writes, got %d", w.Code)
	}
}
