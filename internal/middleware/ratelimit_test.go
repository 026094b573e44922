package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterEnforcesBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/chat/rooms", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		if code := do("10.0.0.1:5000"); code != http.StatusOK {
			t.Fatalf("request %d within burst: got %d", i+1, code)
		}
	}
	if code := do("10.0.0.1:5000"); code != http.StatusTooManyRequests {
		t.Fatalf("over-burst request: expected 429, got %d", code)
	}

	// Budgets are per IP.
	if code := do("10.0.0.2:5000"); code != http.StatusOK {
		t.Fatalf("different IP: expected 200, got %d", code)
	}
}
