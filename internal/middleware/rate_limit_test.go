package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitByIP_AllowsWithinLimit(t *testing.T) {
	limiter := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 5})

	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "192.168.1.1:8080"
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Errorf("request %d: expected status 200, got %d", i+1, recorder.Code)
		}
	}
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	limiter := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 2})

	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var lastCode int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "192.168.1.2:8080"
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, req)
		lastCode = recorder.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429 after exceeding limit, got %d", lastCode)
	}
}

func TestRateLimitByIP_IndependentPerIP(t *testing.T) {
	limiter := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 1})

	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest("POST", "/login", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	firstRec := httptest.NewRecorder()
	handler.ServeHTTP(firstRec, first)

	second := httptest.NewRequest("POST", "/login", nil)
	second.RemoteAddr = "10.0.0.2:1234"
	secondRec := httptest.NewRecorder()
	handler.ServeHTTP(secondRec, second)

	if secondRec.Code != http.StatusOK {
		t.Errorf("a different address must not share the first one's budget, got %d", secondRec.Code)
	}
}
