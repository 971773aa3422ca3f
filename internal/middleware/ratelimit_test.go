package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testRateLimiterConfig(generalBurst, claimBurst int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0),
		GeneralBurst:    generalBurst,
		ClaimRate:       rate.Limit(1.0 / 60.0),
		ClaimBurst:      claimBurst,
		CleanupInterval: time.Hour,
	}
}

// withUser はSessionMiddlewareを通過した状態のリクエストを作る。
func withUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(ContextWithUserID(req.Context(), userID))
}

func TestGeneralMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(3, 1))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/users/time-intervals", nil), "user-1"))
		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Result().StatusCode, http.StatusOK)
		}
	}
}

func TestGeneralMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(2, 1))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, withUser(httptest.NewRequest(http.MethodGet, "/users/time-intervals", nil), "user-1"))
	}

	resp := last.Result()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	if retry, err := strconv.Atoi(resp.Header.Get("Retry-After")); err != nil || retry != 60 {
		t.Errorf("Retry-After = %q, want 60", resp.Header.Get("Retry-After"))
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != ErrCodeRateLimited {
		t.Errorf("code = %q, want %q", body.Code, ErrCodeRateLimited)
	}
}

func TestGeneralMiddleware_IsolatesUsers(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/", nil), "user-a"))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/", nil), "user-a"))
	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("user-a second request: status = %d, want 429", w.Result().StatusCode)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/", nil), "user-b"))
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("user-b: status = %d, want 200", w.Result().StatusCode)
	}
	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", rl.GeneralLimiterCount())
	}
}

func TestGeneralMiddleware_NoUserID_Returns401(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()

	w := httptest.NewRecorder()
	rl.GeneralMiddleware()(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assertUnauthorizedJSON(t, w)
}

func TestClaimMiddleware_LimitsByClientIP(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(5, 1))
	defer rl.Stop()
	handler := rl.ClaimMiddleware()(okHandler())

	newReq := func(addr string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/users", nil)
		req.RemoteAddr = addr
		return req
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, newReq("203.0.113.1:5000"))
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", w.Result().StatusCode)
	}

	// 同じIPの別ポートは同一クライアント
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, newReq("203.0.113.1:5001"))
	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("same IP: status = %d, want 429", w.Result().StatusCode)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, newReq("203.0.113.2:5000"))
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("other IP: status = %d, want 200", w.Result().StatusCode)
	}
	if rl.ClaimLimiterCount() != 2 {
		t.Errorf("ClaimLimiterCount = %d, want 2", rl.ClaimLimiterCount())
	}
}

func TestClaimMiddleware_IndependentFromGeneralLimit(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()

	req := withUser(httptest.NewRequest(http.MethodPost, "/users", nil), "user-1")
	rl.GeneralMiddleware()(okHandler()).ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	rl.ClaimMiddleware()(okHandler()).ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Result().StatusCode)
	}
}

func TestRateLimiter_CleanupRemovesExpiredEntries(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(5, 5))
	defer rl.Stop()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return base }

	rl.GeneralMiddleware()(okHandler()).ServeHTTP(httptest.NewRecorder(),
		withUser(httptest.NewRequest(http.MethodGet, "/", nil), "user-1"))
	rl.ClaimMiddleware()(okHandler()).ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/users", nil))

	rl.now = func() time.Time { return base.Add(time.Hour) }
	rl.cleanup()
	if rl.GeneralLimiterCount() != 1 || rl.ClaimLimiterCount() != 1 {
		t.Fatalf("entries within TTL should remain: general=%d claim=%d",
			rl.GeneralLimiterCount(), rl.ClaimLimiterCount())
	}

	rl.now = func() time.Time { return base.Add(3 * time.Hour) }
	rl.cleanup()
	if rl.GeneralLimiterCount() != 0 || rl.ClaimLimiterCount() != 0 {
		t.Errorf("expired entries should be removed: general=%d claim=%d",
			rl.GeneralLimiterCount(), rl.ClaimLimiterCount())
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	rl.Stop()
	rl.Stop()
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()

	if cfg.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", cfg.GeneralBurst)
	}
	if cfg.ClaimBurst != 10 {
		t.Errorf("ClaimBurst = %d, want 10", cfg.ClaimBurst)
	}
	if float64(cfg.GeneralRate) != 2.0 {
		t.Errorf("GeneralRate = %v, want 2", cfg.GeneralRate)
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want 5m", cfg.CleanupInterval)
	}
}
