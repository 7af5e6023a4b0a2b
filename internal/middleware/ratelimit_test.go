package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/waffle/internal/model"
)

func rateLimitTestConfig(burst int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001), // テスト中に補充されない低レート
		GeneralBurst:    burst,
		KeyWriteRate:    rate.Limit(0.001),
		KeyWriteBurst:   burst,
		CleanupInterval: time.Hour,
	}
}

func authedRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	ctx := ContextWithUserInfo(req.Context(), &model.UserInfo{UserID: userID})
	return req.WithContext(ctx)
}

// TestRateLimiter_AllowsWithinBurst はバースト内のリクエストが通過することを検証する。
func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(rateLimitTestConfig(3))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("user-1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
}

// TestRateLimiter_ExceedingBurst_Returns429 はバースト超過が429になることを検証する。
func TestRateLimiter_ExceedingBurst_Returns429(t *testing.T) {
	rl := NewRateLimiter(rateLimitTestConfig(2))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("user-1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON body, got error: %v", err)
	}
	if body["code"] != "RATE_LIMITED" {
		t.Errorf("code = %q, want RATE_LIMITED", body["code"])
	}
}

// TestRateLimiter_IsPerUser はレート制限がユーザー単位で独立していることを検証する。
func TestRateLimiter_IsPerUser(t *testing.T) {
	rl := NewRateLimiter(rateLimitTestConfig(1))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// user-1のバーストを使い切る
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-1"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("user-1 second request: status = %d, want 429", rec.Code)
	}

	// user-2は影響を受けない
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-2"))
	if rec.Code != http.StatusOK {
		t.Errorf("user-2 first request: status = %d, want 200", rec.Code)
	}
}

// TestRateLimiter_GeneralAndKeyWriteAreIndependent は2種類のレート制限が
// 独立にカウントされることを検証する。
func TestRateLimiter_GeneralAndKeyWriteAreIndependent(t *testing.T) {
	rl := NewRateLimiter(rateLimitTestConfig(1))
	defer rl.Stop()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	general := rl.GeneralMiddleware()(ok)
	keyWrite := rl.KeyWriteMiddleware()(ok)

	// generalのバーストを使い切ってもkey_writeは通過する
	rec := httptest.NewRecorder()
	general.ServeHTTP(rec, authedRequest("user-1"))
	rec = httptest.NewRecorder()
	general.ServeHTTP(rec, authedRequest("user-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("general second request: status = %d, want 429", rec.Code)
	}

	rec = httptest.NewRecorder()
	keyWrite.ServeHTTP(rec, authedRequest("user-1"))
	if rec.Code != http.StatusOK {
		t.Errorf("key write request: status = %d, want 200", rec.Code)
	}
}

// TestRateLimiter_WithoutUserInfo_Returns401 は認証前のリクエストが401になることを検証する。
func TestRateLimiter_WithoutUserInfo_Returns401(t *testing.T) {
	rl := NewRateLimiter(rateLimitTestConfig(10))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestLimiterSet_Cleanup は期限切れエントリが削除されることを検証する。
func TestLimiterSet_Cleanup(t *testing.T) {
	set := newLimiterSet(rate.Limit(1), 1)

	set.get("user-1")
	set.get("user-2")
	if set.count() != 2 {
		t.Fatalf("count = %d, want 2", set.count())
	}

	// 全エントリが期限切れになるmaxAgeでクリーンアップ
	time.Sleep(10 * time.Millisecond)
	set.cleanup(time.Nanosecond)

	if set.count() != 0 {
		t.Errorf("count after cleanup = %d, want 0", set.count())
	}
}

// TestRateLimiter_LimiterCounts はエントリ数の観測用メソッドを検証する。
func TestRateLimiter_LimiterCounts(t *testing.T) {
	rl := NewRateLimiter(rateLimitTestConfig(5))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), authedRequest("user-1"))
	handler.ServeHTTP(httptest.NewRecorder(), authedRequest("user-2"))

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", got)
	}
	if got := rl.KeyWriteLimiterCount(); got != 0 {
		t.Errorf("KeyWriteLimiterCount = %d, want 0", got)
	}
}
