package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/waffle/internal/model"
)

// mockKeyService はKeyServiceInterfaceのモック。
type mockKeyService struct {
	saveKeyFn   func(ctx context.Context, userID, providerID, plaintextKey string) error
	keyStatusFn func(ctx context.Context, userID, providerID string) (bool, error)
	deleteKeyFn func(ctx context.Context, userID, providerID string) error
}

func (m *mockKeyService) SaveKey(ctx context.Context, userID, providerID, plaintextKey string) error {
	return m.saveKeyFn(ctx, userID, providerID, plaintextKey)
}

func (m *mockKeyService) KeyStatus(ctx context.Context, userID, providerID string) (bool, error) {
	return m.keyStatusFn(ctx, userID, providerID)
}

func (m *mockKeyService) DeleteKey(ctx context.Context, userID, providerID string) error {
	return m.deleteKeyFn(ctx, userID, providerID)
}

// TestKeyHandler_SaveKey はAPIキー保存の正常系を検証する。
// レスポンスに平文キーが含まれないこと。
func TestKeyHandler_SaveKey(t *testing.T) {
	var gotKey string
	svc := &mockKeyService{
		saveKeyFn: func(ctx context.Context, userID, providerID, plaintextKey string) error {
			if userID != "user-1" || providerID != "gemini" {
				t.Errorf("called with (%q, %q), want (user-1, gemini)", userID, providerID)
			}
			gotKey = plaintextKey
			return nil
		},
	}
	h := NewKeyHandler(svc)

	body := `{"api_key":"sk-secret-key"}`
	req := httptest.NewRequest(http.MethodPut, "/api/provider-keys/gemini", strings.NewReader(body))
	req = withUserInfo(withChiURLParam(req, "provider", "gemini"), "user-1")
	rec := httptest.NewRecorder()

	h.SaveKey(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if gotKey != "sk-secret-key" {
		t.Errorf("plaintextKey = %q, want sk-secret-key", gotKey)
	}

	var resp keyStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Provider != "gemini" || !resp.HasAPIKey {
		t.Errorf("response = %+v, want {gemini true}", resp)
	}
	if strings.Contains(rec.Body.String(), "sk-secret-key") {
		t.Error("response must not contain the plaintext key")
	}
}

// TestKeyHandler_SaveKey_EmptyKey_Returns400 は空キーの保存が400になることを検証する。
func TestKeyHandler_SaveKey_EmptyKey_Returns400(t *testing.T) {
	svc := &mockKeyService{
		saveKeyFn: func(ctx context.Context, userID, providerID, plaintextKey string) error {
			t.Error("service should not be called for empty key")
			return nil
		},
	}
	h := NewKeyHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/provider-keys/gemini", strings.NewReader(`{"api_key":""}`))
	req = withUserInfo(withChiURLParam(req, "provider", "gemini"), "user-1")
	rec := httptest.NewRecorder()

	h.SaveKey(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestKeyHandler_SaveKey_UnknownProvider_Returns400 は未知プロバイダーへの保存が
// 400と統一エラーフォーマットになることを検証する。
func TestKeyHandler_SaveKey_UnknownProvider_Returns400(t *testing.T) {
	svc := &mockKeyService{
		saveKeyFn: func(ctx context.Context, userID, providerID, plaintextKey string) error {
			return model.NewInvalidProviderError(providerID)
		},
	}
	h := NewKeyHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/provider-keys/no-such", strings.NewReader(`{"api_key":"sk-key"}`))
	req = withUserInfo(withChiURLParam(req, "provider", "no-such"), "user-1")
	rec := httptest.NewRecorder()

	h.SaveKey(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := parseErrorResponse(t, rec)
	if body["code"] != model.ErrCodeInvalidProvider {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeInvalidProvider)
	}
}

// TestKeyHandler_KeyStatus はキー状態取得を検証する。
func TestKeyHandler_KeyStatus(t *testing.T) {
	svc := &mockKeyService{
		keyStatusFn: func(ctx context.Context, userID, providerID string) (bool, error) {
			return true, nil
		},
	}
	h := NewKeyHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/provider-keys/openai", nil)
	req = withUserInfo(withChiURLParam(req, "provider", "openai"), "user-1")
	rec := httptest.NewRecorder()

	h.KeyStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp keyStatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Provider != "openai" || !resp.HasAPIKey {
		t.Errorf("response = %+v, want {openai true}", resp)
	}
}

// TestKeyHandler_DeleteKey は削除成功が204になることを検証する。
func TestKeyHandler_DeleteKey(t *testing.T) {
	called := false
	svc := &mockKeyService{
		deleteKeyFn: func(ctx context.Context, userID, providerID string) error {
			called = true
			return nil
		},
	}
	h := NewKeyHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/provider-keys/gemini", nil)
	req = withUserInfo(withChiURLParam(req, "provider", "gemini"), "user-1")
	rec := httptest.NewRecorder()

	h.DeleteKey(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if !called {
		t.Error("service DeleteKey should be called")
	}
}

// TestKeyHandler_DeleteKey_Absent_Returns404 は未保存キーの削除が404になることを検証する。
func TestKeyHandler_DeleteKey_Absent_Returns404(t *testing.T) {
	svc := &mockKeyService{
		deleteKeyFn: func(ctx context.Context, userID, providerID string) error {
			return model.NewAPIKeyNotFoundError(providerID)
		},
	}
	h := NewKeyHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/provider-keys/gemini", nil)
	req = withUserInfo(withChiURLParam(req, "provider", "gemini"), "user-1")
	rec := httptest.NewRecorder()

	h.DeleteKey(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := parseErrorResponse(t, rec)
	if body["code"] != model.ErrCodeAPIKeyNotFound {
		t.Errorf("code = %q, want %q", body["code"], model.ErrCodeAPIKeyNotFound)
	}
}

// TestKeyHandler_WithoutUser_Returns401 は認証情報なしの各操作が401になることを検証する。
func TestKeyHandler_WithoutUser_Returns401(t *testing.T) {
	svc := &mockKeyService{
		saveKeyFn: func(ctx context.Context, userID, providerID, plaintextKey string) error {
			t.Error("service should not be called")
			return nil
		},
		keyStatusFn: func(ctx context.Context, userID, providerID string) (bool, error) {
			t.Error("service should not be called")
			return false, nil
		},
		deleteKeyFn: func(ctx context.Context, userID, providerID string) error {
			t.Error("service should not be called")
			return nil
		},
	}
	h := NewKeyHandler(svc)

	calls := []struct {
		name string
		do   func(w http.ResponseWriter, r *http.Request)
		req  *http.Request
	}{
		{"save", h.SaveKey, httptest.NewRequest(http.MethodPut, "/api/provider-keys/gemini", strings.NewReader(`{"api_key":"k"}`))},
		{"status", h.KeyStatus, httptest.NewRequest(http.MethodGet, "/api/provider-keys/gemini", nil)},
		{"delete", h.DeleteKey, httptest.NewRequest(http.MethodDelete, "/api/provider-keys/gemini", nil)},
	}

	for _, tc := range calls {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.do(rec, withChiURLParam(tc.req, "provider", "gemini"))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}
