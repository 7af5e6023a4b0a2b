package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/waffle/internal/middleware"
	"github.com/hitoshi/waffle/internal/model"
	"github.com/hitoshi/waffle/internal/settings"
)

// SettingsServiceInterface は設定ハンドラーが必要とするサービスインターフェース。
type SettingsServiceInterface interface {
	// GetSettings はユーザーの設定ビューを返す。
	GetSettings(ctx context.Context, userID string) (*settings.View, error)
	// SaveSelection はユーザーの選択とオプションのAPIキーを保存する。
	SaveSelection(ctx context.Context, userID, providerID, modelID string, apiKey *string) error
}

// SettingsHandler はユーザー設定のHTTPハンドラー。
type SettingsHandler struct {
	service SettingsServiceInterface
}

// NewSettingsHandler はSettingsHandlerを生成する。
func NewSettingsHandler(service SettingsServiceInterface) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// settingsResponse はユーザー設定のAPIレスポンス。
// provider_api_keysはカタログの全プロバイダーを明示的なtrue/falseで含む。
type settingsResponse struct {
	CurrentProvider *string         `json:"current_provider"`
	CurrentModel    *string         `json:"current_model"`
	ProviderAPIKeys map[string]bool `json:"provider_api_keys"`
}

// saveSettingsRequest は設定保存リクエストのボディ。
// api_keyはモデル変更のみの場合は省略可能。
type saveSettingsRequest struct {
	Provider string  `json:"provider"`
	Model    string  `json:"model"`
	APIKey   *string `json:"api_key"`
}

// GetSettings はユーザーの設定ビューを取得する。
// GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	view, err := h.service.GetSettings(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settingsResponse{
		CurrentProvider: view.CurrentProvider,
		CurrentModel:    view.CurrentModel,
		ProviderAPIKeys: view.ProviderHasKey,
	})
}

// SaveSettings はユーザーの選択とオプションのAPIキーを保存する。
// PUT /api/settings
func (h *SettingsHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	var req saveSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}

	if err := h.service.SaveSelection(r.Context(), userID, req.Provider, req.Model, req.APIKey); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "設定を保存しました。"})
}
