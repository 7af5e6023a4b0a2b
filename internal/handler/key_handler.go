package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/waffle/internal/middleware"
	"github.com/hitoshi/waffle/internal/model"
)

// KeyServiceInterface はAPIキーハンドラーが必要とするサービスインターフェース。
type KeyServiceInterface interface {
	// SaveKey はAPIキーを保存・更新する。
	SaveKey(ctx context.Context, userID, providerID, plaintextKey string) error
	// KeyStatus はAPIキーの保存有無を返す。
	KeyStatus(ctx context.Context, userID, providerID string) (bool, error)
	// DeleteKey はAPIキーを削除する。未保存ならNotFoundエラーを返す。
	DeleteKey(ctx context.Context, userID, providerID string) error
}

// KeyHandler はプロバイダーAPIキー管理のHTTPハンドラー。
type KeyHandler struct {
	service KeyServiceInterface
}

// NewKeyHandler はKeyHandlerを生成する。
func NewKeyHandler(service KeyServiceInterface) *KeyHandler {
	return &KeyHandler{service: service}
}

// saveKeyRequest はAPIキー保存リクエストのボディ。
type saveKeyRequest struct {
	APIKey string `json:"api_key"`
}

// keyStatusResponse はAPIキー状態のAPIレスポンス。
// 平文キーも暗号文もレスポンスには含めない。
type keyStatusResponse struct {
	Provider  string `json:"provider"`
	HasAPIKey bool   `json:"has_api_key"`
}

// SaveKey は指定プロバイダーのAPIキーを保存・更新する。
// PUT /api/provider-keys/{provider}
func (h *KeyHandler) SaveKey(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	providerID := chi.URLParam(r, "provider")

	var req saveKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return
	}
	if req.APIKey == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "APIキーが空です。",
			Category: "validation",
			Action:   "api_keyフィールドにAPIキーを指定してください。",
		})
		return
	}

	if err := h.service.SaveKey(r.Context(), userID, providerID, req.APIKey); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, keyStatusResponse{Provider: providerID, HasAPIKey: true})
}

// KeyStatus は指定プロバイダーのAPIキー保存有無を返す。
// GET /api/provider-keys/{provider}
func (h *KeyHandler) KeyStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	providerID := chi.URLParam(r, "provider")

	hasKey, err := h.service.KeyStatus(r.Context(), userID, providerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, keyStatusResponse{Provider: providerID, HasAPIKey: hasKey})
}

// DeleteKey は指定プロバイダーのAPIキーを削除する。
// 未保存の場合は404を返す（再削除も404）。
// DELETE /api/provider-keys/{provider}
func (h *KeyHandler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	providerID := chi.URLParam(r, "provider")

	if err := h.service.DeleteKey(r.Context(), userID, providerID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
