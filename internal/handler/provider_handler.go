package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/waffle/internal/catalog"
	"github.com/hitoshi/waffle/internal/model"
)

// ProviderHandler はプロバイダーカタログのHTTPハンドラー。
// カタログは静的な参照データのため、サービス層を介さず直接参照する。
type ProviderHandler struct {
	catalog *catalog.Catalog
}

// NewProviderHandler はProviderHandlerを生成する。
func NewProviderHandler(cat *catalog.Catalog) *ProviderHandler {
	return &ProviderHandler{catalog: cat}
}

// modelResponse はモデル情報のAPIレスポンス。
type modelResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// providerResponse はプロバイダー情報のAPIレスポンス。
type providerResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Models         []modelResponse `json:"models"`
	APIKeyRequired bool            `json:"api_key_required"`
}

// ListProviders はプロバイダー一覧を定義順で返す。
// GET /api/providers
func (h *ProviderHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers := h.catalog.ListProviders()

	result := make([]providerResponse, len(providers))
	for i, p := range providers {
		result[i] = toProviderResponse(p)
	}

	writeJSON(w, http.StatusOK, result)
}

// ListModels は指定プロバイダーのモデル一覧を返す。
// 未知のプロバイダーには404を返す。
// GET /api/providers/{id}/models
func (h *ProviderHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	providerID := chi.URLParam(r, "id")

	if !h.catalog.Exists(providerID) {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewProviderNotFoundError(providerID))
		return
	}

	models := h.catalog.ModelsOf(providerID)
	result := make([]modelResponse, len(models))
	for i, m := range models {
		result[i] = modelResponse{ID: m.ID, Name: m.Name, Description: m.Description}
	}

	writeJSON(w, http.StatusOK, map[string][]modelResponse{"models": result})
}

// toProviderResponse はドメインのProviderをhandlerのレスポンス型に変換する。
func toProviderResponse(p model.Provider) providerResponse {
	models := make([]modelResponse, len(p.Models))
	for i, m := range p.Models {
		models[i] = modelResponse{ID: m.ID, Name: m.Name, Description: m.Description}
	}
	return providerResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Models:         models,
		APIKeyRequired: p.APIKeyRequired,
	}
}
