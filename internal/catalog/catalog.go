// Package catalog はプロバイダーとモデルの静的レジストリを提供する。
package catalog

import "github.com/hitoshi/waffle/internal/model"

// Catalog はプロバイダーとモデルの読み取り専用レジストリ。
// プロセス起動時に1回初期化され、以降イミュータブル。
// 同期なしの並行読み取りに対して安全。
type Catalog struct {
	providers []model.Provider
	index     map[string]int
}

// New は定義順を保持したCatalogを生成する。
func New(providers []model.Provider) *Catalog {
	index := make(map[string]int, len(providers))
	for i, p := range providers {
		index[p.ID] = i
	}
	return &Catalog{
		providers: providers,
		index:     index,
	}
}

// Default は本サービスが対応するプロバイダー定義からCatalogを生成する。
func Default() *Catalog {
	return New([]model.Provider{
		{
			ID:             "gemini",
			Name:           "Google Gemini",
			Description:    "Google's advanced AI models for natural conversations",
			APIKeyRequired: true,
			Models: []model.Model{
				{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Description: "Fast and efficient model for general conversations"},
			},
		},
		{
			ID:             "openai",
			Name:           "OpenAI",
			Description:    "Industry-leading AI models from OpenAI",
			APIKeyRequired: true,
			Models: []model.Model{
				{ID: "gpt-5-mini", Name: "GPT-5 Mini", Description: "Fast and cost-effective model for everyday tasks"},
				{ID: "gpt-5-nano", Name: "GPT-5 Nano", Description: "Advanced model with enhanced capabilities"},
				{ID: "gpt-4o-mini", Name: "GPT-4o Mini", Description: "Flagship model with superior reasoning abilities"},
			},
		},
		{
			ID:             "groq",
			Name:           "Groq",
			Description:    "Ultra-fast inference with various open-source models",
			APIKeyRequired: true,
			Models: []model.Model{
				{ID: "llama-3.3-70b-versatile", Name: "Llama 3.3 70B Versatile", Description: "Versatile large language model"},
				{ID: "openai/gpt-oss-20b", Name: "GPT-OSS 20B", Description: "Mixture of experts model for complex tasks"},
				{ID: "openai/gpt-oss-120b", Name: "GPT-OSS 120B", Description: "Fast and efficient open-source model"},
				{ID: "qwen/qwen3-32b", Name: "Qwen 3.2 32B", Description: "Large versatile model for complex reasoning"},
				{ID: "meta-llama/llama-4-maverick-17b-128e-instruct", Name: "Llama 4 Maverick 17B 128E Instruct", Description: "Open model fine-tuned for instruction following"},
				{ID: "deepseek-r1-distill-llama-70b", Name: "DeepSeek R1 Distill Llama 70B", Description: "DeepSeek R1 Distill Llama 70B"},
			},
		},
	})
}

// ListProviders は定義順のプロバイダー一覧を返す。
func (c *Catalog) ListProviders() []model.Provider {
	result := make([]model.Provider, len(c.providers))
	copy(result, c.providers)
	return result
}

// ModelsOf は指定プロバイダーのモデル一覧を定義順で返す。
// 未知のプロバイダーに対してはエラーではなく空のスライスを返す。
// 「未知のプロバイダー」と「モデルなし」の区別はExistsで行うこと。
func (c *Catalog) ModelsOf(providerID string) []model.Model {
	i, ok := c.index[providerID]
	if !ok {
		return []model.Model{}
	}
	models := make([]model.Model, len(c.providers[i].Models))
	copy(models, c.providers[i].Models)
	return models
}

// Exists は指定IDのプロバイダーがカタログに存在するかを返す。
func (c *Catalog) Exists(providerID string) bool {
	_, ok := c.index[providerID]
	return ok
}

// ModelExists は指定モデルが指定プロバイダーに属するかを返す。
func (c *Catalog) ModelExists(providerID, modelID string) bool {
	i, ok := c.index[providerID]
	if !ok {
		return false
	}
	for _, m := range c.providers[i].Models {
		if m.ID == modelID {
			return true
		}
	}
	return false
}
