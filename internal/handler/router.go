package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/waffle/internal/catalog"
	"github.com/hitoshi/waffle/internal/metrics"
	"github.com/hitoshi/waffle/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Verifier       middleware.TokenVerifier
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter
	Collector      metrics.MetricsCollector

	// カタログ（プロバイダー一覧は認証不要のため直接参照）
	Catalog *catalog.Catalog

	// サービス
	SettingsService SettingsServiceInterface
	KeyService      KeyServiceInterface

	// 運用
	HealthChecker HealthChecker
	Gatherer      prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → RecoveryMiddleware → LoggingMiddleware → MetricsMiddleware
//	→（認証ルートのみ）AuthMiddleware → RateLimitMiddleware
//
// /health、/metrics、プロバイダーカタログは認証不要。
func NewRouter(deps *RouterDeps, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.AllowedOrigins))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(deps.Collector))

	settingsHandler := NewSettingsHandler(deps.SettingsService)
	keyHandler := NewKeyHandler(deps.KeyService)
	providerHandler := NewProviderHandler(deps.Catalog)
	authHandler := NewAuthHandler()
	healthHandler := NewHealthHandler(deps.HealthChecker)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))

	r.Route("/api/providers", func(r chi.Router) {
		r.Get("/", providerHandler.ListProviders)
		r.Get("/{id}/models", providerHandler.ListModels)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Verifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 認証確認・プロフィール
		r.Get("/auth/verify", authHandler.Verify)
		r.Get("/api/profile", authHandler.Profile)

		// 設定
		r.Route("/api/settings", func(r chi.Router) {
			r.Get("/", settingsHandler.GetSettings)
			r.Put("/", settingsHandler.SaveSettings)
		})

		// プロバイダーAPIキー管理（書き込みは専用レート制限を追加）
		r.Route("/api/provider-keys/{provider}", func(r chi.Router) {
			r.Get("/", keyHandler.KeyStatus)
			r.With(deps.RateLimiter.KeyWriteMiddleware()).Put("/", keyHandler.SaveKey)
			r.With(deps.RateLimiter.KeyWriteMiddleware()).Delete("/", keyHandler.DeleteKey)
		})
	})

	return r
}
