package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/metrics"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/middleware"
)

// HealthChecker はDB疎通確認のインターフェース。*sql.DBが満たす。
type HealthChecker interface {
	Ping() error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger      *slog.Logger
	RateLimiter *middleware.RateLimiter

	// ドキュメント生成
	GeneratorService GeneratorService

	// 運用
	HealthChecker HealthChecker
	Gatherer      prometheus.Gatherer
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → LoggingMiddleware → RateLimitMiddleware
//
// 運用ルート（/healthz, /metrics）はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	docHandler := NewDocumentHandler(deps.GeneratorService)

	// --- 運用ルート ---

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := deps.HealthChecker.Ping(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	// --- ドキュメント配信ルート ---
	// ミドルウェアスタック: RateLimit
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.Middleware())

		// サイト全体のドキュメント
		r.Get("/llms.txt", docHandler.Navigation)
		r.Get("/llms-full.txt", docHandler.FullContent)
		r.Get("/sitemaps.txt", docHandler.Sitemaps)

		// エンティティ別ドキュメント
		// カテゴリはサブカテゴリの親slug付きパスにも応答する
		r.Get("/c/{slug}/{id}/llms.txt", docHandler.Category)
		r.Get("/c/{parentSlug}/{slug}/{id}/llms.txt", docHandler.Category)
		r.Get("/t/{slug}/{id}/llms.txt", docHandler.Topic)
		r.Get("/tag/{name}/llms.txt", docHandler.Tag)

		// 管理用キャッシュ無効化
		r.Post("/admin/llms/cache/clear", docHandler.ClearCache)
	})

	return r
}
