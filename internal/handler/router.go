package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/folio/internal/metrics"
	"github.com/hitoshi/folio/internal/middleware"
	"github.com/hitoshi/folio/internal/site"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector
	Gatherer          prometheus.Gatherer

	// サービス
	BlogService BlogServiceInterface
	ChatService ChatServiceInterface
	ChatTimeout time.Duration

	// メタデータ
	Profile site.Profile

	// ヘルスチェック
	DB Pinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Logging → Recovery → RateLimit(General)
//
// /healthzと/metricsはレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))

	postHandler := NewPostHandler(deps.BlogService)
	chatHandler := NewChatHandler(deps.ChatService, deps.Metrics, deps.ChatTimeout)
	metaHandler := NewMetaHandler(deps.Profile)
	healthHandler := NewHealthHandler(deps.DB, deps.Logger)

	// --- 運用エンドポイント（レート制限の外）---
	r.Get("/healthz", healthHandler.Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	// --- APIルート ---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/posts", func(r chi.Router) {
			r.Get("/", postHandler.ListPosts)
			r.Get("/{id}", postHandler.GetPost)
		})

		// チャットはAIバックエンドのコストが高いため専用のレート制限を追加
		r.With(deps.RateLimiter.ChatMiddleware()).Post("/api/chat", chatHandler.Chat)

		r.Get("/api/meta/jsonld", metaHandler.GetJSONLD)
	})

	return r
}
