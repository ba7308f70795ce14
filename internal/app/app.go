// Package app はアプリケーションの初期化と起動モードごとのワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/folio/internal/blog"
	"github.com/hitoshi/folio/internal/chat"
	"github.com/hitoshi/folio/internal/config"
	"github.com/hitoshi/folio/internal/database"
	"github.com/hitoshi/folio/internal/handler"
	"github.com/hitoshi/folio/internal/logger"
	"github.com/hitoshi/folio/internal/metrics"
	"github.com/hitoshi/folio/internal/middleware"
	"github.com/hitoshi/folio/internal/repository"
	"github.com/hitoshi/folio/internal/security"
	"github.com/hitoshi/folio/internal/site"
	"github.com/hitoshi/folio/internal/worker/blogsync"
	"github.com/hitoshi/folio/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandSync:
		return runSync(cfg)
	case CommandSitemap:
		return runSitemap(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// siteProfile は設定からサイト所有者のプロフィールを構築する。
func siteProfile(cfg *config.Config) site.Profile {
	return site.Profile{
		Name: cfg.SiteAuthor,
		URL:  cfg.BaseURL,
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリとサービスの初期化
	postRepo := repository.NewPostgresPostRepo(db)
	blogService := blog.NewService(postRepo)

	chatClient := chat.NewClient(
		&http.Client{Timeout: cfg.ChatTimeout},
		slog.Default(),
		cfg.ChatAPIURL, cfg.ChatAPIKey, cfg.ChatSystemHint,
		cfg.ChatMaxRetries,
	)
	chatService := chat.NewService(chatClient, slog.Default(), cfg.ChatMaxHistory)

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. レート制限の初期化（configの値はreq/min単位）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.ChatRate = rate.Limit(float64(cfg.RateLimitChat) / 60.0)
	rateLimiterCfg.ChatBurst = cfg.RateLimitChat
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 5. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Metrics:           collector,
		Gatherer:          registry,
		BlogService:       blogService,
		ChatService:       chatService,
		ChatTimeout:       cfg.ChatTimeout,
		Profile:           siteProfile(cfg),
		DB:                db,
	})

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // AIバックエンドの応答待ちを考慮
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runSync はブログ同期ワーカーモードで起動する。
// DB接続を開き、フィード同期スケジューラと記事クリーンアップジョブを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runSync(cfg *config.Config) error {
	if len(cfg.BlogFeedURLs) == 0 {
		return fmt.Errorf("BLOG_FEED_URLS is not set: nothing to sync")
	}

	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (sync worker)")

	// 2. リポジトリの初期化
	postRepo := repository.NewPostgresPostRepo(db)
	stateRepo := repository.NewPostgresSourceStateRepo(db)

	// 3. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()

	// 4. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. フェッチャーとスケジューラの初期化
	fetcher := blogsync.NewFetcher(
		postRepo, stateRepo, sanitizer, ssrfGuard,
		slog.Default(), cfg.FetchTimeout, cfg.FetchMaxSize, cfg.FetchInterval,
	)
	scheduler := blogsync.NewScheduler(
		cfg.BlogFeedURLs, stateRepo, fetcher, collector,
		slog.Default(), cfg.FetchMaxConcurrent,
	)

	// 6. クリーンアップジョブの初期化
	cleanupJob := cleanup.NewCleanupJob(postRepo, slog.Default(), cfg.PostRetentionDays)

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down sync worker...")
		cancel()
	}()

	slog.Info("sync worker starting",
		slog.Duration("fetch_interval", cfg.FetchInterval),
		slog.Int("max_concurrent", cfg.FetchMaxConcurrent),
		slog.Int("source_count", len(cfg.BlogFeedURLs)),
	)

	// クリーンアップジョブを日次でバックグラウンド実行
	go cleanupJob.StartDaily(ctx)

	// 同期スケジューラをメインgoroutineで実行（ブロッキング）
	scheduler.Start(ctx, cfg.FetchInterval)

	slog.Info("sync worker stopped gracefully")
	return nil
}

// runSitemap はサイトの静的アーティファクトを生成する。
// sitemap.xml、robots.txt、JSON-LDスニペットを出力ディレクトリに書き出す。
func runSitemap(cfg *config.Config) error {
	generator := site.NewGenerator(cfg.BaseURL, cfg.SiteOutputDir, slog.Default())

	if err := generator.WriteFiles(siteProfile(cfg)); err != nil {
		return fmt.Errorf("failed to generate site artifacts: %w", err)
	}

	slog.Info("site artifacts generated",
		slog.String("output_dir", cfg.SiteOutputDir),
	)
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
