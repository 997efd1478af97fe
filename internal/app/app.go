// Package app はアプリケーションの起動とワイヤリングを提供する。
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
	"github.com/redis/go-redis/v9"

	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/cache"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/config"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/database"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/document"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/generator"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/handler"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/logger"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/metrics"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/middleware"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/ranking"
	"github.com/TheBaby5/updated-discourse-llms-txt-generator/internal/repository"
)

// cacheKeyPrefix はRedis使用時の全キャッシュキーの名前空間。
const cacheKeyPrefix = "llmstxt"

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
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はHTTPサーバーモードで起動する。
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

	// 2. リポジトリの初期化
	topicRepo := repository.NewPostgresTopicRepo(db)
	categoryRepo := repository.NewPostgresCategoryRepo(db)
	postRepo := repository.NewPostgresPostRepo(db)
	userRepo := repository.NewPostgresUserRepo(db)
	tagRepo := repository.NewPostgresTagRepo(db)

	// 3. キャッシュストアの選択
	// REDIS_ADDRが未設定の場合はプロセス内メモリキャッシュで動作する
	store, closeStore, err := newCacheStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize cache store: %w", err)
	}
	defer closeStore()

	// 4. ドメインサービスの初期化
	rankingService := ranking.NewService(topicRepo, postRepo, userRepo, categoryRepo, time.Now)
	assembler := document.NewAssembler(rankingService, categoryRepo, postRepo, tagRepo, cfg, time.Now)

	// 5. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. 生成サービスの初期化
	genService := generator.NewService(
		assembler, store, topicRepo, categoryRepo, tagRepo,
		collector, cfg.CacheTTL, time.Now,
	)

	// 7. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral))
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:           slog.Default(),
		RateLimiter:      rateLimiter,
		GeneratorService: genService,
		HealthChecker:    db,
		Gatherer:         registry,
	})

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("llms.txt server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down llms.txt server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("llms.txt server stopped gracefully")
	return nil
}

// newCacheStore は設定に応じたキャッシュストアを返す。
// 2番目の戻り値はシャットダウン時に呼ぶクローズ関数。
func newCacheStore(cfg *config.Config) (cache.Store, func(), error) {
	if cfg.RedisAddr == "" {
		slog.Info("using in-memory cache store")
		return cache.NewMemoryStore(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("using redis cache store", slog.String("addr", cfg.RedisAddr))

	closeFn := func() {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}
	return cache.NewRedisStore(client, cacheKeyPrefix), closeFn, nil
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
