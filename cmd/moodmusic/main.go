package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moodmusic/internal/catalog"
	"moodmusic/internal/logger"
	"moodmusic/internal/recommend"
	"moodmusic/internal/sentiment"
	"moodmusic/internal/server"
	"moodmusic/internal/supervisor"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 加载配置
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// 2. 初始化日志
	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Debug("Debug mode enabled")

	// 3. 加载曲库，失败直接退出
	repo, err := catalog.NewStaticRepository(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to load catalog: %v", err)
	}
	logger.Info("Loaded %d songs", repo.Len())

	// 4. 加载情感分类器，失败时以降级模式运行
	classifier := sentiment.New(cfg.Sentiment)
	defer func() {
		if err := classifier.Close(); err != nil {
			logger.Warn("Failed to release classifier: %v", err)
		}
	}()

	// 5. 构建推荐流程
	engine, err := BuildPipeline(cfg.Recommend)
	if err != nil {
		logger.Fatal("%v", err)
	}
	recommender := recommend.NewService(repo, engine)

	// 6. 启动 HTTP 服务
	srv := server.NewServer(classifier, recommender, server.Options{
		RateLimit:      cfg.Server.RateLimit,
		Burst:          cfg.Server.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
		CatalogSize:    repo.Len(),
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.New("moodmusic", supervisor.Config{ShutdownTimeout: cfg.Server.ShutdownTimeout + time.Second})
	tree.Add(supervisor.NewHTTPService(httpServer, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Server starting on %s", cfg.Addr())
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		// 监听失败等不可恢复的错误，以非零状态退出
		if cerr := classifier.Close(); cerr != nil {
			logger.Warn("Failed to release classifier: %v", cerr)
		}
		logger.Fatal("Server exited: %v", err)
	}
	logger.Info("Server stopped")
}
