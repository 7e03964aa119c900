package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"video_promo_shop/internal/pkg/config"
	"video_promo_shop/internal/pkg/middleware"
	"video_promo_shop/internal/pkg/registry"
	_ "video_promo_shop/internal/server/auth"
	_ "video_promo_shop/internal/server/dataapi"
	_ "video_promo_shop/internal/server/jobs"
	"video_promo_shop/pkg/cache"
	"video_promo_shop/pkg/database"
	"video_promo_shop/pkg/logger"
	"video_promo_shop/pkg/metrics"
	"video_promo_shop/pkg/store/docstore"
	"video_promo_shop/pkg/store/filestore"
)

func main() {
	config.LoadConfig()

	logger.Init(config.GlobalConfig.Server.Mode)
	defer logger.Sync()
	log := logger.L()

	gin.SetMode(ginMode(config.GlobalConfig.Server.Mode))

	ctx := &registry.ModuleContext{
		Log:     log,
		Metrics: metrics.NewCollector(nil),
		Cron:    cron.New(),
	}

	// 集合存储：file（data/ 目录）或 postgres（collections 表）
	switch config.GlobalConfig.Storage.Backend {
	case "postgres":
		ctx.DB = database.InitDatabase()
		ctx.Store = docstore.New(ctx.DB)
	default:
		dirStore, err := filestore.NewDirStore(config.GlobalConfig.Storage.DataDir)
		if err != nil {
			log.Fatal("init data directory failed", zap.Error(err))
		}
		ctx.Store = dirStore
	}

	ctx.Redis = database.InitRedis()
	ctx.Cache = cache.NewRedisCache(ctx.Redis)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.LoggerMiddleware(),
		middleware.RateLimitMiddleware(),
		middleware.MetricsMiddleware(ctx.Metrics),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
			MaxAge:          12 * time.Hour,
		}),
	)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	ctx.Router = router

	if err := registry.InitModules(ctx); err != nil {
		log.Fatal("init modules failed", zap.Error(err))
	}
	ctx.Cron.Start()
	defer ctx.Cron.Stop()

	srv := &http.Server{
		Addr:              ":" + config.GlobalConfig.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr),
			zap.String("storage", config.GlobalConfig.Storage.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
