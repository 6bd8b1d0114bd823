package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/theoprice/internal/theoprice/application"
	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
	"github.com/wyfcoding/theoprice/internal/theoprice/infrastructure"
	httphandler "github.com/wyfcoding/theoprice/internal/theoprice/interfaces/http"
	"github.com/wyfcoding/theoprice/pkg/config"
	"github.com/wyfcoding/theoprice/pkg/logger"
	"github.com/wyfcoding/theoprice/pkg/metrics"
	"github.com/wyfcoding/theoprice/pkg/middleware"
	"github.com/wyfcoding/theoprice/pkg/ratelimit"
)

func main() {
	configPath := flag.String("config", "configs/theoprice.toml", "path to config file")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. 初始化日志
	loggerCfg := logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}
	if err := logger.Init(loggerCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger.Info(ctx, "Starting TheoPriceService", "version", cfg.Version)

	tolerance, err := decimal.NewFromString(cfg.Reconcile.Tolerance)
	if err != nil {
		logger.Fatal(ctx, "Invalid reconcile tolerance", "tolerance", cfg.Reconcile.Tolerance, "error", err)
	}

	// 3. 初始化指标
	m := metrics.New("api")
	if cfg.Metrics.Enabled {
		m.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 4. 连接输入库、缓存与 Kafka
	stack, err := infrastructure.Build(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize infrastructure", "error", err)
	}

	// 5. 初始化层级依赖
	dispatcher := domain.NewTheoPriceDispatcher()
	pricingApp := application.NewTheoPriceService(dispatcher, m, cfg.Reconcile.Workers)

	var reconcileApp *application.ReconciliationService
	if stack.Inputs != nil {
		reconcileApp = application.NewReconciliationService(stack.Inputs, stack.Publisher, dispatcher, m, tolerance, cfg.Reconcile.Workers)
	}

	// 6. 创建 HTTP 服务器
	httpServer := createHTTPServer(cfg, stack, m, pricingApp, reconcileApp)

	// 7. 启动 HTTP 服务器
	go func() {
		logger.Info(ctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	// 8. 优雅关停
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "Shutting down TheoPriceService")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}
	stack.Close()

	logger.Info(ctx, "TheoPriceService stopped")
}

// createHTTPServer 创建 HTTP 服务器
func createHTTPServer(
	cfg *config.Config,
	stack *infrastructure.Stack,
	m *metrics.Metrics,
	pricingApp *application.TheoPriceService,
	reconcileApp *application.ReconciliationService,
) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 添加中间件
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinMetricsMiddleware(m))

	// 比对接口限流
	var reconcileMW []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if stack.Redis == nil {
			logger.Warn(context.Background(), "rate_limit enabled but Redis is not configured, skipping")
		} else {
			limiter := ratelimit.NewRedisLimiter(stack.Redis, map[string]ratelimit.Rule{
				"reconcile": {QPS: cfg.RateLimit.QPS, Burst: cfg.RateLimit.Burst},
			})
			reconcileMW = append(reconcileMW, middleware.RateLimitMiddleware(limiter, "reconcile"))
		}
	}

	// 注册路由
	httpHandler := httphandler.NewTheoPriceHandler(pricingApp, reconcileApp)
	httpHandler.RegisterRoutes(router, reconcileMW...)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"reconcile": reconcileApp != nil,
			"timestamp": time.Now().Unix(),
		})
	})

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}
