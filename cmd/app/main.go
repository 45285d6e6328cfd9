package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"linkboard-go/internal/handler"
	"linkboard-go/internal/i18n"
	"linkboard-go/internal/middleware"
	"linkboard-go/internal/model"
	"linkboard-go/internal/repository"
	"linkboard-go/internal/service"
	"linkboard-go/internal/shortener"
	"linkboard-go/pkg/logging"
)

func initConfig() {
	wd, _ := os.Getwd()
	log.Printf("Loading config from: %s/config.yaml", wd)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}
}

// newBackend 按配置选择短链后端：外部 provider 或本地生成器
func newBackend(db *gorm.DB, blocklist *service.BlocklistService, logger *zap.Logger) shortener.Backend {
	timeout := time.Duration(viper.GetInt("shortener.timeout_seconds")) * time.Second
	baseURL := viper.GetString("server.base_url")

	if viper.GetString("shortener.provider") == "tinyurl" {
		return shortener.NewTinyURLBackend(
			viper.GetString("shortener.tinyurl.api_url"),
			viper.GetString("shortener.tinyurl.api_key"),
			timeout,
			logger,
		)
	}

	aliasExists := func(ctx context.Context, alias string) (bool, error) {
		var count int64
		err := db.WithContext(ctx).Model(&model.Link{}).Where("alias = ?", alias).Count(&count).Error
		return count > 0, err
	}

	return shortener.NewLocalBackend(baseURL, aliasExists, blocklist.IsBlocked, logger)
}

func startServer(r *gin.Engine, logger *zap.Logger) {
	addr := viper.GetString("server.addr")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// 启动服务器
	go func() {
		logger.Info("Server is running on " + addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func main() {
	initConfig()

	logger := logging.InitLoggerFromConfig()
	logger.Info("Application started")

	db, err := repository.OpenDB(logger, logging.AtomicLevel)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}
	pool := repository.NewRedisPool(logger)

	// 初始化 i18n（加载 TOML 文件）
	bundle, err := i18n.InitI18n([]string{
		"./i18n/en.toml",
		"./i18n/zh.toml",
	}, "en")
	if err != nil {
		logger.Fatal("Failed to initialize i18n", zap.Error(err))
	}

	blocklistService := service.NewBlocklistService(db, logger)
	backend := newBackend(db, blocklistService, logger)
	linkService := service.NewLinkService(db, pool, backend, logger)
	clicksService := service.NewClicksService(db, pool, logger)

	auth := middleware.NewAuth(
		viper.GetString("auth.jwt_secret"),
		viper.GetString("auth.cookie_name"),
		logger,
	)

	linkHandler := handler.NewLinkHandler(linkService, logger)
	blocklistHandler := handler.NewBlocklistHandler(blocklistService, logger)
	healthHandler := handler.NewHealthHandler(db, pool)

	r := gin.New()
	r.Use(gin.Recovery())

	// 注册全局错误中间件
	r.Use(middleware.GlobalErrorMiddleware())
	r.Use(middleware.ZapGinLogger(logger))
	r.Use(middleware.CorsMiddleware())
	r.Use(middleware.I18nMiddleware(bundle))

	api := r.Group("/api")
	{
		api.GET("/healthz", healthHandler.HealthzHandler)
		api.POST("/shorten", auth.OptionalAuth(), linkHandler.ShortenHandler)

		authed := api.Group("", auth.RequireAuth())
		{
			authed.POST("/links", linkHandler.CreateLinkHandler)
			authed.GET("/links", linkHandler.ListLinksHandler)
			authed.PUT("/links/:id", linkHandler.UpdateLinkStatusHandler)
			authed.DELETE("/links/:id", linkHandler.DeleteLinkHandler)

			authed.POST("/blocklist", blocklistHandler.CreateBlockedDomainHandler)
			authed.GET("/blocklist", blocklistHandler.ListBlockedDomainsHandler)
			authed.DELETE("/blocklist/:id", blocklistHandler.DeleteBlockedDomainHandler)
		}
	}

	r.GET("/s/:code", linkHandler.RedirectHandler)

	c := cron.New()

	// 添加定时任务：每五分钟回写一次点击计数
	_, addErr := c.AddFunc("*/5 * * * *", func() {
		if err := clicksService.Flush(context.Background()); err != nil {
			logger.Error("Failed to flush pending clicks via cron job", zap.Error(err))
		}
	})
	if addErr != nil {
		logger.Fatal("Failed to schedule cron job", zap.Error(addErr))
	}
	c.Start()
	defer c.Stop()

	startServer(r, logger)
}
