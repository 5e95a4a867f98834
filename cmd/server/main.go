package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/TIANLI0/MaskCoverage/config"
	"github.com/TIANLI0/MaskCoverage/handler"
	"github.com/TIANLI0/MaskCoverage/middleware"
	"github.com/TIANLI0/MaskCoverage/service"
	"github.com/TIANLI0/MaskCoverage/utils"
	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := pflag.String("config", "config.yaml", "path to the YAML config file")
	pflag.Parse()

	// 加载配置
	cfg := config.New(*configPath)

	// 初始化日志
	if err := initLogger(cfg); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	utils.Logger.Info("starting MaskCoverage server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	if err := os.MkdirAll(cfg.Upload.UploadDir, 0755); err != nil {
		utils.Logger.Fatal("failed to create upload directory", zap.Error(err))
	}

	order, err := service.ParseChannelOrder(cfg.Coverage.ChannelOrder)
	if err != nil {
		utils.Logger.Fatal("invalid coverage.channel_order", zap.Error(err))
	}
	calculator := service.NewCoverageCalculator(service.DefaultClassTable(order))

	// 初始化Redis，连接失败时禁用缓存
	var cache service.CoverageCache
	if cfg.Redis.Enabled {
		redisService := service.NewRedisService(&cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisService.Ping(ctx); err != nil {
			utils.Logger.Warn("redis connection failed, cache disabled", zap.Error(err))
		} else {
			utils.Logger.Info("redis connected successfully")
			cache = redisService
		}
		cancel()
		defer redisService.Close()
	}

	coverageHandler := handler.NewCoverageHandler(cfg, cache, calculator)

	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"version": Version,
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/coverage", coverageHandler.Compute)
		api.GET("/coverage/:md5", coverageHandler.GetByMD5)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil {
		utils.Logger.Fatal("failed to start server", zap.Error(err))
	}
}

// initLogger 日志模式取 log.mode，与 gin 的 server.mode 相互独立
func initLogger(cfg *config.Config) error {
	return utils.InitLogger(cfg.Log.Mode, cfg.Log.Level)
}
