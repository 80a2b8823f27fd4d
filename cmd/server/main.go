package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"stopbonus/internal/api"
	"stopbonus/internal/backup"
	"stopbonus/internal/clock"
	"stopbonus/internal/config"
	"stopbonus/internal/model"
	"stopbonus/internal/service"
	"stopbonus/internal/settings"
	"stopbonus/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

func run() error {
	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		return err
	}

	// 初始化logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	clk := clock.System{}

	repo, err := model.InitRepository(&cfg, clk)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close repository")
		}
	}()

	settingsStore := settings.Load(cfg.SettingsPath)
	bonusService := service.NewBonusService(repo, settingsStore)

	var backupService *backup.Service
	store, err := storage.NewStorage(cfg, clk)
	if err != nil {
		logrus.WithError(err).Warn("backup storage unavailable, backups disabled")
	} else {
		backupService = backup.NewService(repo, store, clk)
	}

	var scheduler *backup.Scheduler
	if backupService != nil && cfg.BackupIntervalMinutes > 0 {
		scheduler, err = backup.StartScheduler(backupService, time.Duration(cfg.BackupIntervalMinutes)*time.Minute)
		if err != nil {
			logrus.WithError(err).Error("failed to start backup scheduler")
		}
	}

	// 设置Gin模式
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// 添加中间件
	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	api.NewHTTPHandler(bonusService, settingsStore, backupService, clk).RegisterRoutes(r)

	logrus.WithFields(logrus.Fields{
		"host":     cfg.HTTPAddr,
		"db_type":  cfg.DBType,
		"data_dir": cfg.DataDir,
		"timezone": settingsStore.Get().Timezone,
	}).Info("服务器启动")

	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case runErr = <-serverErr:
		if runErr != nil {
			logrus.WithError(runErr).Error("服务器启动失败")
		}
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("服务器关闭中")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("http server shutdown")
	}
	if err := scheduler.Stop(); err != nil {
		logrus.WithError(err).Warn("backup scheduler shutdown")
	}
	return runErr
}

// CORSMiddleware CORS跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Requested-With")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware 日志记录中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		// 处理请求
		c.Next()
		// 记录请求结束
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
