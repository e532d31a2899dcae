package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NCUHOME-Y/TimiFocus/internal/app/repository"
	"github.com/NCUHOME-Y/TimiFocus/internal/app/service"
	"github.com/NCUHOME-Y/TimiFocus/internal/config"
	"github.com/NCUHOME-Y/TimiFocus/internal/database"
	"github.com/NCUHOME-Y/TimiFocus/internal/handlers"
	"github.com/NCUHOME-Y/TimiFocus/internal/ledger"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/logger"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(cfg.Env)
	defer func() { _ = log.Sync() }()

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTracing, err := tracing.Setup(cfg.OTelTraces)
	if err != nil {
		log.Fatal("tracing init error", "error", err)
	}

	// 初始化数据库连接并运行迁移（AutoMigrate 会自动创建表及索引）
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("db init error", "error", err, "driver", cfg.DBDriver)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("bad timezone", "error", err, "tz", cfg.Timezone)
	}
	l := ledger.New(db)
	tasks := repository.NewTaskRepository(db, l)
	settings, err := service.NewSettingsService(repository.NewSettingRepository(db))
	if err != nil {
		log.Fatal("settings init error", "error", err)
	}
	defer settings.Close()
	progress := service.NewProgressService(l, tasks, repository.NewAchievementRepository(db), loc, log)

	h := &handlers.Handler{
		Sessions:  service.NewSessionService(l, progress, loc, log),
		Progress:  progress,
		Settings:  settings,
		Tasks:     tasks,
		Health:    service.NewHealthService(db),
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	}
	r := handlers.NewRouter(h, handlers.RouterOptions{
		AllowOrigins: cfg.AllowOrigins,
		RateRPS:      cfg.RateRPS,
		RateBurst:    cfg.RateBurst,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 启动服务器
	go func() {
		log.Info("starting server", "addr", cfg.Addr, "env", cfg.Env, "db", cfg.DBDriver, "tz", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Error("tracing shutdown error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}
