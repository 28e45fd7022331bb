package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"doc-portal/backend/config"
	"doc-portal/backend/internal/api/handler"
	"doc-portal/backend/internal/api/middleware"
	"doc-portal/backend/internal/api/router"
	"doc-portal/backend/internal/api/validator"
	"doc-portal/backend/internal/repository"
	"doc-portal/backend/internal/service"
	"doc-portal/backend/internal/storage"
	"doc-portal/backend/pkg/database"
	"doc-portal/backend/pkg/jwt"
	applogger "doc-portal/backend/pkg/logger"
	"doc-portal/backend/pkg/metrics"
	"doc-portal/backend/pkg/redis"
)

func main() {
	// 1. configuration
	cfg, err := config.Load(os.Getenv("DOCPORTAL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logging
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting doc portal",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("storage", cfg.Storage.Type),
	)

	if err := validator.Register(); err != nil {
		logger.Fatal("register validators", zap.Error(err))
	}

	// 3. database
	db, err := database.NewDB(&cfg.Database, applogger.GormLevel(cfg.Log.Level), logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	// 4. Redis is optional: without it logout is a client-side discard and
	// the auth endpoints are not rate limited.
	var (
		rdb       *redis.Client
		blacklist service.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, token revocation and rate limiting disabled", zap.Error(err))
			rdb = nil
		} else {
			blacklist = rdb
			limiter = rdb
		}
	}

	// 5. metrics and blob storage
	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	store, err := storage.New(&cfg.Storage, m, logger)
	if err != nil {
		logger.Fatal("init blob storage", zap.Error(err))
	}

	// 6. Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, store, m, logger)
	h := handler.NewHandler(cfg, svc, logger)

	engine := router.Setup(cfg, h, svc.Auth, limiter, m, reg, logger)

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("close database", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Warn("close redis", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}
