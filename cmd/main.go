package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"roompad/backend/internal/accesstoken"
	"roompad/backend/internal/api/handler"
	"roompad/backend/internal/api/middleware"
	"roompad/backend/internal/config"
	"roompad/backend/internal/credential"
	"roompad/backend/internal/roomhub"
	"roompad/backend/internal/rooms"
	"roompad/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func setupDependencies(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := storage.Open(cfg.Database.URL)
	if err != nil {
		logrus.Fatalf("Failed to connect PostgreSQL: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logrus.Fatalf("Failed to connect Redis: %v", err)
	}

	logrus.Info("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ConfigureLogger()
	logrus.WithField("env", cfg.AppEnv).Info("Starting roompad backend...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, rdb := setupDependencies(ctx, cfg)
	s := storage.NewStorageService(db, rdb)

	svc := rooms.NewService(s, credential.NewScrypt(), accesstoken.NewIssuer(cfg.RoomTokenSecret, cfg.RoomTokenTTL), s)
	hub := roomhub.NewManager(s)
	go hub.Run(ctx)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())
	limiter := middleware.NewRateLimiter(rdb, cfg.RateLimitMax, cfg.RateLimitWindow)
	handler.RegisterRoutes(r, handler.NewHandler(svc, hub, cfg.AppEnv), limiter)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logrus.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("HTTP server shutdown failed")
	}
	if err := rdb.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close Redis client")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logrus.Info("Shutdown complete")
}
