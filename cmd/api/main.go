package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"resumeHub/internal/api"
	"resumeHub/internal/completion"
	"resumeHub/internal/config"
	"resumeHub/internal/database"
	"resumeHub/internal/identity"
	"resumeHub/internal/logger"
	"resumeHub/internal/match"
	"resumeHub/internal/resume"
	"resumeHub/internal/scan"
	"resumeHub/internal/storage"
)

func main() {
	// A missing .env is fine; real deployments inject the environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	zlog, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("creating a logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		zlog.Fatal("init database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("auto migrate", zap.Error(err))
	}
	zlog.Info("database ready")

	storageClient, err := storage.NewClient(cfg.MinIO, zlog)
	if err != nil {
		zlog.Fatal("init storage", zap.Error(err))
	}

	verifier, err := identity.NewVerifier(cfg.Clerk.JWTKey, cfg.Clerk.AuthorizedParties)
	if err != nil {
		zlog.Fatal("init session verifier", zap.Error(err))
	}
	profiles := identity.NewProfiles(cfg.Clerk.SecretKey)

	generator, err := completion.NewGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		zlog.Fatal("init completion client", zap.Error(err))
	}
	engine := match.NewEngine(&http.Client{Timeout: 30 * time.Second}, generator, zlog, cfg.API.MaxFetchBytes)

	manager := resume.NewManager(db, storageClient, profiles, zlog)

	deps := api.Dependencies{
		Manager:        manager,
		Analyzer:       engine,
		Model:          generator.Model(),
		Verifier:       verifier,
		MaxUploadBytes: cfg.API.MaxUploadBytes,
		UploadsPerDay:  cfg.Redis.UploadsPerDay,
		AnalysesPerDay: cfg.Redis.AnalysesPerDay,
	}

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer redisClient.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			zlog.Warn("redis not reachable, quotas fail open until it is", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
		deps.Counter = redisClient
		zlog.Info("daily quotas enabled",
			zap.Int("uploads_per_day", cfg.Redis.UploadsPerDay),
			zap.Int("analyses_per_day", cfg.Redis.AnalysesPerDay),
		)
	}
	if cfg.Clamd.Addr != "" {
		deps.Scanner = scan.NewScanner(cfg.Clamd.Addr)
		zlog.Info("upload scanning enabled", zap.String("clamd", cfg.Clamd.Addr))
	}

	router := api.NewRouter(cfg, zlog)
	api.RegisterRoutes(router, deps)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Clerk.AuthorizedParties,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           corsHandler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("api listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("api server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
