package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"placement-backoffice/config"
	v1 "placement-backoffice/internal/delivery/http/v1"
	"placement-backoffice/internal/repository/postgres"
	"placement-backoffice/internal/usecase"
	"placement-backoffice/pkg/database"
	"placement-backoffice/pkg/logger"
	"placement-backoffice/pkg/redis"
)

// @title           Placement Back Office API
// @version         1.0
// @description     Application lifecycle, cancellation and refund engine for labor placement agencies.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting placement back office", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (optional; rate limiting degrades to in-memory)
	if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
	}
	defer redis.Close()

	// 5. Setup Repositories
	txManager := postgres.NewTxManager(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	candidateRepo := postgres.NewCandidateRepository(dbPool)
	paymentRepo := postgres.NewPaymentRepository(dbPool)
	adjustmentRepo := postgres.NewAdjustmentRepository(dbPool)
	settingRepo := postgres.NewCancellationSettingRepository(dbPool)
	documentRepo := postgres.NewDocumentRepository(dbPool)
	eventRepo := postgres.NewLifecycleEventRepository(dbPool)

	// 6. Setup UseCases
	validate := validator.New()
	applicationUC := usecase.NewApplicationUsecase(txManager, applicationRepo, paymentRepo, documentRepo, eventRepo)
	cancellationUC := usecase.NewCancellationUsecase(txManager, applicationRepo, candidateRepo, paymentRepo, settingRepo, adjustmentRepo, eventRepo, documentRepo)
	guarantorUC := usecase.NewGuarantorChangeUsecase(txManager, applicationRepo, candidateRepo, paymentRepo, settingRepo, adjustmentRepo, eventRepo, documentRepo)
	settingsUC := usecase.NewSettingsUsecase(txManager, settingRepo, validate)

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ApplicationUC:     applicationUC,
		CancellationUC:    cancellationUC,
		GuarantorChangeUC: guarantorUC,
		SettingsUC:        settingsUC,
		Config:            cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
