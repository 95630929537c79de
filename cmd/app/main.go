// File: cmd/app/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"prime-fitness-backend/internal/config"
	"prime-fitness-backend/internal/domain/model"
	"prime-fitness-backend/internal/infra/api"
	pg "prime-fitness-backend/internal/infra/db/postgres"
	"prime-fitness-backend/internal/infra/logging"
	"prime-fitness-backend/internal/infra/metrics"
	"prime-fitness-backend/internal/infra/push"
	red "prime-fitness-backend/internal/infra/redis"
	"prime-fitness-backend/internal/infra/sched"
	"prime-fitness-backend/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	pg.StartPoolStatsReporter(ctx, pool, 0)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	planRepo := red.NewCachedPlanRepo(pg.NewPlanRepo(pool), redisClient, cfg.Redis.TTL)
	promoRepo := pg.NewPromoRepo(pool)
	batchRepo := pg.NewPromoBatchRepo(pool)
	redemptionRepo := pg.NewRedemptionRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	txnRepo := pg.NewTransactionRepo(pool)
	workoutRepo := pg.NewWorkoutRunRepo(pool)
	meditationRepo := pg.NewMeditationRunRepo(pool)
	reminderRepo := pg.NewReminderRepo(pool)
	tokenRepo := pg.NewPushTokenRepo(pool)
	pushLogRepo := pg.NewPushLogRepo(pool)
	analyticsRepo := pg.NewAnalyticsEventRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	aiPlanRepo := pg.NewAIPlanRepo(pool)

	// ---- Use cases ----
	subUC := usecase.NewSubscriptionUseCase(planRepo, promoRepo, redemptionRepo, subRepo, txnRepo, logger)
	planUC := usecase.NewPlanUseCase(planRepo)
	promoAdminUC := usecase.NewPromoAdminUseCase(promoRepo, batchRepo, redemptionRepo, pg.NewTxManager(pool), logger)
	activityUC := usecase.NewActivityUseCase(workoutRepo, meditationRepo, logger)
	achUC := usecase.NewAchievementUseCase(model.DefaultAchievementCatalog(), workoutRepo, userRepo)
	weeklyUC := usecase.NewWeeklyFocusUseCase(workoutRepo, meditationRepo, userRepo)
	remUC := usecase.NewReminderUseCase(reminderRepo, tokenRepo, pushLogRepo, userRepo, workoutRepo, meditationRepo, push.NewStubSender(logger), logger)
	aiUC := usecase.NewAIPlanUseCase(aiPlanRepo)
	analyticsUC := usecase.NewAnalyticsUseCase(analyticsRepo)

	// ---- HTTP server ----
	apiServer := api.NewServer(subUC, planUC, promoAdminUC, activityUC, achUC, weeklyUC, remUC, aiUC, analyticsUC,
		rateLimiter, cfg.Auth, cfg.Promo, logger)
	server := api.NewHTTPServer(fmt.Sprintf(":%d", cfg.Server.Port), apiServer.Router(), cfg.Server)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	// ---- Workers ----
	graceWorker := sched.NewGraceWorker(cfg.Scheduler.GraceInterval, subRepo, logger)
	go func() { _ = graceWorker.Run(ctx) }()

	reminderWorker := sched.NewReminderWorker(cfg.Scheduler.ReminderInterval, remUC, locker, logger)
	go func() { _ = reminderWorker.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
