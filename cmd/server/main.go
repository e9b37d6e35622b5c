package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/studyhub/studyhub-backend/internal/assistant"
	"github.com/studyhub/studyhub-backend/internal/config"
	"github.com/studyhub/studyhub-backend/internal/database"
	"github.com/studyhub/studyhub-backend/internal/handler"
	"github.com/studyhub/studyhub-backend/internal/logger"
	"github.com/studyhub/studyhub-backend/internal/repository"
	"github.com/studyhub/studyhub-backend/internal/router"
	"github.com/studyhub/studyhub-backend/internal/service"
	"github.com/studyhub/studyhub-backend/internal/validator"
	"github.com/studyhub/studyhub-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting StudyHub Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	principalRepo := repository.NewPrincipalRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	resourceRepo := repository.NewResourceRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	activityRepo := repository.NewActivityLogRepository(pool)
	pushTokenRepo := repository.NewPushTokenRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	identityService := service.NewIdentityService(cfg, adminRepo, log)
	activityService := service.NewActivityService(activityRepo, log)
	feedService := service.NewLiveFeedService(rdb, log)
	catalogService := service.NewCatalogService(subjectRepo, feedService, activityService, log)
	resourceService := service.NewResourceService(resourceRepo, subjectRepo, notificationRepo, feedService, activityService, log)
	settingService := service.NewSettingService(settingRepo, rdb, feedService, activityService, log)
	notificationService := service.NewNotificationService(notificationRepo, log)
	conversationService := service.NewConversationService(conversationRepo, principalRepo, nil, feedService, log)
	presenceService := service.NewPresenceService(rdb, cfg.PresenceTTL, log)
	analyticsService := service.NewAnalyticsService(principalRepo, subjectRepo, resourceRepo, conversationRepo, presenceService, activityService, log)
	adminService := service.NewAdminService(adminRepo, authService, activityService, log)
	broadcastService := service.NewBroadcastService(cfg, principalRepo, activityService, log)
	pushService := service.NewPushService(rdb, pushTokenRepo, activityService, log)

	mediaService, err := service.NewMediaService(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize media storage")
	}

	// The assistant bridge is optional; without provider keys the chatbot
	// falls back to the offline responder regardless of the portal setting.
	bridge, err := assistant.NewBridge(cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Assistant bridge unavailable, offline responder only")
		bridge = nil
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(principalRepo, identityService, authService, adminService),
		Subject:      handler.NewSubjectHandler(catalogService),
		Resource:     handler.NewResourceHandler(resourceService),
		Setting:      handler.NewSettingHandler(settingService),
		Notification: handler.NewNotificationHandler(notificationService),
		Conversation: handler.NewConversationHandler(conversationService),
		Assistant:    handler.NewAssistantHandler(settingService, bridge, log),
		Admin:        handler.NewAdminHandler(adminService),
		Analytics:    handler.NewAnalyticsHandler(analyticsService),
		Activity:     handler.NewActivityHandler(activityService),
		Media:        handler.NewMediaHandler(mediaService),
		Push:         handler.NewPushHandler(pushService),
		Broadcast:    handler.NewBroadcastHandler(broadcastService),
		Stream: handler.NewStreamHandler(
			rdb,
			catalogService,
			resourceService,
			notificationService,
			settingService,
			conversationService,
			presenceService,
			log,
			cfg.AllowedOrigins,
		),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	pushWorker := worker.NewPushWorker(cfg, rdb, pushService, log)
	presenceWorker := worker.NewPresenceWorker(presenceService, log)

	go pushWorker.Start(workerCtx)
	go presenceWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the push queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
