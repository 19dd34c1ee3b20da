package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SAP-F-2025/correction-service/internal/ai"
	"github.com/SAP-F-2025/correction-service/internal/cache"
	"github.com/SAP-F-2025/correction-service/internal/config"
	"github.com/SAP-F-2025/correction-service/internal/events"
	"github.com/SAP-F-2025/correction-service/internal/handlers"
	"github.com/SAP-F-2025/correction-service/internal/metrics"
	"github.com/SAP-F-2025/correction-service/internal/notifier"
	"github.com/SAP-F-2025/correction-service/internal/repositories"
	"github.com/SAP-F-2025/correction-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/correction-service/internal/services"
	"github.com/SAP-F-2025/correction-service/internal/utils"
	"github.com/SAP-F-2025/correction-service/internal/validator"
	"github.com/SAP-F-2025/correction-service/pkg"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	shutdownTimeout      = 15 * time.Second
	queueMaxRetries      = 3
	queueInitialInterval = time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Correction service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.Migrate(db); err != nil {
		return err
	}

	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry, registry)

	repo := postgres.NewRepository(db)
	cachedQuestions := repositories.NewCachedQuestionRepository(
		repo.Question(),
		cache.NewRedisCache(redisClient, logger),
		cfg.Cache.QuestionTTL,
		logger,
	)

	eventPublisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer closeWithLog(logger, "event publisher", eventPublisher)

	correctionPublisher, correctionSubscriber, err := cfg.Events.CreateCorrectionPubSub(logger)
	if err != nil {
		return fmt.Errorf("failed to create correction queue: %w", err)
	}
	defer closeWithLog(logger, "correction publisher", correctionPublisher)
	defer closeWithLog(logger, "correction subscriber", correctionSubscriber)
	queue := events.NewCorrectionQueue(correctionPublisher, cfg.Events.CorrectionTopic, logger)

	generator, err := ai.NewGenerator(ctx, ai.GeneratorConfig{
		Provider:     cfg.AI.Provider,
		APIKey:       cfg.AI.APIKey,
		BaseURL:      cfg.AI.BaseURL,
		Model:        cfg.AI.Model,
		Temperature:  cfg.AI.Temperature,
		AssistantID:  cfg.AI.AssistantID,
		PollInterval: cfg.AI.PollInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to create AI generator: %w", err)
	}
	if closer, ok := generator.(io.Closer); ok {
		defer closeWithLog(logger, "AI generator", closer)
	}
	aiScorer := ai.NewScorer(generator, logger,
		ai.WithMaxAttempts(cfg.AI.MaxAttempts),
		ai.WithObserver(appMetrics),
	)

	var sideChannel notifier.Notifier = notifier.NoopNotifier{}
	if cfg.Telegram.Token != "" {
		telegram, err := notifier.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Warn("Telegram notifier unavailable, summaries disabled", "error", err)
		} else {
			sideChannel = telegram
		}
	}

	notifications := services.NewNotificationEventService(repo, eventPublisher, sideChannel, services.NotificationConfig{
		From:               cfg.Notification.From,
		Template:           cfg.Notification.Template,
		TestInvitationLink: cfg.Notification.TestInvitationLink,
	}, logger)

	v := validator.New()
	correctionService := services.NewCorrectionService(services.CorrectionDeps{
		Repo:          repo,
		QuestionCache: cachedQuestions,
		Validator:     v,
		AIScorer:      aiScorer,
		Notifications: notifications,
		Queue:         queue,
		Observer:      appMetrics,
		Logger:        logger,
		AnswerTimeout: cfg.AI.AnswerTimeout,
	})
	answerService := services.NewAnswerService(repo, queue, logger)
	exportService := services.NewExportService(repo, cachedQuestions, logger)

	worker := services.NewCorrectionWorker(
		correctionService,
		cache.NewRedisLocker(redisClient, "correction:lock:", cfg.Cache.LockTTL, logger),
		logger,
	)
	router, err := events.NewCorrectionRouter(correctionSubscriber, events.RouterConfig{
		Topic:           cfg.Events.CorrectionTopic,
		MaxRetries:      queueMaxRetries,
		InitialInterval: queueInitialInterval,
	}, worker.Handle, logger)
	if err != nil {
		return err
	}

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- router.Run(ctx)
	}()

	var auth gin.HandlerFunc
	if cfg.Auth.Enabled {
		auth = handlers.AuthMiddleware(handlers.NewCasdoorTokenParser(handlers.AuthConfig{
			Endpoint:     cfg.Auth.Endpoint,
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			Certificate:  cfg.Auth.Certificate,
			Organization: cfg.Auth.Organization,
			Application:  cfg.Auth.Application,
		}))
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		utils.RequestIDMiddleware(),
		utils.LoggerMiddleware(utils.NewSlogLogger(logger)),
		appMetrics.Middleware(),
		cors.New(cors.Config{
			AllowOrigins:  strings.Split(cfg.AllowedOrigins, ","),
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", utils.RequestIDHeader},
			ExposeHeaders: []string{"Content-Length", "Content-Disposition", utils.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	correctionHandler := handlers.NewCorrectionHandler(correctionService, answerService, exportService, v, utils.NewSlogLogger(logger))
	handlers.NewHandlerManager(correctionHandler, auth, appMetrics.Handler()).SetupRoutes(engine)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Correction service listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case err := <-routerErr:
		if err != nil {
			return fmt.Errorf("correction router failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if err := router.Close(); err != nil {
		logger.Error("Correction router shutdown failed", "error", err)
	}
	return nil
}

func closeWithLog(logger *slog.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error("Failed to close "+name, "error", err)
	}
}
