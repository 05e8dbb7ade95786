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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	"livecast/internal/core/services"
	handlers "livecast/internal/handlers/http"
	"livecast/internal/infrastructure/encoder"
	"livecast/internal/infrastructure/middleware"
	"livecast/internal/infrastructure/monitoring"
	"livecast/internal/infrastructure/notify"
	"livecast/internal/infrastructure/platform"
	"livecast/internal/infrastructure/reliability"
	"livecast/internal/infrastructure/repositories"
	"livecast/internal/infrastructure/storage"
	"livecast/pkg/circuitbreaker"
	"livecast/pkg/config"
	"livecast/pkg/logger"
	"livecast/pkg/retry"
	"livecast/pkg/tracing"
)

func main() {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	configPath := os.Getenv("LIVECAST_CONFIG")
	if configPath == "" {
		for _, candidate := range []string{"config.yaml", "configs/config.yaml", "/etc/livecast/config.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zapLogger.Sync() }()
	log := zapLogger.Sugar()

	if configPath == "" {
		log.Infow("no config file found, using defaults and environment overrides")
	} else {
		log.Infow("configuration loaded", "path", configPath)
	}

	if cfg.Tracing.Enabled {
		tcfg := tracing.DefaultConfig()
		tcfg.Enabled = true
		tcfg.JaegerURL = cfg.Tracing.JaegerEndpoint
		tcfg.SampleRate = cfg.Tracing.SampleRate

		tp, err := tracing.Init(tcfg)
		if err != nil {
			log.Warnw("tracing disabled", "error", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(ctx); err != nil {
					log.Warnw("failed to shut down tracer provider", "error", err)
				}
			}()
			log.Infow("tracing enabled", "endpoint", tcfg.JaegerURL, "sample_rate", tcfg.SampleRate)
		}
	}

	factory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize repositories", "error", err)
	}

	store, err := storage.NewLocal(cfg.Storage.UploadDir, log)
	if err != nil {
		log.Fatalw("failed to initialize upload storage", "error", err, "dir", cfg.Storage.UploadDir)
	}

	supervisor := encoder.NewSupervisor(encoder.Config{
		FFmpegPath:     cfg.Encoder.FFmpegPath,
		ConfirmWindow:  cfg.Encoder.ConfirmWindow,
		StopEscalation: cfg.Encoder.StopEscalation,
	}, log)
	prober := encoder.NewProber(cfg.Encoder.FFprobePath, cfg.Encoder.ProbeTimeout, log)

	platformClient := platform.NewClient(platform.Config{
		BaseURL: cfg.Platform.APIBase,
		Timeout: cfg.Platform.Timeout,
	}, log)
	livePlatform := reliability.NewLivePlatformWrapper(platformClient, retry.DefaultConfig(), circuitbreaker.DefaultConfig(), log)

	collector := monitoring.NewPrometheusCollector(nil)
	collector.RecordSessionPhase(domain.PhaseIdle)

	hubCfg := notify.Config{
		PingInterval: cfg.WebSocket.PingInterval,
		PongTimeout:  cfg.WebSocket.PongTimeout,
		SendBuffer:   cfg.WebSocket.SendBuffer,
	}
	if cfg.RateLimiting.Enabled {
		hubCfg.MaxClients = cfg.RateLimiting.WebSocket.MaxClients
		hubCfg.ConnectionsPerMinute = cfg.RateLimiting.WebSocket.ConnectionsPerMinute
	}
	hub := notify.NewHub(hubCfg, log)
	collector.RegisterClientCountFunc(hub.ClientCount)

	// Events flow through the observer into the hub, and through the
	// relay to other instances when Redis is available.
	var events ports.Notifier = hub
	var relay *notify.RedisRelay
	if client := factory.RedisClient(); client != nil {
		relay = notify.NewRedisRelay(client, cfg.Redis.KeyPrefix, hub, log)
		if err := relay.Start(context.Background()); err != nil {
			log.Warnw("event relay disabled", "error", err)
			relay = nil
		} else {
			events = notify.NewFanout(hub, relay)
		}
	}
	notifier := monitoring.NewEventObserver(events, collector)

	videoRepo := factory.CreateVideoRepository()
	queueRepo := factory.CreateQueueRepository()
	sessionRepo := factory.CreateSessionRepository()
	metricsRepo := factory.CreateMetricsRepository()
	settingsRepo := factory.CreateSettingsRepository()

	settingsService := services.NewSettingsService(settingsRepo, domain.StreamSettings{
		Quality:       cfg.Stream.Quality,
		Bitrate:       cfg.Stream.Bitrate,
		AutoQueue:     cfg.Stream.AutoQueue,
		Notifications: cfg.Stream.Notifications,
	}, log)
	queueService := services.NewQueueService(queueRepo, videoRepo, notifier, log)
	streamService := services.NewStreamOrchestrator(
		sessionRepo,
		videoRepo,
		queueService,
		settingsService,
		livePlatform,
		supervisor,
		store,
		notifier,
		log,
	)
	videoService := services.NewCachedVideoService(
		services.NewVideoService(videoRepo, queueRepo, store, prober, streamService, notifier, log),
		30*time.Second,
	)

	metricsSource := monitoring.NewInstrumentedMetricsSource(
		platform.NewMetricsSource(livePlatform, settingsService),
		collector,
	)
	sampler := services.NewMetricsSampler(streamService, metricsSource, metricsRepo, notifier, cfg.Metrics.SampleInterval, log)
	sampler.Start()

	seedCredentials(settingsService, cfg, log)

	health := monitoring.NewHealthChecker()
	health.AddFFmpegCheck(cfg.Encoder.FFmpegPath)
	health.AddStorageCheck(cfg.Storage.UploadDir)
	if client := factory.RedisClient(); client != nil {
		health.AddRedisCheck(client)
	}
	health.AddPlatformCheck(cfg.Platform.APIBase, nil)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}
	router.Use(middleware.RequestLoggingMiddleware(logger.NewContextLogger(zapLogger)))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

	handlers.NewStreamHandler(streamService, sampler).SetupRoutes(router)
	handlers.NewVideoHandler(videoService, cfg.Storage.MaxUploadBytes).SetupRoutes(router)
	handlers.NewQueueHandler(queueService).SetupRoutes(router)
	handlers.NewSettingsHandler(settingsService).SetupRoutes(router)

	router.GET(cfg.WebSocket.Path, gin.WrapF(hub.HandleConnection))

	router.GET("/health", func(c *gin.Context) {
		status := health.CheckAll(c.Request.Context())
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	log.Infow("livecast server listening",
		"address", cfg.Server.Address,
		"ws_path", cfg.WebSocket.Path,
		"upload_dir", cfg.Storage.UploadDir,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Errorw("server error", "error", err)
	case sig := <-sigChan:
		log.Infow("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	sampler.Stop()

	// A live encoder is terminated and the platform broadcast ended
	// before the HTTP listener goes away.
	if _, err := streamService.Stop(shutdownCtx); err != nil && !errors.Is(err, domain.ErrNoActiveStream) {
		log.Warnw("failed to stop active stream during shutdown", "error", err)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("graceful shutdown failed, forcing close", "error", err)
		_ = srv.Close()
	}

	if relay != nil {
		_ = relay.Close()
	}
	hub.Close()
	videoService.Stop()

	if err := factory.Close(); err != nil {
		log.Warnw("failed to close repositories", "error", err)
	}

	log.Infow("server stopped")
}

// seedCredentials stores platform credentials from the environment on
// first boot. Credentials already saved through the API win.
func seedCredentials(settings ports.SettingsService, cfg *config.Config, log *zap.SugaredLogger) {
	if cfg.Platform.PageID == "" || cfg.Platform.AccessToken == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := settings.GetCredentials(ctx); !errors.Is(err, domain.ErrCredentialsNotFound) {
		return
	}

	if _, err := settings.UpdateCredentials(ctx, &domain.Credentials{
		PageID:      cfg.Platform.PageID,
		AccessToken: cfg.Platform.AccessToken,
	}); err != nil {
		log.Warnw("failed to seed platform credentials", "error", err)
		return
	}
	log.Infow("platform credentials seeded from configuration", "page_id", cfg.Platform.PageID)
}
