package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/hiperdesk/backend/internal/adapters/primary/http"
	mw "github.com/hiperdesk/backend/internal/adapters/primary/http/middleware"
	"github.com/hiperdesk/backend/internal/adapters/primary/websocket"
	"github.com/hiperdesk/backend/internal/adapters/secondary/postgres"
	"github.com/hiperdesk/backend/internal/adapters/secondary/redisbridge"
	"github.com/hiperdesk/backend/internal/adapters/secondary/waweb"
	"github.com/hiperdesk/backend/internal/auth"
	"github.com/hiperdesk/backend/internal/config"
	"github.com/hiperdesk/backend/internal/core/ports"
	"github.com/hiperdesk/backend/internal/core/services"
	"github.com/hiperdesk/backend/internal/core/template"
	"github.com/hiperdesk/backend/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// 3. Initialize Database Pool
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	// 4. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	hub := websocket.NewHub(logger)
	go hub.Run()

	// Broadcasters: the in-process hub, plus the redis bridge when a
	// multi-node deployment needs cross-node fanout.
	broadcasters := []ports.Broadcaster{hub}
	if cfg.Redis.Enabled {
		bridge, err := redisbridge.New(cfg.Redis, hub, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer bridge.Close()
		go bridge.Run(ctx)
		broadcasters = append(broadcasters, bridge)
	}

	// 5. Initialize Rate Limiter
	var rateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
	}

	// 6. Dependency Injection (Wiring the Hexagon)

	errorHandler := httpAdapter.NewErrorHandler(logger)
	reporter := logging.NewReporter(logger)

	// Repositories (Secondary Adapters)
	txManager := postgres.NewTransactionManager(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	trackingRepo := postgres.NewTrackingRepository(pool)
	settingRepo := postgres.NewSettingRepository(pool)
	directoryRepo := postgres.NewDirectoryRepository(pool)
	messageRepo := postgres.NewMessageRepository(pool)

	// Transport (Secondary Adapter)
	gateway := waweb.NewClient(cfg.Gateway, logger)

	// Services (Core)
	claimGuard := services.NewClaimGuard(directoryRepo)
	messagingEngine := services.NewMessagingEngine(
		settingRepo,
		directoryRepo,
		directoryRepo,
		directoryRepo,
		gateway,
		messageRepo,
		template.NewRenderer(),
		logger,
	)
	fanout := services.NewNotificationFanout(logger, broadcasters...)
	transitionService := services.NewTransitionService(
		ticketRepo,
		trackingRepo,
		txManager,
		claimGuard,
		messagingEngine,
		fanout,
		messageRepo,
		messageRepo,
		reporter,
		logger,
	)

	// Handlers (Primary Adapters)
	ticketHandler := httpAdapter.NewTicketHandler(transitionService, ticketRepo, errorHandler, logger)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, tokenManager, cfg, logger)
	healthHandler := httpAdapter.NewHealthHandler(pool, cfg.App.Version)

	// 7. Setup Router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.WebSocket.AllowedOrigins,
		AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if rateLimiter != nil {
		r.Use(rateLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/live", healthHandler.HandleLiveness)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket route (Authentication is handled inside the handler)
		r.Get("/ws", wsHandler.ServeHTTP)

		// Protected REST routes
		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))
			ticketHandler.RegisterRoutes(r)
		})
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server shutdown complete")
}
