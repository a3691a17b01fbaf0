// Command server runs the Q&A HTTP API.
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
	appqna "github.com/setof/qna-backend/internal/application/qna"
	"github.com/setof/qna-backend/internal/infrastructure/config"
	"github.com/setof/qna-backend/internal/infrastructure/event"
	"github.com/setof/qna-backend/internal/infrastructure/lock"
	"github.com/setof/qna-backend/internal/infrastructure/logger"
	"github.com/setof/qna-backend/internal/infrastructure/persistence"
	"github.com/setof/qna-backend/internal/infrastructure/telemetry"
	"github.com/setof/qna-backend/internal/interfaces/http/handler"
	"github.com/setof/qna-backend/internal/interfaces/http/middleware"
	"github.com/setof/qna-backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "1.0.0"

//	@title			Q&A Backend API
//	@version		1.0
//	@description	Product and order questions with threaded replies.

//	@contact.name	API Support
//	@contact.url	https://github.com/setof/qna-backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	UserID
//	@in							header
//	@name						X-User-ID
//	@description				Caller identity set by the gateway, together with X-User-Role and X-User-Name.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// OpenTelemetry
	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = lp.Bridge(log, zapcore.InfoLevel)

	log.Info("Starting Q&A Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("lock_backend", cfg.Reply.LockBackend),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.DBName),
	)

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(ctx, db.DB, mp, telemetry.DBMetricsConfig{}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}

	// Repositories
	qnaRepo := persistence.NewGormQnaRepository(db.DB)
	replyRepo := persistence.NewGormQnaReplyRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Reply scope lock
	locker, err := lock.NewScopeLocker(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize reply scope lock", zap.Error(err))
	}
	if closer, ok := locker.(lock.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Error("Failed to close reply scope lock", zap.Error(err))
			}
		}()
	}

	replyMetrics, err := telemetry.NewReplyMetrics(mp.Meter("qna"))
	if err != nil {
		log.Fatal("Failed to create reply metrics", zap.Error(err))
	}

	// Application services
	allocator := appqna.NewReplyAllocator(txScope, locker,
		appqna.WithMaxAttempts(cfg.Reply.MaxAllocationAttempts),
		appqna.WithAllocationMetrics(replyMetrics),
		appqna.WithAllocatorLogger(log),
	)
	qnaService := appqna.NewQnaService(qnaRepo)
	replyService := appqna.NewReplyService(qnaRepo, replyRepo, allocator)

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	activity := event.NewQnaActivityHandler(log, replyMetrics)
	eventBus.Subscribe(activity, activity.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	qnaService.SetEventPublisher(eventBus)
	replyService.SetEventPublisher(eventBus)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitRequests > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiter.StartCleanup(ctx)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get database handle", zap.Error(err))
	}

	engine, err := router.New(router.Config{
		Logger:         log,
		ServiceName:    serviceName,
		Version:        version,
		Tracing:        tp.IsEnabled(),
		MeterProvider:  mp,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		AllowOrigins:   cfg.HTTP.CORSAllowOrigins,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		RateLimiter:    limiter,
		Health:         handler.NewHealthHandler(sqlDB, version),
		Qnas:           handler.NewQnaHandler(qnaService),
		Replies:        handler.NewReplyHandler(replyService),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()

	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
