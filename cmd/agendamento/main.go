package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/calendar"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/config"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/handler"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/cache"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/client"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/observability"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/resilience"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/supabase"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/port"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel, cfg.ServiceName)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("supabase_configured", cfg.SupabaseURL != ""),
		zap.Bool("use_edge_functions", cfg.UseEdgeFunctions),
		zap.Bool("redis_sessions", cfg.RedisURL != ""),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("bonus_concurrency", cfg.BonusConcurrency),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Calendar ---
	var calOpts []calendar.Option
	if cfg.CalendarSaturdayRest {
		calOpts = append(calOpts, calendar.WithRestPolicy(calendar.SaturdayAndSunday))
	}
	if cfg.CalendarComputeMovable {
		calOpts = append(calOpts, calendar.WithComputedMovable())
	}
	cal := calendar.New(calOpts...)

	// --- Session cache ---
	var sessions port.Cache[*domain.Session]
	if cfg.RedisURL != "" {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := cache.NewRedisClient(pingCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		sessions = cache.NewRedis[*domain.Session](rdb, "agendamento:session:", cfg.SessionTTL, logger)
		logger.Info("session cache: redis")
	} else {
		mem := cache.New[*domain.Session](cfg.SessionTTL)
		defer mem.Close()
		sessions = mem
		logger.Info("session cache: in-memory")
	}

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase", supabase.IsRejection)

	// --- Clients and services ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var svc handler.Services
	var backend handler.HealthChecker

	if cfg.SupabaseURL != "" {
		logger.Info("using Supabase as data backend", zap.String("supabase_url", cfg.SupabaseURL))
		sb := supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cb,
			resilienceCfg,
			logger,
		)
		backend = sb

		var admin port.UserAdmin = supabase.NewAdminUsers(sb)
		if cfg.UseEdgeFunctions {
			fnBreaker := resilience.NewCircuitBreaker("functions", client.IsRejection)
			admin = client.NewFunctionsClient(httpClient, cfg.SupabaseURL, cfg.SupabaseAnonKey, fnBreaker)
			logger.Info("user management: edge functions")
		}

		svc = handler.Services{
			Auth:         service.NewAuthService(sb, sb, sessions, cfg.JWTSecret, metrics, logger),
			Appointments: service.NewAppointmentService(sb, sb, logger),
			Fleet:        service.NewFleetService(sb, logger),
			Team:         service.NewTeamService(sb, logger),
			Vacations:    service.NewVacationService(sb, sb, cal, cfg.ReminderDaysAhead, metrics, logger),
			TimeOff:      service.NewTimeOffService(sb, logger),
			Bonus:        service.NewBonusService(sb, sb, sb, cfg.BonusConcurrency, metrics, logger),
			BonusConfig:  service.NewBonusConfigService(sb, logger),
			Users:        service.NewUserService(admin, sb, logger),
		}
	} else {
		logger.Warn("Supabase not configured, /v1 routes unavailable")
	}

	// --- Router ---
	limiter := handler.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	router := handler.NewRouter(svc, cal, backend, limiter, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
