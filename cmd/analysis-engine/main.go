package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/siliconsage/build-engine/internal/api"
	"github.com/siliconsage/build-engine/internal/config"
	"github.com/siliconsage/build-engine/internal/engine"
	"github.com/siliconsage/build-engine/internal/metrics"
	"github.com/siliconsage/build-engine/internal/ratelimit"
	"github.com/siliconsage/build-engine/internal/services"
	"github.com/siliconsage/build-engine/internal/utils"
)

var version = "dev"

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting analysis engine",
		slog.String("http_address", cfg.Server.HTTPAddress),
		slog.String("grpc_address", cfg.Server.GRPCAddress),
		slog.String("version", version))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	platforms, err := engine.LoadPlatformTable(cfg.Platforms.Path, logger)
	if err != nil {
		err = utils.NewAppError("load platforms", cfg.Platforms.Path, err)
		logger.Error("failed to load platform pack", slog.Any("error", err))
		os.Exit(1)
	}
	analysisService := services.NewAnalysisService(logger, engine.NewEngine(logger, platforms))

	var limiter ratelimit.Limiter = ratelimit.NoopLimiter{}
	if cfg.RateLimit.Enabled {
		redisLimiter, err := ratelimit.NewRedisLimiter(ratelimit.RedisConfig{
			Addr:        cfg.RateLimit.Addr,
			Password:    cfg.RateLimit.Password,
			DB:          cfg.RateLimit.DB,
			Limit:       cfg.RateLimit.Limit,
			Window:      cfg.RateLimit.Window,
			KeyPrefix:   cfg.RateLimit.KeyPrefix,
			DialTimeout: cfg.RateLimit.DialTimeout,
		})
		if err != nil {
			logger.Warn("rate limiter unavailable, serving without limits", slog.Any("error", err))
		} else {
			limiter = redisLimiter
		}
	}
	defer limiter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr: cfg.Server.HTTPAddress,
		Handler: api.NewRouter(api.RouterOptions{
			Logger:         logger,
			Service:        analysisService,
			Limiter:        limiter,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			Version:        version,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("http server listening", slog.String("address", cfg.Server.HTTPAddress))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server exited", slog.Any("error", err))
			stop()
		}
	}()

	var grpcServer *api.Server
	if cfg.Server.GRPCAddress != "" {
		grpcServer, err = api.NewServer(cfg.Server, logger, api.NewGRPCService(logger, analysisService))
		if err != nil {
			logger.Error("failed to create gRPC server", slog.Any("error", err))
			os.Exit(1)
		}
		go func() {
			logger.Info("gRPC server listening", slog.String("address", grpcServer.Address()))
			if serveErr := grpcServer.Start(); serveErr != nil {
				logger.Error("gRPC server exited", slog.Any("error", serveErr))
				stop()
			}
		}()
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("http server shutdown", slog.Any("error", err))
	}
	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	summary := analysisService.LatencySummary()
	logger.Info("analysis engine stopped",
		slog.Int("analyses", summary.Count),
		slog.Duration("p95", summary.P95))
}
