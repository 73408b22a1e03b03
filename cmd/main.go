package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"

	"github.com/weiawesome/wes-io-live/idgen/internal/config"
	"github.com/weiawesome/wes-io-live/idgen/internal/generator"
	idgrpc "github.com/weiawesome/wes-io-live/idgen/internal/grpc"
	"github.com/weiawesome/wes-io-live/idgen/internal/handler"
	"github.com/weiawesome/wes-io-live/idgen/internal/metrics"
	pkglog "github.com/weiawesome/wes-io-live/idgen/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "id-service",
	})
	logger := pkglog.L()

	logger.Info().Msg("starting id-service")

	m := metrics.New("idgen")
	healthServer := health.NewServer()
	reporter := idgrpc.NewHealthReporter(healthServer, logger)

	registry, err := generator.Build(cfg, logger, m, reporter)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create generators")
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	r.Use(m.GinMiddleware())

	r.GET("/health", func(c *gin.Context) {
		if reporter.Degraded() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))
	handler.NewHandler(registry, cfg.Server.MaxBatch).RegisterRoutes(r)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: r,
	}
	grpcAddr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	grpcServer := idgrpc.NewServer(healthServer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", grpcAddr, err)
		}
		logger.Info().Str("addr", grpcAddr).Msg("grpc server listening")
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down id-service")

		reporter.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("id-service exited with error")
	}
	logger.Info().Msg("id-service stopped")
}
