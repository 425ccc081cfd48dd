package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/yankovsm/panorama360/internal/config"
	httpHandler "github.com/yankovsm/panorama360/internal/handler/http"
	"github.com/yankovsm/panorama360/internal/handler/middleware"
	"github.com/yankovsm/panorama360/internal/infrastructure/stitcher"
	"github.com/yankovsm/panorama360/internal/infrastructure/workspace"
	"github.com/yankovsm/panorama360/internal/usecase"
)

func main() {
	zlog.Init()
	zlog.Logger.Info().Msg("Starting Panorama 360 API Server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	workspaces, err := workspace.NewManager(cfg.Limits.TempDir)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to initialize workspace manager")
	}

	panoramaService := usecase.NewPanoramaUsecase(
		stitcher.NewImagingStitcher(),
		workspaces,
		cfg.Limits.MaxFiles,
		cfg.Limits.MaxFileSize,
		time.Duration(cfg.Server.ProcessingTimeoutSec)*time.Second,
	)

	engine := ginext.New("api")
	engine.Use(
		middleware.ErrorHandlerMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.CORSMiddleware(),
	)

	engine.GET("/", func(c *ginext.Context) {
		c.JSON(http.StatusOK, ginext.H{"message": "Panorama 360 Generator API", "version": "1.0.0"})
	})
	engine.GET("/health", func(c *ginext.Context) {
		c.JSON(http.StatusOK, ginext.H{"status": "healthy"})
	})

	panoramaHandler := httpHandler.NewPanoramaHandler(
		panoramaService,
		cfg.Limits.MaxFiles,
		cfg.Limits.MaxFileSize,
		cfg.Debug,
	)
	panoramaHandler.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Logger.Fatal().Err(err).Msg("Failed to start API server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	} else {
		zlog.Logger.Info().Msg("HTTP server stopped gracefully")
	}

	zlog.Logger.Info().Msg("API shutdown complete")
}
