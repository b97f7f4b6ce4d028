package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/mapoverlay/internal/adapters/http"
	natsadapter "github.com/samirrijal/mapoverlay/internal/adapters/nats"
	"github.com/samirrijal/mapoverlay/internal/adapters/postgres"
	"github.com/samirrijal/mapoverlay/internal/adapters/valkey"
	"github.com/samirrijal/mapoverlay/internal/core/ports"
	"github.com/samirrijal/mapoverlay/internal/core/usecases"
	"github.com/samirrijal/mapoverlay/internal/pkg/config"
	"github.com/samirrijal/mapoverlay/internal/pkg/logging"
	"github.com/samirrijal/mapoverlay/internal/pkg/metrics"
	"github.com/samirrijal/mapoverlay/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("mapoverlay-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go reportPoolStats(ctx, db)

	// Cache. A nil *valkey.Cache must not end up inside a ports.CacheService.
	var cache ports.CacheService
	vc, err := valkey.New(cfg.Valkey.Addr, "mapoverlay:")
	if err != nil {
		slog.Warn("valkey unavailable, page images disabled", "error", err)
		vc = nil
	} else {
		defer vc.Close()
		cache = vc
	}

	// NATS
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, overlay events disabled", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	// Repos
	alignmentRepo := postgres.NewAlignmentRepo(db)

	// Use cases
	alignmentSvc := usecases.NewAlignmentService(alignmentRepo, cache, events, cfg.Overlay.DefaultOpacity)
	var pageImageSvc *usecases.PageImageService
	if cache != nil {
		pageImageSvc = usecases.NewPageImageService(alignmentRepo, cache, cfg.Overlay.PageImageTTLSeconds, cfg.Overlay.MaxPageImageMB)
	}

	// Drop page images of deleted alignments. API instances share one queue
	// consumer, so each deletion is handled once for the shared cache.
	if pageImageSvc != nil && events != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			if err := sub.SubscribeOverlayEvents(ctx, "page-image-janitor", pageImageSvc.HandleOverlayEvent); err != nil {
				slog.Warn("subscribe overlay events", "error", err)
			}
		}
	}

	deps := &http.Dependencies{
		Alignments: alignmentSvc,
		PageImages: pageImageSvc,
		NATS:       natsConn,
		DB:         db,
		Cache:      vc,
		Version:    version,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB << 20,
		AppName:      "Map Overlay API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, If-None-Match",
		ExposeHeaders:    "ETag, Link, Location, Deprecation, Sunset",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", version)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats copies pgxpool statistics into Prometheus every 15s.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	var lastEmpty int64
	for {
		select {
		case <-ticker.C:
			lastEmpty = metrics.UpdateDBPoolMetrics(db.Pool.Stat(), lastEmpty)
		case <-ctx.Done():
			return
		}
	}
}
