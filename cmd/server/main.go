package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kyiku/hiddenword-back/internal/config"
	"github.com/kyiku/hiddenword-back/internal/glyph"
	"github.com/kyiku/hiddenword-back/internal/handler"
	appmw "github.com/kyiku/hiddenword-back/internal/middleware"
	"github.com/kyiku/hiddenword-back/internal/queue"
	"github.com/kyiku/hiddenword-back/internal/response"
	"github.com/kyiku/hiddenword-back/internal/scene"
	"github.com/kyiku/hiddenword-back/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Load font (embedded Go Regular when HW_FONT_PATH is empty)
	glyphs, err := glyph.Load(cfg.FontPath,
		glyph.WithSampleFactor(cfg.SampleFactor),
		glyph.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}

	e, cleanup := newServer(cfg, glyphs, logger)
	defer cleanup()

	// Log registered endpoints
	log.Println("Registered endpoints:")
	log.Println("  GET  /health")
	log.Println("  GET  /ws")
	log.Println("  GET  /api/health")
	log.Println("  GET  /api/queue/status")
	log.Println("  POST /api/scene")
	log.Println("  POST /api/scene/png")
	log.Println("  GET  /api/scene/:id")
	log.Println("  GET  /api/scene/:id/png")
	log.Printf("Font: %s (sample factor %g)", glyphs.Name(), glyphs.SampleFactor())

	// Start server
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown failed: %v", err)
	}
}

// newServer wires middleware, handlers and routes. cleanup stops the
// background workers and must be called once the server is done.
func newServer(cfg *config.Config, glyphs *glyph.Source, logger *slog.Logger) (*echo.Echo, func()) {
	e := echo.New()

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			e.Logger.Infof("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64K"))
	e.Use(appmw.CORSMiddleware(cfg.AllowedOrigin))

	limiter := appmw.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	rateLimit := limiter.Middleware()

	// Initialize dependencies
	generator := scene.NewGenerator(glyphs, scene.WithLogger(logger))
	defaults := cfg.Settings()
	waitingQueue := queue.NewWaitingQueue(cfg.MaxConcurrent)
	sceneStore := store.NewSceneStore(cfg.StoreSize, cfg.StoreTTL)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(glyphs.Name())
	sceneHandler := handler.NewSceneHandler(generator, defaults)
	sceneHandler.SetLogger(logger)
	sceneHandler.SetStore(sceneStore)
	sceneHandler.SetQueue(waitingQueue)
	sceneHandler.SetTimeout(cfg.Timeout)
	streamHandler := handler.NewStreamHandler(generator, defaults)
	streamHandler.SetLogger(logger)
	streamHandler.SetQueue(waitingQueue)
	streamHandler.SetTimeout(cfg.Timeout)
	streamHandler.SetAllowedOrigins(cfg.AllowedOrigin)

	// Health check (root level for ALB)
	e.GET("/health", healthHandler.Check)

	// WebSocket endpoint
	e.GET("/ws", streamHandler.Connect, rateLimit)

	// API routes
	api := e.Group("/api")
	api.GET("/health", healthHandler.Check)

	// Queue status (debug)
	api.GET("/queue/status", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"queue_length": waitingQueue.Len(),
			"running":      waitingQueue.Running(),
			"stored":       sceneStore.Count(),
		})
	})

	api.POST("/scene", sceneHandler.Generate, rateLimit)
	api.POST("/scene/png", sceneHandler.PNG, rateLimit)
	api.GET("/scene/:id", sceneHandler.Get)
	api.GET("/scene/:id/png", sceneHandler.GetPNG, rateLimit)

	// Unknown API routes answer with the JSON error shape
	api.Any("/*", func(c echo.Context) error {
		return response.ErrorWithCode(c, http.StatusNotFound, response.CodeNotFound, "not found")
	})

	return e, limiter.Stop
}
