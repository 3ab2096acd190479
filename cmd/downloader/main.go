package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/anpinghuang/tiktok-void-backend/internal/app/config"
	"github.com/anpinghuang/tiktok-void-backend/internal/app/handlers"
	"github.com/anpinghuang/tiktok-void-backend/internal/app/service"
	"github.com/anpinghuang/tiktok-void-backend/internal/app/tikmate"
	"github.com/anpinghuang/tiktok-void-backend/internal/middleware/compress"
	"github.com/anpinghuang/tiktok-void-backend/internal/middleware/logger"
	"github.com/anpinghuang/tiktok-void-backend/internal/middleware/recovery"
	"github.com/anpinghuang/tiktok-void-backend/internal/pprof"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}

// Router собирает маршруты API и middleware
func Router(h *handlers.Handler, cfg *config.Config) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.RequestLogger)
	router.Use(recovery.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Encoding"},
		MaxAge:         300,
	}))
	router.Use(compress.GzipMiddleware)

	router.Get("/", h.MainPage)
	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Post("/download", h.DownloadHandle)
	})

	return router
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if err := logger.Initialize(cfg.LoggerLevel); err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	defer func() { _ = logger.Log.Sync() }()

	client, err := tikmate.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("error creating tikmate client: %w", err)
	}

	h, err := handlers.NewHandler(cfg, service.NewService(client))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.PprofAddress != "" {
		pprofServer := pprof.Start(cfg.PprofAddress, cfg.TrustedNet())
		defer func() { _ = pprofServer.Close() }()
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: Router(h, cfg),
	}

	logger.Log.Info("TikTok Downloader API running", zap.String("address", srv.Addr))
	if cfg.ProxyURL != "" {
		logger.Log.Info("Proxy configured", zap.String("proxy", cfg.ProxyHost()))
	} else {
		logger.Log.Warn("No proxy configured - requests will be made directly")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
