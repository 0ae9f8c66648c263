package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/progressor-app/progressor/internal/adapter/gemini"
	"github.com/progressor-app/progressor/internal/adapter/hfclassifier"
	apihttp "github.com/progressor-app/progressor/internal/adapter/http"
	"github.com/progressor-app/progressor/internal/adapter/postgres"
	"github.com/progressor-app/progressor/internal/adapter/ristretto"
	"github.com/progressor-app/progressor/internal/adapter/ws"
	"github.com/progressor-app/progressor/internal/config"
	"github.com/progressor-app/progressor/internal/interpreter"
	"github.com/progressor-app/progressor/internal/logger"
	"github.com/progressor-app/progressor/internal/middleware"
	"github.com/progressor-app/progressor/internal/resilience"
	"github.com/progressor-app/progressor/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"gemini_model", cfg.Gemini.Model,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	pendingCache, err := ristretto.New(cfg.Cache.MaxBytes)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer pendingCache.Close()

	// --- AI clients ---

	completer := gemini.NewClient(cfg.Gemini)
	completerBreaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	completer.SetBreaker(completerBreaker)

	classifier := hfclassifier.NewClient(cfg.Classifier)
	classifier.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	// --- Services ---

	store := postgres.NewStore(pool)
	interp := interpreter.New(store, pendingCache, completer, classifier)

	authSvc := service.NewAuthService(store, &cfg.Auth)
	chatSvc, err := service.NewChatService(ctx, store, interp)
	if err != nil {
		return fmt.Errorf("chat service: %w", err)
	}

	// --- HTTP ---

	wsHandler := ws.NewHandler(chatSvc)
	handlers := &apihttp.Handlers{
		Auth:           authSvc,
		Chat:           chatSvc,
		Store:          store,
		PingDB:         pool.Ping,
		AIBreakerState: completerBreaker.State,
	}

	r := chi.NewRouter()
	r.Use(apihttp.CORS(cfg.Server.CORSOrigin))
	r.Use(apihttp.Logger)
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Auth(authSvc))

	apihttp.MountRoutes(r, handlers, wsHandler.HandleWS)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// WebSocket sessions outlive any sane write timeout; rely on
		// read deadlines inside the chat loop instead.
		IdleTimeout: 120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
