package main

import (
	"assignmentgateway/internal/cache"
	"assignmentgateway/internal/client"
	"assignmentgateway/internal/config"
	"assignmentgateway/internal/handler"
	"assignmentgateway/internal/logging"
	"assignmentgateway/internal/middleware"
	"assignmentgateway/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		panic(fmt.Sprintf("cannot create config: %v", err))
	}

	logger, err := logging.NewDevelopment(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	ctx = logging.ContextWithLogger(ctx, logger)

	assignmentHTTP, err := client.New(cfg.AssignmentURL, cfg.RequestTimeout)
	if err != nil {
		logger.Fatal(ctx, "cannot create assignment client", zap.Error(err))
	}
	contentHTTP, err := client.New(cfg.ContentURL, cfg.RequestTimeout)
	if err != nil {
		logger.Fatal(ctx, "cannot create content client", zap.Error(err))
	}
	userHTTP, err := client.New(cfg.UserURL, cfg.RequestTimeout)
	if err != nil {
		logger.Fatal(ctx, "cannot create user client", zap.Error(err))
	}

	backend, closeBackend := newBackend(ctx, logger, cfg.RedisURL)
	queryCache := cache.NewQueryCache(backend, cfg.CacheTTL)

	assignmentClient := client.NewAssignmentClient(assignmentHTTP)
	contentClient := client.NewContentClient(contentHTTP)
	userClient := client.NewUserClient(userHTTP)

	validator := service.NewFormValidator(contentClient)
	catalogService := service.NewCatalogService(contentClient, queryCache)
	studentService := service.NewStudentService(userClient, validator, queryCache)
	userService := service.NewUserService(userClient, queryCache, cfg.MeCacheTTL)
	assignmentService := service.NewAssignmentService(assignmentClient, validator, catalogService, studentService, queryCache)

	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	studentHandler := handler.NewStudentHandler(studentService)
	contentHandler := handler.NewContentHandler(catalogService)

	authMiddleware := middleware.NewAuthMiddleware(userService)
	r := chi.NewRouter()
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, 1<<20) // 1 MB
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	assignmentHandler.RegisterRoutes(r, authMiddleware)
	studentHandler.RegisterRoutes(r, authMiddleware)
	contentHandler.RegisterRoutes(r, authMiddleware)

	port := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info(ctx, "Starting server", zap.String("port", port))

	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "cannot start http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	err = multierr.Combine(
		srv.Shutdown(shutdownCtx),
		closeBackend(),
	)
	if err != nil {
		logger.Error(ctx, "server forced to shutdown", zap.Error(err))
	}
	logger.Info(ctx, "Server stopped")
	_ = logger.Sync()
}

// newBackend picks redis when REDIS_URL is set and the in-process cache
// otherwise. An unreachable redis is not fatal, reads just miss.
func newBackend(ctx context.Context, logger *logging.Logger, redisURL string) (cache.Backend, func() error) {
	if redisURL == "" {
		logger.Info(ctx, "Using in-memory cache")
		return cache.NewMemoryCache(), func() error { return nil }
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		opts = &redis.Options{Addr: redisURL}
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn(ctx, "redis is unreachable, cache reads will miss", zap.String("addr", opts.Addr), zap.Error(err))
	} else {
		logger.Info(ctx, "Using redis cache", zap.String("addr", opts.Addr))
	}
	return cache.NewRedisCache(rdb), rdb.Close
}
