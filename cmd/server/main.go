package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/order-service/internal/adapter/cache"
	"github.com/example/order-service/internal/adapter/httpapi"
	"github.com/example/order-service/internal/adapter/natsstan"
	"github.com/example/order-service/internal/adapter/repo"
	"github.com/example/order-service/internal/config"
	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/usecase"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	})).With("service", "order-service")
	slog.SetDefault(logger)

	var orders domain.OrderRepository
	switch cfg.Storage.Driver {
	case "memory":
		orders = repo.NewMemoryOrderRepo()
	default:
		pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
		if err != nil {
			logger.Error("db connect", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := repo.EnsureSchema(ctx, pool); err != nil {
			logger.Error("init schema", "error", err)
			os.Exit(1)
		}
		orders = repo.NewPostgresOrderRepo(pool)
	}

	var events domain.OrderEventPublisher
	if cfg.Stan.URL != "" {
		pub, err := natsstan.Connect(ctx, cfg.Stan.ClusterID, cfg.Stan.ClientID, cfg.Stan.URL, cfg.Stan.Subject)
		if err != nil {
			// events are advisory, the API works without them
			logger.Warn("stan connect", "error", err)
		} else {
			events = pub
		}
	}

	orderCache := cache.NewMemoryOrderCache()
	server := httpapi.NewServer(httpapi.UseCases{
		Create: usecase.CreateOrder{Repo: orders, Cache: orderCache, Events: events, BaseURL: cfg.App.BaseURL},
		Get:    usecase.GetOrder{Repo: orders, Cache: orderCache},
		List:   usecase.ListOrders{Repo: orders, BaseURL: cfg.App.BaseURL},
		Update: usecase.UpdateOrder{Repo: orders, Cache: orderCache, Events: events},
		Delete: usecase.DeleteOrder{Repo: orders, Cache: orderCache, Events: events},
	}, logger)

	srv := &http.Server{
		Addr:         cfg.App.Addr,
		Handler:      server.Router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	go func() {
		logger.Info("http listening", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = srv.Shutdown(shutdownCtx)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
