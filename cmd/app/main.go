package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"github.com/burenotti/healthtrack/internal/adapter/api"
	"github.com/burenotti/healthtrack/internal/adapter/storage"
	entrystorage "github.com/burenotti/healthtrack/internal/adapter/storage/entries"
	goalstorage "github.com/burenotti/healthtrack/internal/adapter/storage/goals"
	"github.com/burenotti/healthtrack/internal/adapter/storage/migrations"
	"github.com/burenotti/healthtrack/internal/app/authapp"
	"github.com/burenotti/healthtrack/internal/app/entryapp"
	"github.com/burenotti/healthtrack/internal/app/goalapp"
	"github.com/burenotti/healthtrack/internal/app/messagebus"
	"github.com/burenotti/healthtrack/internal/config"
	"github.com/burenotti/healthtrack/internal/domain"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/leporo/sqlf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	logger := initLogger(cfg)
	loc := cfg.App.Timezone.Location()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := api.NewMetrics(registry)

	bus := messagebus.New(logger)
	bus.RegisterAll(func(event domain.Event) error {
		logger.Info("domain event published", "type", event.Type(), "at", event.PublishedAt())
		return nil
	})
	bus.RegisterAll(metrics.CountEvent)

	sqlf.SetDialect(sqlf.PostgreSQL)

	db, err := sql.Open("pgx", cfg.DB.DSN)
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.DB.ConnMaxIdle)

	if cfg.DB.Migrate {
		if err := migrations.Up(db); err != nil {
			panic("failed to migrate database: " + err.Error())
		}
		logger.Info("database schema is up to date")
	}

	pool := &storage.DB{DB: db}

	authorizer := &authapp.Authorizer{
		Cost:             cfg.JWT.BcryptCost,
		Secret:           cfg.JWT.Secret,
		AccessTokenTTL:   cfg.JWT.AccessTokenTTL,
		AuthorizationTTL: cfg.JWT.RefreshTokenTTL,
	}

	server := api.NewServer(
		api.Addr(cfg.Server.Host, cfg.Server.Port),
		api.Logger(logger),
		api.DBContext(pool),
		api.MessageBus(bus),
		api.Registry(registry),
		api.WithMetrics(metrics),
		api.WithTimeouts(api.Timeouts{
			Read:       cfg.Server.ReadTimeout,
			ReadHeader: cfg.Server.ReadHeaderTimeout,
			Write:      cfg.Server.WriteTimeout,
			Idle:       cfg.Server.IdleTimeout,
		}),
		api.AuthService(authapp.NewService(authorizer, logger)),
		api.GoalService(goalapp.New(logger, loc)),
		api.EntryService(entryapp.New(
			logger,
			loc,
			entrystorage.NewPostgresStorage(pool),
			goalstorage.NewPostgresStorage(pool),
		)),
	)

	ctx := context.Background()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error)

	go func() {
		defer close(errCh)
		errCh <- server.Start()
	}()

	logger.Info("server started", "host", cfg.Server.Host, "port", cfg.Server.Port, "timezone", loc.String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server was not shutdown gracefully", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server closed with unexpected error", "error", err)
			}
		}
	}

	bus.Close()
	logger.Info("server shutdown")
}

func initLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	switch cfg.App.Env {
	case config.Development:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		})
	case config.Production:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelInfo,
		})
	default:
		panic("invalid env")
	}

	return slog.New(handler)
}
