package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"epaws/internal/adapters/auth/introspect"
	"epaws/internal/adapters/auth/jwtverifier"
	redisledger "epaws/internal/adapters/ledger/redis"
	"epaws/internal/adapters/messaging/kafka"
	pg "epaws/internal/adapters/storage/postgres"
	"epaws/internal/domain/events"
	"epaws/internal/domain/notifications"
	"epaws/internal/platform/config"
	"epaws/internal/platform/logger"
	"epaws/internal/platform/metrics"
	"epaws/internal/ports/auth"
	"epaws/internal/router"
	"epaws/internal/workflow"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP, el bus de eventos y el barrido de notificaciones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := root.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log logger.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	stores := router.NewStores(db)
	if cfg.Redis.URL != "" {
		client, err := redisledger.Dial(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer client.Close()
		stores.Ledger = redisledger.NewStore(client)
		log.Info("ledger on redis", nil)
	}

	bus := events.NewBus(events.BusOptions{
		Logger:  log,
		Metrics: m,
		Async:   cfg.AsyncEvents(),
		Buffer:  cfg.Events.Buffer,
	})
	engine := workflow.New(stores, workflow.Options{
		Logger:  log,
		Metrics: m,
		Bus:     bus,
		Locale:  cfg.Notifications.Locale,
	})

	if len(cfg.Kafka.Brokers) > 0 {
		fw, err := kafka.New(kafka.Options{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic, Logger: log})
		if err != nil {
			return err
		}
		defer fw.Close()
		if err := fw.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("kafka topic check failed", map[string]any{"topic": cfg.Kafka.Topic, "err": err.Error()})
		}
		fw.Register(engine)
	}

	verifier, err := newVerifier(cfg, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: router.NewRouter(router.Options{
			AuthVerifier: verifier,
			Engine:       engine,
			Logger:       log,
			Gatherer:     reg,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	sweeper := notifications.NewSweeper(stores.Notifications, cfg.Notifications.Retention, cfg.Notifications.SweepInterval, log, m)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return engine.Run(gctx) })
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error {
		log.Info("starting server", map[string]any{"addr": cfg.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Info("server stopped", nil)
	return err
}

// newVerifier: JWT propio si hay secreto, si no el proveedor externo, y si
// tampoco hay, modo dev con headers X-Debug-*.
func newVerifier(cfg config.Config, log logger.Logger) (auth.AuthVerifier, error) {
	switch {
	case cfg.Auth.JWTSecret != "":
		return jwtverifier.New(cfg.Auth.JWTSecret, cfg.AppName)
	case cfg.Auth.IntrospectURL != "":
		return introspect.New(introspect.Config{URL: cfg.Auth.IntrospectURL, APIKey: cfg.Auth.IntrospectKey})
	default:
		log.Warn("no auth configured; debug headers enabled", nil)
		return nil, nil
	}
}

// openDB devuelve nil sin DSN: el binario corre en memoria.
func openDB(ctx context.Context, cfg config.Config, log logger.Logger) (*sql.DB, error) {
	if cfg.Storage.DSN == "" {
		log.Warn("no database configured; using in-memory storage", nil)
		return nil, nil
	}
	db, err := pg.Open(cfg.Storage.DSN)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
