package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/iliyamo/event-registration/internal/config"
	"github.com/iliyamo/event-registration/internal/database"
	"github.com/iliyamo/event-registration/internal/handler"
	"github.com/iliyamo/event-registration/internal/logging"
	"github.com/iliyamo/event-registration/internal/mailer"
	"github.com/iliyamo/event-registration/internal/metrics"
	"github.com/iliyamo/event-registration/internal/queue"
	"github.com/iliyamo/event-registration/internal/router"
	"github.com/iliyamo/event-registration/internal/service"
)

const serviceName = "event-registration"

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "run AutoMigrate before serving")
	return cmd
}

// bootstrap loads configuration and opens the database for every command.
func bootstrap() (config.Config, *slog.Logger, *gorm.DB, error) {
	cfg := config.Load()
	log := logging.New(logging.Config{ServiceName: serviceName, Environment: cfg.Env, Level: cfg.LogLevel})
	db, err := database.Open(database.Options{
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
		Debug:    cfg.LogLevel == "debug",
	}, log)
	if err != nil {
		return cfg, log, nil, err
	}
	return cfg, log, db, nil
}

func serve(parent context.Context, migrate bool) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		log.Error("database connection failed", "error", err)
		return err
	}
	if migrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable, using in-process rate limit and OAuth state; response cache disabled")
	} else {
		defer rdb.Close()
	}

	consumer := &queue.Consumer{
		URL:         cfg.AMQP.URL,
		Mailer:      mailer.New(cfg.SMTP, log),
		BaseURL:     cfg.BaseURL,
		FrontendURL: cfg.FrontendURL,
		ResetTTL:    handler.ResetTokenTTL,
		Log:         log.With("component", "consumer"),
	}

	var publisher service.Publisher
	if cfg.AMQP.Enabled {
		amqpPub := service.NewAMQPPublisher(cfg.AMQP.URL, log)
		defer amqpPub.Close()
		publisher = amqpPub
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("consumer stopped", "error", err)
			}
		}()
	} else {
		publisher = service.InlinePublisher{Handle: consumer.Handle, Log: log}
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	deps := router.Deps{
		Cfg:       cfg,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		DB:        db,
		Redis:     rdb,
		Log:       log,
		Publisher: publisher,
	}
	if g := service.NewGoogleOAuth(cfg.Google, cfg.BaseURL); g != nil {
		deps.Google = g
	}
	e := router.New(deps)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
