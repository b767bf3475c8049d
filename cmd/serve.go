package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/vehicle-inventory/internal/auth"
	"github.com/ukydev/vehicle-inventory/internal/config"
	"github.com/ukydev/vehicle-inventory/internal/db"
	"github.com/ukydev/vehicle-inventory/internal/handlers"
	"github.com/ukydev/vehicle-inventory/internal/inventory"
	"github.com/ukydev/vehicle-inventory/internal/logging"
	"github.com/ukydev/vehicle-inventory/internal/notify"
	"github.com/ukydev/vehicle-inventory/internal/validation"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	rateLimit  int
	rateWindow time.Duration
)

// serveCmd runs the HTTP API and the message change relay
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the inventory API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&rateLimit, "rate-limit", 100, "requests per client per window (0 disables)")
	serveCmd.Flags().DurationVar(&rateWindow, "rate-window", time.Minute, "rate limit window")
}

// notifier is what the server needs from a change-notification transport.
type notifier interface {
	notify.Publisher
	Close()
}

// messageWatcher streams changes of the messages collection.
type messageWatcher interface {
	Watch(ctx context.Context, handle func(context.Context, db.MessageChange)) error
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := db.ConnectMongo(ctx, cfg.BackendURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to disconnect from MongoDB")
		}
	}()
	logger.WithField("database", cfg.Database).Info("Connected to MongoDB")

	database := db.NewDatabase(client.Database(cfg.Database))
	if err := database.EnsureIndexes(ctx); err != nil {
		return err
	}

	bus, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}
	defer bus.Close()

	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	svc := inventory.NewService(inventory.StoreFromDatabase(database), authService, validation.New(), logger)

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:          authService,
		Profiles:      database.Profiles,
		Inventory:     svc,
		AnonKey:       cfg.AnonKey,
		MarkerTTL:     cfg.JWTExpiry,
		Logger:        logger,
		RateLimit:     rateLimit,
		RateWindow:    rateWindow,
		TrustProxy:    cfg.TrustProxy,
		SecureCookies: cfg.SecureCookies,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("port", cfg.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return runRelay(gctx, database.Messages, bus, logger)
	})

	return g.Wait()
}

func newNotifier(cfg *config.Config, logger log.FieldLogger) (notifier, error) {
	if cfg.MQTTBrokerURL == "" {
		logger.Info("MQTT_BROKER_URL not set, change notifications stay in process")
		return notify.NewMemory(notify.DefaultBuffer), nil
	}
	m, err := notify.DialMQTT(cfg.MQTTBrokerURL, cfg.MQTTTopicPrefix, logger)
	if err != nil {
		return nil, err
	}
	logger.WithField("broker", cfg.MQTTBrokerURL).Info("Publishing change notifications over MQTT")
	return m, nil
}

// runRelay publishes one notification per message insert or update. A
// watch that cannot start (no replica set) is logged and the server keeps
// running without live notifications.
func runRelay(ctx context.Context, w messageWatcher, pub notify.Publisher, logger log.FieldLogger) error {
	err := w.Watch(ctx, func(ctx context.Context, change db.MessageChange) {
		ev := notify.Event{
			Table: notify.TableMessages,
			Op:    change.Operation,
			Key:   change.Message.RecipientID,
			ID:    change.Message.ID.Hex(),
		}
		if err := pub.Publish(ctx, ev); err != nil {
			logger.WithError(err).WithFields(log.Fields{"message_id": ev.ID, "op": ev.Op}).Warn("Failed to publish message change")
		}
	})
	if err != nil {
		logger.WithError(err).Error("Message change stream stopped, unread counts will not update live")
	}
	return nil
}
