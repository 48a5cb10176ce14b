package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	httpserver "room-reservation/internal"
	"room-reservation/internal/access"
	"room-reservation/internal/audit"
	"room-reservation/internal/auth"
	"room-reservation/internal/booking"
	"room-reservation/internal/config"
	"room-reservation/internal/email"
	app "room-reservation/internal/jwt"
	"room-reservation/internal/nonce"
	"room-reservation/internal/routes"
	"room-reservation/internal/session"
	"room-reservation/internal/storage"
)

const shutdownTimeout = 10 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the room reservation server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return ServerMain(ctx, cfg, provider)
	},
}

// newRedisClient connects only when a store is configured to use redis.
func newRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.SessionStore != "redis" && cfg.NonceStore != "redis" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	slog.Info("Connected to redis", "addr", cfg.Redis.Addr)
	return rdb, nil
}

func newNotifier(cfg *config.Config) (routes.ReservationNotifier, error) {
	if cfg.NotifyTo == "" {
		slog.Debug("Reservation notifications disabled")
		return nil, nil
	}
	client, err := email.NewClient(cfg.Email)
	if err != nil {
		return nil, err
	}
	return email.NewNotifier(client, cfg.NotifyTo, cfg.Location()), nil
}

// NewEnv wires the services used by the HTTP handlers. The returned cleanup
// stops background janitors and closes connections.
func NewEnv(ctx context.Context, cfg *config.Config, store storage.Provider) (*routes.Env, func(), error) {
	rdb, err := newRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closeRedis := func() {
		if rdb != nil {
			rdb.Close()
		}
	}

	nonces, err := nonce.NewStore(cfg.NonceStore, store, rdb)
	if err != nil {
		closeRedis()
		return nil, nil, err
	}

	sessions, err := session.NewStore(cfg.SessionStore, store, rdb)
	if err != nil {
		nonces.Close()
		closeRedis()
		return nil, nil, err
	}

	cleanup := func() {
		sessions.Close()
		nonces.Close()
		closeRedis()
	}

	rbac, err := access.NewRBACFromConfig(cfg.RBAC)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load RBAC policy: %w", err)
	}

	notifier, err := newNotifier(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	env := &routes.Env{
		Config:   cfg,
		Store:    store,
		Booking:  booking.NewService(store, nil),
		Audit:    audit.NewRecorder(store),
		Auth:     auth.NewAuthenticator(store),
		Tokens:   app.NewIssuer(cfg.Secret, nonces, cfg.AuthLifetime()),
		Sessions: session.NewManager(sessions, cfg.Secret, cfg.SessionLifetime()),
		RBAC:     rbac,
		Notifier: notifier,
	}
	return env, cleanup, nil
}

func ServerMain(ctx context.Context, cfg *config.Config, store storage.Provider) error {
	if store == nil {
		return errors.New("storage provider is nil")
	}

	env, cleanup, err := NewEnv(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer cleanup()

	handler, err := httpserver.HTTPServer(env)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting room reservation server", "listen", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
