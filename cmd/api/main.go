package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vastucraft/internal/config"
	"vastucraft/internal/database"
	"vastucraft/internal/logger"
	"vastucraft/internal/mail"
	"vastucraft/internal/notify"
	"vastucraft/internal/services"
	"vastucraft/internal/store"

	"go.uber.org/zap"
)

const (
	shutdownTimeout = 30 * time.Second
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 60 * time.Second
)

// backend is the lazily connected database behind the record store.
type backend struct {
	conn  services.DatabaseState
	store store.Store
	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.Bool("debug", cfg.App.Debug),
		zap.String("host", cfg.App.Host),
		zap.String("port", cfg.App.Port),
	)

	// No connection is opened here; the first request (or /health) dials.
	db := newBackend(cfg, zlog)
	zlog.Info("database configured", zap.String("driver", db.conn.Name()))

	sender, err := mail.NewSender(context.Background(), &cfg.Mail, zlog)
	if err != nil {
		zlog.Fatal("failed to create mail sender", zap.Error(err))
	}
	renderer, err := mail.NewRenderer(cfg.Mail.Brand, cfg.Mail.Website)
	if err != nil {
		zlog.Fatal("failed to load mail templates", zap.Error(err))
	}
	dispatcher := notify.NewDispatcher(sender, renderer, cfg.Mail.Operator, zlog)
	zlog.Info("mail configured", zap.String("provider", cfg.Mail.Provider))

	var handlers []*services.SubmissionHandler
	for _, ep := range services.Endpoints() {
		handlers = append(handlers, services.NewSubmissionHandler(ep, db.conn, db.store, dispatcher, zlog))
	}
	health := services.NewHealthService(cfg.App.Name, db.conn, db.ping)
	handler := services.NewRouter(cfg, zlog, health, handlers...)

	// Create HTTP server with timeouts
	addr := fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     zap.NewStdLog(zlog.Named("http")),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		zlog.Fatal("server failed to start", zap.Error(err))
	case sig := <-shutdown:
		zlog.Info("starting graceful shutdown", zap.String("signal", sig.String()))
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		zlog.Error("error during graceful shutdown", zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			zlog.Warn("shutdown timeout exceeded, forcing close")
			_ = httpServer.Close()
		}
	}

	zlog.Info("closing database connection")
	if err := db.close(ctx); err != nil {
		zlog.Error("error closing database", zap.Error(err))
	}

	zlog.Info("server shutdown complete")
}

// newBackend picks mongo or gorm (postgres/sqlite) from the database URL.
func newBackend(cfg *config.Config, zlog *zap.Logger) backend {
	if cfg.Database.IsMongo() {
		conn := database.NewMongoConn(cfg.Database, zlog)
		return backend{
			conn:  conn,
			store: store.NewMongoStore(conn, zlog),
			ping: func(ctx context.Context) error {
				mdb, err := conn.Handle()
				if err != nil {
					return err
				}
				return database.PingMongo(ctx, mdb)
			},
			close: conn.Close,
		}
	}

	conn := database.NewGormConn(cfg.Database, zlog)
	return backend{
		conn:  conn,
		store: store.NewGormStore(conn, zlog),
		ping: func(ctx context.Context) error {
			gdb, err := conn.Handle()
			if err != nil {
				return err
			}
			return database.PingGorm(ctx, gdb)
		},
		close: conn.Close,
	}
}
