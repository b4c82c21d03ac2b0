package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/chatly/chatweb/internal/authapi"
	"github.com/chatly/chatweb/internal/config"
	"github.com/chatly/chatweb/internal/handler"
	"github.com/chatly/chatweb/internal/identity"
	"github.com/chatly/chatweb/internal/repository"
	"github.com/chatly/chatweb/internal/service"
	"github.com/chatly/chatweb/internal/session"
	"github.com/chatly/chatweb/internal/telemetry"
)

const purgeInterval = time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "chatweb", cfg.OTelEndpoint)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	}

	backend, closeBackend, err := openSessionBackend(ctx, cfg)
	if err != nil {
		slog.Error("session backend unavailable", "backend", cfg.SessionBackend, "error", err)
		os.Exit(1)
	}
	defer closeBackend()

	authService := service.NewAuthService(
		authapi.NewClient(cfg.AuthAPIURL, cfg.AuthAPITimeout),
		identity.NewGoogleClient(identity.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Timeout:      cfg.AuthAPITimeout,
		}),
		cfg.ChatsURL,
	)

	router := handler.NewRouter(handler.RouterConfig{
		Service:        authService,
		Sessions:       session.NewManager(backend, cfg.CookieSecret, cfg.SessionTTL, cfg.IsProduction()),
		CookieSecret:   cfg.CookieSecret,
		SecureCookies:  cfg.IsProduction(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "session_backend", cfg.SessionBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Warn("tracing shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}

func setupLogger(cfg config.Config) {
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}

// openSessionBackend returns the server-side session store selected by
// SESSION_BACKEND, or nil for cookie mode. The returned func releases it.
func openSessionBackend(ctx context.Context, cfg config.Config) (session.Backend, func(), error) {
	switch cfg.SessionBackend {
	case config.BackendMemory:
		return session.NewMemoryBackend(), func() {}, nil

	case config.BackendRedis:
		client, err := repository.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisSessionRepository(client), func() { client.Close() }, nil

	case config.BackendMySQL:
		return openSQLBackend(ctx, repository.DriverMySQL, cfg.DatabaseDSN)

	case config.BackendSQLite:
		return openSQLBackend(ctx, repository.DriverSQLite, cfg.SQLitePath)

	default:
		return nil, func() {}, nil
	}
}

func openSQLBackend(ctx context.Context, driver, dsn string) (session.Backend, func(), error) {
	db, err := repository.NewDB(driver, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	repo := repository.NewSessionRepository(db)
	go purgeExpired(ctx, repo)
	return repo, func() { closeDB(db) }, nil
}

// purgeExpired deletes expired sessions every purgeInterval until ctx ends.
func purgeExpired(ctx context.Context, repo *repository.SessionRepository) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged expired sessions", "count", n)
			}
		}
	}
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}
