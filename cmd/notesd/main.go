// Command notesd serves notes and accounts over HTTP for voicenote clients.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Vinw199/Voice-note/internal/api"
	"github.com/Vinw199/Voice-note/internal/auth"
	"github.com/Vinw199/Voice-note/internal/cache"
	"github.com/Vinw199/Voice-note/internal/config"
	"github.com/Vinw199/Voice-note/internal/db"
	"github.com/Vinw199/Voice-note/internal/note"
)

const (
	issuer          = "notesd"
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := config.LoadDotEnv(""); err != nil {
		log.Fatalf("env: %v", err)
	}
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := log.New()
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	var notes note.Store = store
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		rc := redis.NewClient(opts)
		defer rc.Close()
		notes = cache.New(store, rc, cfg.CacheTTL)
		logger.WithField("ttl", cfg.CacheTTL).Info("note cache enabled")
	}

	signer := auth.NewSigner([]byte(cfg.JWTSecret), cfg.TokenTTL, issuer)
	accounts := auth.NewLocalBackend(store, signer, cfg.RequireConfirmation)

	e := api.New(notes, accounts, signer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.WithField("addr", cfg.Addr).Info("notesd listening")
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	shutdown(e, tp, logger)
}

func shutdown(e *echo.Echo, tp *sdktrace.TracerProvider, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("shutdown server")
	}
	if err := tp.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("shutdown tracer")
	}
}
