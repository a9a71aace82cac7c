// Command voicenote-mcp serves the signed-in user's notes to MCP clients
// over stdio. It reuses the session saved by the voicenote client.
package main

import (
	"context"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"

	"github.com/Vinw199/Voice-note/internal/auth"
	"github.com/Vinw199/Voice-note/internal/config"
	"github.com/Vinw199/Voice-note/internal/db"
	"github.com/Vinw199/Voice-note/internal/mcpserver"
	"github.com/Vinw199/Voice-note/internal/note"
	"github.com/Vinw199/Voice-note/internal/remote"
)

const restoreTimeout = 10 * time.Second

func main() {
	// stdout carries the protocol.
	log.SetOutput(os.Stderr)

	if err := config.LoadDotEnv(""); err != nil {
		log.Fatalf("env: %v", err)
	}
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("missing backend config: %v", err)
	}
	logger := log.New()
	logger.SetOutput(os.Stderr)
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	var (
		notes   note.Store
		backend auth.Backend
		client  *remote.Client
	)
	if cfg.Local() {
		store, err := db.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		defer store.Close()
		notes = store
		backend = auth.NewLocalBackend(store, auth.NewSigner([]byte(cfg.JWTSecret), 0, "voicenote"), false)
	} else {
		client, err = remote.New(cfg.Backend, nil)
		if err != nil {
			log.Fatalf("backend: %v", err)
		}
		notes = client
		backend = client
	}

	provider := auth.NewProvider(backend, auth.NewFileTokenStore(cfg.SessionPath), logger)
	if client != nil {
		client.UseTokens(provider)
	}

	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	id, ok, err := provider.Restore(ctx)
	cancel()
	switch {
	case err != nil:
		logger.WithError(err).Warn("could not restore session; tools need a session")
	case !ok:
		logger.Warn("no saved session; sign in with voicenote first")
	default:
		logger.WithField("user", id.Email).Info("serving notes")
	}

	if err := server.ServeStdio(mcpserver.New(notes, provider, logger)); err != nil {
		logger.WithError(err).Error("mcp server stopped")
		os.Exit(1)
	}
}
