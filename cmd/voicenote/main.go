// Command voicenote is the terminal client: sign in, browse notes and edit
// them by typing or dictating.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/Vinw199/Voice-note/internal/app"
	"github.com/Vinw199/Voice-note/internal/auth"
	"github.com/Vinw199/Voice-note/internal/config"
	"github.com/Vinw199/Voice-note/internal/daemon"
	"github.com/Vinw199/Voice-note/internal/db"
	"github.com/Vinw199/Voice-note/internal/note"
	"github.com/Vinw199/Voice-note/internal/remote"
	"github.com/Vinw199/Voice-note/internal/session"
)

const (
	localIssuer   = "voicenote"
	localTokenTTL = 30 * 24 * time.Hour
)

func main() {
	if err := config.LoadDotEnv(""); err != nil {
		log.Fatalf("env: %v", err)
	}
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("missing backend config: %v", err)
	}

	logger, closeLog, err := fileLogger(cfg.LogPath, cfg.Debug)
	if err != nil {
		log.Fatalf("log file: %v", err)
	}
	defer closeLog()

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
		backend = auth.NewLocalBackend(store, auth.NewSigner([]byte(cfg.JWTSecret), localTokenTTL, localIssuer), false)
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

	logger.WithFields(log.Fields{
		"backend": cfg.Backend,
		"socket":  cfg.SocketPath,
	}).Info("voicenote starting")

	m := app.New(app.Deps{
		Auth:  provider,
		Notes: notes,
		NewEngine: func() session.Engine {
			return daemon.NewEngine(cfg.SocketPath, logger)
		},
		Logger: logger,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "voicenote: %v\n", err)
		os.Exit(1)
	}
}

// fileLogger logs to path because the terminal belongs to the TUI.
func fileLogger(path string, debug bool) (*log.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	logger := log.New()
	logger.SetOutput(f)
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger, func() { f.Close() }, nil
}
