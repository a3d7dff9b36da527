// Package app wires configuration, storage, the note store and the autosave
// session into one running session.
package app

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"example.com/ocean-notes/internal/config"
	"example.com/ocean-notes/internal/editor"
	"example.com/ocean-notes/internal/notes"
	"example.com/ocean-notes/internal/storage"
	"example.com/ocean-notes/internal/store"
)

type App struct {
	Config  config.Config
	Log     *zap.Logger
	Store   *store.Store
	Drafts  *editor.Session
	backend storage.Backend
}

// Open validates cfg, opens the configured slot and initializes the store.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	gw := notes.NewGateway(backend, notes.WithGatewayLogger(log.Named("gateway")))
	s := store.New(ctx, gw,
		store.WithLogger(log.Named("store")),
		store.WithToastTTL(cfg.ToastTTL),
	)

	drafts := editor.NewSession(s, cfg.AutosaveDelay, log.Named("editor"))
	if id, ok := s.SelectedID(); ok {
		drafts.Open(id)
	}

	return &App{
		Config:  cfg,
		Log:     log,
		Store:   s,
		Drafts:  drafts,
		backend: backend,
	}, nil
}

// Handler returns the HTTP API for this session.
func (a *App) Handler() http.Handler {
	return notes.NewHandlers(storeView{a.Store}, a.Drafts).Routes()
}

// storeView narrows Subscribe to a change signal for the HTTP layer, which
// re-reads the views it needs.
type storeView struct {
	*store.Store
}

func (v storeView) Subscribe(fn func()) func() {
	return v.Store.Subscribe(func(store.State) { fn() })
}

// Close commits pending edits and releases the slot.
func (a *App) Close() error {
	a.Drafts.Flush()
	a.Drafts.Close()
	return a.backend.Close()
}
