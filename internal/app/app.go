// Package app wires one application context: storage, the request client
// and both stores. Views receive the context explicitly.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
	"github.com/rs/zerolog"

	"contactbook/internal/apiclient"
	"contactbook/internal/config"
	"contactbook/internal/contacts"
	"contactbook/internal/session"
	"contactbook/internal/storage"
)

type App struct {
	Config   config.Config
	Log      zerolog.Logger
	Storage  storage.Storage
	Client   *apiclient.Client
	Session  *session.Store
	Contacts *contacts.Store
	Metrics  *metrics.Set
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	st, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return NewWithStorage(cfg, st, log), nil
}

// NewWithStorage builds the context on an already opened storage.
func NewWithStorage(cfg config.Config, st storage.Storage, log zerolog.Logger) *App {
	set := metrics.NewSet()
	client := apiclient.New(apiclient.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Storage: st,
		Logger:  log.With().Str("component", "apiclient").Logger(),
		Metrics: set,
	})
	sess := session.New(client, st, log.With().Str("component", "session").Logger())
	list := contacts.New(client, log.With().Str("component", "contacts").Logger())

	client.OnUnauthorized(func() {
		if !sess.IsAuthenticated() {
			return
		}
		sess.Expire()
		list.Reset()
	})

	return &App{
		Config:   cfg,
		Log:      log,
		Storage:  st,
		Client:   client,
		Session:  sess,
		Contacts: list,
		Metrics:  set,
	}
}

// Close releases the storage backend if it holds resources.
func (a *App) Close() error {
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
