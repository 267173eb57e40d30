// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"io"

	"go.uber.org/zap"

	"kenes/cli/internal/auth"
	"kenes/cli/internal/backend"
	"kenes/cli/internal/cache"
	"kenes/cli/internal/config"
	"kenes/cli/internal/events"
	"kenes/cli/internal/keychain"
	"kenes/cli/internal/logging"
	"kenes/cli/internal/queries"
	"kenes/cli/internal/session"
	"kenes/cli/internal/xdg"
)

// openKeyring is replaced in tests with an in-memory keyring.
var openKeyring = keychain.Open

// application holds every component of one CLI invocation.
type application struct {
	cfg       config.Config
	log       *zap.Logger
	syncLog   func() error
	bus       *events.Bus
	presenter *logging.Presenter
	session   *session.Store
	queries   *queries.Service
	auth      *auth.Service
}

func newApplication(cfg config.Config, verbose bool, stderr io.Writer) (*application, error) {
	stateDir, err := xdg.StateDir()
	if err != nil {
		return nil, err
	}
	log, syncLog, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Dir:     stateDir,
		Verbose: verbose,
		Console: stderr,
	})
	if err != nil {
		return nil, err
	}

	fileDir := cfg.Keyring.FileDir
	if fileDir == "" {
		fileDir = stateDir
	}
	ring, err := openKeyring(keychain.Config{
		Backend:  cfg.Keyring.Backend,
		FileDir:  fileDir,
		Password: cfg.Keyring.Password,
	})
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()
	presenter := logging.NewPresenter(stderr)
	bus.Subscribe(presenter.Handle)
	bus.Subscribe(func(e events.Event) {
		if e.Type == events.Failure || e.Type == events.SessionExpired {
			log.Info("notification", zap.String("type", string(e.Type)),
				zap.String("operation", e.Operation), zap.Error(e.Err))
		}
	})

	sess := session.NewStore(ring, session.WithLogger(log))
	client := backend.NewClient(backend.ClientConfig{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.RequestTimeout.Duration,
		Session:   sess,
		Bus:       bus,
		Logger:    log,
		UserAgent: "kenes-cli/" + Version,
	})
	api := backend.New(client)
	c := cache.New(cache.Options{
		StaleTime: cfg.StaleTime.Duration,
		RetainFor: cfg.RetainFor.Duration,
		Logger:    log,
		Bus:       bus,
	})

	log.Debug("application ready", zap.String("api_url", cfg.APIURL))
	return &application{
		cfg:       cfg,
		log:       log,
		syncLog:   syncLog,
		bus:       bus,
		presenter: presenter,
		session:   sess,
		queries:   queries.NewService(api, c),
		auth:      auth.NewService(api, sess, c, bus, log),
	}, nil
}

func (a *application) close() {
	_ = a.syncLog()
}
