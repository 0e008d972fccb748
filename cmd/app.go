package cmd

import (
	"fmt"
	"io"

	"github.com/iksnae/chatpane/internal"
)

// app bundles everything a command needs. Close releases the storage backend.
type app struct {
	cfg        *internal.Config
	slot       internal.Slot
	closer     io.Closer
	store      *internal.SessionStore
	auth       *internal.AuthStore
	client     *internal.Client
	authClient *internal.AuthClient
}

// loadConfig reads the config file and applies the persistent flags on top
func loadConfig() (*internal.Config, error) {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if storageBackend != "" {
		cfg.Storage = storageBackend
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	slot, closer, err := cfg.OpenSlot()
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	internal.LogDebug("Using %s storage in %s", cfg.Storage, cfg.DataPath())

	store := internal.NewSessionStore(slot)
	store.LoadAll()

	return &app{
		cfg:        cfg,
		slot:       slot,
		closer:     closer,
		store:      store,
		auth:       internal.NewAuthStore(slot),
		client:     internal.NewClient(cfg.BaseURL, cfg.RequestTimeout),
		authClient: internal.NewAuthClient(cfg.AuthURL, cfg.AuthTimeout),
	}, nil
}

func (a *app) Close() {
	if err := a.closer.Close(); err != nil {
		internal.LogWarn("Failed to close storage: %v", err)
	}
}

// requireUser returns the logged-in user or ErrNotLoggedIn
func (a *app) requireUser() (*internal.User, error) {
	user, ok := a.auth.Current()
	if !ok {
		return nil, internal.ErrNotLoggedIn
	}
	return user, nil
}

// controller creates a conversation controller acting for user
func (a *app) controller(user *internal.User, model string) *internal.Controller {
	if model == "" {
		model = a.cfg.Model
	}
	ctrl := internal.NewController(a.store, a.client, model, user.Email)
	if r := internal.NewCommandRecognizer(a.cfg.SpeechCommand); r != nil {
		ctrl.SetRecognizer(r)
	}
	return ctrl
}

func newRenderer(w io.Writer) *internal.Renderer {
	return internal.NewRenderer(internal.TerminalWidth(100), internal.IsTerminal(w))
}

// findSession resolves a session by id, short id or title
func (a *app) findSession(query string) (internal.Session, error) {
	session, ok := a.store.Find(query)
	if !ok {
		return internal.Session{}, fmt.Errorf("%w: %s (use 'chatpane list' to see available sessions)", internal.ErrSessionNotFound, query)
	}
	return session, nil
}
