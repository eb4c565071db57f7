package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/torqueline/partsource/pkg/aimatch"
	"github.com/torqueline/partsource/pkg/cache"
	"github.com/torqueline/partsource/pkg/config"
	"github.com/torqueline/partsource/pkg/inventory"
	"github.com/torqueline/partsource/pkg/marketplace"
	"github.com/torqueline/partsource/pkg/matching"
	"github.com/torqueline/partsource/pkg/session"
	"github.com/torqueline/partsource/pkg/sourcing"
)

// app holds the wired components behind one configuration.
type app struct {
	cfg      *config.Config
	sessions *session.Manager
	runner   *sourcing.Runner

	closers []func() error
}

// newApp constructs the full pipeline from a configuration file: session
// store + browser handshake, marketplace client with a suggestion cache,
// inventory store, AI matcher, ranking engine, and the sourcing runner.
func newApp(ctx context.Context, cfgPath string, logger *log.Logger) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	store, err := newSessionStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	handshake := session.NewBrowserHandshake(cfg.Marketplace.LoginURL, cfg.Username(), cfg.Password(), logger)
	a.sessions = session.NewManager(store, handshake, cfg.SessionTTL(), logger)

	client := marketplace.NewClient(cfg.Marketplace.Endpoint, newSuggestCache(logger), logger)

	invStore, err := newInventoryStore(cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	if closer, ok := invStore.(interface{ Close() error }); ok {
		a.closers = append(a.closers, closer.Close)
	}

	engine := matching.NewEngine(invStore, newMatcher(cfg, logger), cfg.Matching.PreferredVendor, logger)

	accounts := make([]marketplace.VendorAccount, 0, len(cfg.Vendors))
	for _, v := range cfg.Vendors {
		accounts = append(accounts, marketplace.VendorAccount{ID: v.ID, Name: v.Name})
	}

	a.runner = sourcing.NewRunner(a.sessions, client, engine, accounts, logger)
	return a, nil
}

// close releases everything newApp opened, including the browser singleton
// held by the session manager.
func (a *app) close() {
	if a.sessions != nil {
		_ = a.sessions.Cleanup(context.Background())
	}
	for _, c := range a.closers {
		_ = c()
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Store {
	case "", "file":
		return session.NewFileStore(cfg.Session.Dir)
	case "redis":
		return session.NewRedisStore(ctx, cfg.Session.RedisAddr)
	case "memory":
		return session.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

func newInventoryStore(cfg *config.Config) (inventory.Store, error) {
	switch cfg.Inventory.Driver {
	case "postgres":
		return inventory.NewPostgresStore(cfg.Inventory.DSN)
	case "", "memory":
		return inventory.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown inventory driver %q", cfg.Inventory.Driver)
	}
}

// newMatcher wires the AI collaborator, or nil when unconfigured so the
// engine skips the fallback entirely.
func newMatcher(cfg *config.Config, logger *log.Logger) matching.Matcher {
	if cfg.AI.Model == "" || cfg.APIKey() == "" {
		return nil
	}
	gemini, err := aimatch.NewGemini(cfg.AI.Model, cfg.APIKey())
	if err != nil {
		logger.Warn("AI matcher disabled", "err", err)
		return nil
	}
	return aimatch.NewSelector(gemini, logger)
}

// newSuggestCache backs the part-type suggestion cache with the XDG cache
// directory, degrading to no caching when the directory is unavailable.
func newSuggestCache(logger *log.Logger) cache.Cache {
	dir, err := cacheDir()
	if err != nil {
		logger.Debug("suggestion cache disabled", "err", err)
		return cache.NewNullCache()
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Debug("suggestion cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return c
}

// cacheDir returns the cache directory using XDG standard
// (~/.cache/partsource/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
