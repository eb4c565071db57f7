package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/torqueline/partsource/pkg/errors"
)

// Handshake performs the interactive marketplace login.
type Handshake interface {
	// Login authenticates and returns the captured credential.
	// Implementations must fail when the required credential markers are
	// absent after submission, not just when the page fails to load.
	Login(ctx context.Context) (Credential, error)

	// Close releases the underlying login resource.
	Close(ctx context.Context) error
}

// Manager owns the single cached session and serializes refreshes.
//
// EnsureSession is the only acquisition path: callers never construct
// sessions themselves, and the Query Executor borrows the credential per
// call without persisting it.
type Manager struct {
	store     Store
	handshake Handshake
	ttl       time.Duration
	logger    *log.Logger

	// mu serializes refresh: concurrent callers that both observe an
	// expired session must not both run the login handshake.
	mu        sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewManager creates a session manager.
// If ttl is zero, DefaultTTL is used. If logger is nil, the default logger
// is used.
func NewManager(store Store, handshake Handshake, ttl time.Duration, logger *log.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		store:     store,
		handshake: handshake,
		ttl:       ttl,
		logger:    logger,
	}
}

// EnsureSession returns a live session, running the login handshake only
// when no valid cached session exists. Fails with AUTH_FAILED when the
// handshake cannot establish the credential.
func (m *Manager) EnsureSession(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("session load failed, forcing refresh", "err", err)
	}
	if sess != nil {
		return sess, nil
	}

	m.logger.Info("acquiring marketplace session")
	start := time.Now()

	cred, err := m.handshake.Login(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrCodeAuthFailed) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeAuthFailed, err, "login handshake failed")
	}

	sess = New(cred, m.ttl)
	if err := m.store.Save(ctx, sess); err != nil {
		// A session we cannot cache is still usable for this request.
		m.logger.Warn("session save failed", "err", err)
	}

	m.logger.Info("marketplace session acquired",
		"expires_at", sess.ExpiresAt.Format(time.RFC3339),
		"took", time.Since(start).Round(time.Millisecond))
	return sess, nil
}

// Invalidate drops the cached session. Called by the query layer when the
// remote rejects the credential before its nominal expiry.
func (m *Manager) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Debug("invalidating marketplace session")
	return m.store.Clear(ctx)
}

// Cleanup releases the login resource. Safe to call more than once; the
// handshake is closed exactly once.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.closeOnce.Do(func() {
		m.closeErr = m.handshake.Close(ctx)
	})
	return m.closeErr
}
