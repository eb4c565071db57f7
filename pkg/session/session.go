// Package session manages the authenticated marketplace session.
//
// The marketplace does not offer a token API; the only way in is an
// interactive login page, so credential acquisition is a browser-driven
// handshake (see [BrowserHandshake]). Once acquired, the credential is a set
// of cookie pairs plus the derived Cookie header, valid for a fixed window
// measured from acquisition (the remote exposes no expiry of its own).
//
// At most one live session is cached at a time. The [Manager] owns the cache
// and serializes refreshes: two concurrent requests that both observe an
// expired session trigger exactly one login handshake.
//
// # Store backends
//
//   - memory: in-process, for servers and tests
//   - file: persists the credential across CLI invocations
//   - redis: shares the credential across instances
//
// # Usage
//
//	store := session.NewMemoryStore()
//	hs := session.NewBrowserHandshake(loginURL, user, pass, logger)
//	mgr := session.NewManager(store, hs, session.DefaultTTL, logger)
//	defer mgr.Cleanup(ctx)
//
//	sess, err := mgr.EnsureSession(ctx)
//	if err != nil {
//	    return err // AUTH_FAILED
//	}
//	// use sess.Credential
package session

import (
	"context"
	"sort"
	"strings"
	"time"
)

// DefaultTTL is the fixed session validity window measured from acquisition.
const DefaultTTL = 24 * time.Hour

// Credential is the transmittable session material: the cookie pairs
// captured after login plus the derived Cookie header value.
type Credential struct {
	Cookies map[string]string `json:"cookies"`
	Header  string            `json:"header"`
}

// BuildHeader derives the Cookie header value from a cookie map.
// Pairs are sorted by name so the header is deterministic.
func BuildHeader(cookies map[string]string) string {
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+cookies[name])
	}
	return strings.Join(pairs, "; ")
}

// Session is one cached marketplace session.
type Session struct {
	Credential Credential `json:"credential"`
	AcquiredAt time.Time  `json:"acquired_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// IsExpired returns true once the validity window has passed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// New creates a session valid for ttl from now.
func New(cred Credential, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		Credential: cred,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}
}

// Store persists the single cached session.
type Store interface {
	// Load retrieves the cached session. Returns nil, nil when no live
	// session exists; expired sessions are treated as absent.
	Load(ctx context.Context) (*Session, error)

	// Save replaces the cached session.
	Save(ctx context.Context, sess *Session) error

	// Clear removes the cached session. Clearing an empty store is not an
	// error.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
