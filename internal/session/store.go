package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Store caches the current Session and republishes every provider-driven
// transition (sign-in, sign-out, token refresh) to its own subscribers.
// Thread-safe; Session values are immutable so readers never see a
// partially-updated snapshot.
type Store struct {
	provider Provider
	logger   *slog.Logger

	mu      sync.RWMutex
	current *Session
	loading bool

	subMu   sync.Mutex
	subs    map[int]func(*Session)
	nextSub int

	detach func() // removes the provider subscription
}

// NewStore creates a Store bound to the given identity provider and runs the
// initial bootstrap: one CurrentSession query plus a long-lived provider
// subscription. Bootstrap failure is not retried — it surfaces as a nil
// session, equivalent to signed out.
func NewStore(ctx context.Context, provider Provider, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		provider: provider,
		logger:   logger,
		loading:  true,
		subs:     make(map[int]func(*Session)),
	}

	// Subscribe before the initial query so a transition racing the
	// bootstrap is never lost.
	s.detach = provider.OnAuthStateChange(s.handleEvent)

	sess, err := provider.CurrentSession(ctx)
	if err != nil {
		s.logger.Warn("session bootstrap failed, starting signed out",
			slog.String("error", err.Error()),
		)

		sess = nil
	}

	s.mu.Lock()
	// An event may have arrived between subscribe and query; the event
	// writer wins because it is strictly newer than the bootstrap read.
	if s.current == nil {
		s.current = sess
	}
	s.loading = false
	s.mu.Unlock()

	s.logger.Debug("session store ready",
		slog.Bool("authenticated", s.Current() != nil),
	)

	return s
}

// Current returns the current session snapshot, or nil when signed out.
// Read at call time by the transport — never cached across calls, since the
// token may have rotated.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// Loading reports whether the initial bootstrap query is still in flight.
// True only during NewStore; false for the rest of the Store's lifetime.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loading
}

// OnChange registers a listener invoked with the new session after every
// state transition (nil on sign-out). The returned function removes the
// listener; calling it has no effect on the provider subscription.
func (s *Store) OnChange(fn func(*Session)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close detaches the provider subscription. Store reads remain valid but no
// further transitions are observed. Called once at application shutdown.
func (s *Store) Close() {
	if s.detach != nil {
		s.detach()
		s.detach = nil
	}
}

// handleEvent replaces the cached session and fans the change out to
// subscribers. Runs on the provider's notification goroutine.
func (s *Store) handleEvent(ev Event) {
	s.mu.Lock()
	s.current = ev.Session
	s.mu.Unlock()

	s.logger.Debug("auth state changed",
		slog.String("event", string(ev.Type)),
		slog.Bool("authenticated", ev.Session != nil),
	)

	s.subMu.Lock()
	listeners := make([]func(*Session), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()

	// Invoke outside the lock so a listener can unsubscribe itself.
	for _, fn := range listeners {
		fn(ev.Session)
	}
}

// Expired reports whether the session's token lifetime has elapsed.
// The transport still attaches expired tokens — the registry answers 401 and
// the caller owns the redirect — but callers can use this for preflight UI.
func (sess *Session) Expired(now time.Time) bool {
	return !sess.ExpiresAt.IsZero() && sess.ExpiresAt.Before(now)
}
