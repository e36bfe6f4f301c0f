// Package session holds the current authentication state and fans out
// auth transitions to subscribers. The Store is the single source of truth
// for "am I authenticated, and with what token" — every other component
// reads through it instead of touching the identity provider directly.
package session

import (
	"context"
	"time"
)

// Session is an immutable snapshot of an authenticated user. Replaced
// wholesale on every refresh or sign-out; never mutated in place.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// EventType identifies an auth state transition reported by the provider.
type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventTokenRefreshed EventType = "token_refreshed"
)

// Event is an auth state change pushed by the identity provider.
// Session is nil for EventSignedOut.
type Event struct {
	Type    EventType
	Session *Session
}

// Provider is the identity service the Store bootstraps from and listens to.
// Defined at the consumer per Go convention "accept interfaces, return
// structs" — internal/identity carries the real implementation.
type Provider interface {
	// CurrentSession returns the current session, or nil when signed out.
	CurrentSession(ctx context.Context) (*Session, error)

	// OnAuthStateChange registers a listener for provider-driven auth
	// transitions and returns a function that removes it.
	OnAuthStateChange(fn func(Event)) (unsubscribe func())
}
