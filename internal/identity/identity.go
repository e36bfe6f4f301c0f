// Package identity is the client for the external identity provider. It
// owns the OAuth2 password + refresh-token grants, persists credentials via
// tokenfile, and pushes auth transitions (sign-in, sign-out, silent refresh)
// to listeners. It implements session.Provider.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/orefield/minedocs/internal/session"
	"github.com/orefield/minedocs/internal/tokenfile"
)

// user map keys cached alongside the token.
const (
	userKeyID    = "id"
	userKeyEmail = "email"
)

// Client talks to an OAuth2 password-grant identity service.
// Safe for concurrent use.
type Client struct {
	cfg        *oauth2.Config
	httpClient *http.Client
	tokenPath  string
	logger     *slog.Logger

	mu         sync.Mutex
	src        oauth2.TokenSource
	user       map[string]string
	lastAccess string // previous access token, for refresh detection

	subMu  sync.Mutex
	subs   map[int]func(session.Event)
	nextID int
}

// New creates an identity client. authURL is the provider root (the token
// endpoint lives at authURL + "/token"); tokenPath is where credentials are
// cached between runs.
func New(authURL, clientID, tokenPath string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		cfg: &oauth2.Config{
			ClientID: clientID,
			Endpoint: oauth2.Endpoint{
				TokenURL:  authURL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		tokenPath:  tokenPath,
		logger:     logger,
		subs:       make(map[int]func(session.Event)),
	}
}

// SignIn exchanges credentials for a token via the password grant, persists
// it, and emits EventSignedIn.
func (c *Client) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	tok, err := c.cfg.PasswordCredentialsToken(c.bindHTTPClient(ctx), email, password)
	if err != nil {
		return nil, fmt.Errorf("identity: password sign-in: %w", err)
	}

	user := userFromToken(tok)
	if user[userKeyEmail] == "" {
		user[userKeyEmail] = email
	}

	if err := tokenfile.Save(c.tokenPath, tok, user); err != nil {
		return nil, fmt.Errorf("identity: saving token: %w", err)
	}

	c.mu.Lock()
	c.src = c.cfg.TokenSource(c.bindHTTPClient(context.Background()), tok)
	c.user = user
	c.lastAccess = tok.AccessToken
	c.mu.Unlock()

	sess := c.sessionFrom(tok, user)

	c.logger.Info("signed in",
		slog.String("user_id", sess.UserID),
		slog.Time("expiry", tok.Expiry),
	)

	c.emit(session.Event{Type: session.EventSignedIn, Session: sess})

	return sess, nil
}

// SignOut removes the cached credential and emits EventSignedOut. The
// provider-side session is simply abandoned; token revocation is not part of
// this provider's contract.
func (c *Client) SignOut(_ context.Context) error {
	if err := tokenfile.Remove(c.tokenPath); err != nil {
		return fmt.Errorf("identity: removing token: %w", err)
	}

	c.mu.Lock()
	c.src = nil
	c.user = nil
	c.lastAccess = ""
	c.mu.Unlock()

	c.logger.Info("signed out")
	c.emit(session.Event{Type: session.EventSignedOut})

	return nil
}

// CurrentSession returns the current session, refreshing the token silently
// when its lifetime has elapsed. Returns (nil, nil) when signed out. A
// silent refresh persists the new token and emits EventTokenRefreshed.
func (c *Client) CurrentSession(ctx context.Context) (*session.Session, error) {
	c.mu.Lock()

	if c.src == nil {
		tok, user, err := tokenfile.Load(c.tokenPath)
		if err != nil {
			c.mu.Unlock()
			return nil, err
		}

		if tok == nil {
			c.mu.Unlock()
			return nil, nil
		}

		c.src = c.cfg.TokenSource(c.bindHTTPClient(context.Background()), tok)
		c.user = user
		c.lastAccess = tok.AccessToken
	}

	src := c.src
	user := c.user
	last := c.lastAccess
	c.mu.Unlock()

	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("identity: obtaining token: %w", err)
	}

	if tok.AccessToken != last {
		c.mu.Lock()
		c.lastAccess = tok.AccessToken
		c.mu.Unlock()

		c.logger.Info("token refreshed",
			slog.Time("new_expiry", tok.Expiry),
		)

		if err := tokenfile.Save(c.tokenPath, tok, user); err != nil {
			c.logger.Warn("persisting refreshed token failed",
				slog.String("error", err.Error()),
			)
		}

		sess := c.sessionFrom(tok, user)
		c.emit(session.Event{Type: session.EventTokenRefreshed, Session: sess})

		return sess, nil
	}

	return c.sessionFrom(tok, user), nil
}

// OnAuthStateChange registers a listener for auth transitions and returns a
// function that removes it.
func (c *Client) OnAuthStateChange(fn func(session.Event)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// emit delivers an event to all listeners, outside the subscription lock so
// a listener can unsubscribe itself.
func (c *Client) emit(ev session.Event) {
	c.subMu.Lock()
	fns := make([]func(session.Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// bindHTTPClient injects the client's HTTP transport for the oauth2 library.
func (c *Client) bindHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// sessionFrom builds an immutable session snapshot.
func (c *Client) sessionFrom(tok *oauth2.Token, user map[string]string) *session.Session {
	return &session.Session{
		UserID:      user[userKeyID],
		Email:       user[userKeyEmail],
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.Expiry,
	}
}

// userFromToken extracts the provider's user object from the token response
// ({"user": {"id": ..., "email": ...}} alongside the standard fields).
func userFromToken(tok *oauth2.Token) map[string]string {
	user := make(map[string]string)

	raw, ok := tok.Extra("user").(map[string]any)
	if !ok {
		return user
	}

	if id, ok := raw["id"].(string); ok {
		user[userKeyID] = id
	}

	if email, ok := raw["email"].(string); ok {
		user[userKeyEmail] = email
	}

	return user
}
