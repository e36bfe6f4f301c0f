// Package minedocs is a client library for attaching compliance documents to
// mine site records and retrieving them via time-limited links. It
// coordinates three independently-failing collaborators — the identity
// provider, the object store, and the metadata registry — behind one Client:
// session state propagates into every outbound call, uploads run the strict
// store-then-register two-phase protocol, and downloads go through fresh
// signed URLs issued on demand.
package minedocs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orefield/minedocs/internal/config"
	"github.com/orefield/minedocs/internal/download"
	"github.com/orefield/minedocs/internal/expiry"
	"github.com/orefield/minedocs/internal/identity"
	"github.com/orefield/minedocs/internal/ledger"
	"github.com/orefield/minedocs/internal/objectstore"
	"github.com/orefield/minedocs/internal/registry"
	"github.com/orefield/minedocs/internal/session"
	"github.com/orefield/minedocs/internal/upload"
)

// Client is the facade over the document ingestion and secure access
// subsystem. Construct with New; a Client is safe for concurrent use.
type Client struct {
	cfg      *config.Config
	identity *identity.Client
	sessions *session.Store
	registry *registry.Client
	uploader *upload.Coordinator
	issuer   *download.Issuer
	ledger   *ledger.Ledger
	logger   *slog.Logger
}

// options collects optional constructor overrides, mainly for tests.
type options struct {
	httpClient  *http.Client
	objectStore objectstore.Store
}

// Option customizes Client construction.
type Option func(*options)

// WithHTTPClient overrides the HTTP client used for the metadata API and the
// identity provider.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithObjectStore overrides the object store implementation. The default is
// the S3 adapter built from the storage configuration.
func WithObjectStore(s objectstore.Store) Option {
	return func(o *options) { o.objectStore = s }
}

// New wires a Client from resolved configuration. It bootstraps the session
// store (one identity query; failure just means starting signed out), opens
// the upload ledger when configured, and prepares the S3 object store.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	idc := identity.New(cfg.Identity.AuthURL, cfg.Identity.ClientID, cfg.Identity.TokenPath, o.httpClient, logger)
	sessions := session.NewStore(ctx, idc, logger)
	reg := registry.NewClient(cfg.API.BaseURL, o.httpClient, sessions, logger)

	store := o.objectStore
	if store == nil {
		s3store, err := objectstore.NewS3Store(ctx, objectstore.S3Options{
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
		}, logger)
		if err != nil {
			sessions.Close()
			return nil, err
		}

		store = s3store
	}

	var led *ledger.Ledger
	var audit upload.AttemptRecorder

	if cfg.Ledger.Path != "" {
		var err error

		led, err = ledger.Open(ctx, cfg.Ledger.Path, logger)
		if err != nil {
			sessions.Close()
			return nil, err
		}

		audit = led
	}

	return &Client{
		cfg:      cfg,
		identity: idc,
		sessions: sessions,
		registry: reg,
		uploader: upload.NewCoordinator(store, reg, cfg.Storage.Bucket, audit, logger),
		issuer:   download.NewIssuer(reg, logger),
		ledger:   led,
		logger:   logger,
	}, nil
}

// Close tears down the session subscription and the ledger. The Client must
// not be used afterwards.
func (c *Client) Close() error {
	c.sessions.Close()

	if c.ledger != nil {
		return c.ledger.Close()
	}

	return nil
}

// Sessions exposes the session store for UI-side subscription (loading
// state, redirect-to-login on sign-out).
func (c *Client) Sessions() *session.Store {
	return c.sessions
}

// SignIn authenticates against the identity provider. The session store
// picks the transition up through its provider subscription.
func (c *Client) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	return c.identity.SignIn(ctx, email, password)
}

// SignOut discards the current session.
func (c *Client) SignOut(ctx context.Context) error {
	return c.identity.SignOut(ctx)
}

// MineOverview fetches a site record and its document list concurrently and
// joins the results. Neither read depends on the other; failure of either
// fails the join, and an authentication failure on either side is surfaced
// in preference to any other error so the caller can redirect to login.
func (c *Client) MineOverview(ctx context.Context, mineID string) (*registry.Mine, []registry.DocumentMetadata, error) {
	var (
		mine    *registry.Mine
		docs    []registry.DocumentMetadata
		mineErr error
		docsErr error
	)

	// Both goroutines run to completion: error preference needs to see
	// both outcomes, so neither cancels the other.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		mine, mineErr = c.registry.Mine(gctx, mineID)
		return nil
	})

	g.Go(func() error {
		docs, docsErr = c.registry.MineDocuments(gctx, mineID)
		return nil
	})

	_ = g.Wait()

	if err := preferAuth(mineErr, docsErr); err != nil {
		return nil, nil, fmt.Errorf("minedocs: loading mine overview: %w", err)
	}

	return mine, docs, nil
}

// Mines lists all site records.
func (c *Client) Mines(ctx context.Context) ([]registry.Mine, error) {
	return c.registry.Mines(ctx)
}

// Lookups fetches the document category and issuing authority lists
// concurrently.
func (c *Client) Lookups(ctx context.Context) (categories, authorities []registry.LookupOption, err error) {
	var catErr, authErr error

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		categories, catErr = c.registry.DocumentCategories(gctx)
		return nil
	})

	g.Go(func() error {
		authorities, authErr = c.registry.IssuingAuthorities(gctx)
		return nil
	})

	_ = g.Wait()

	if err := preferAuth(catErr, authErr); err != nil {
		return nil, nil, fmt.Errorf("minedocs: loading lookup lists: %w", err)
	}

	return categories, authorities, nil
}

// UploadDocument runs the two-phase upload protocol for one task and blocks
// until it reaches a terminal state. See the upload package for the
// state machine and failure semantics.
func (c *Client) UploadDocument(ctx context.Context, task *upload.Task) (*registry.DocumentMetadata, error) {
	return c.uploader.Run(ctx, task)
}

// DownloadLink issues a fresh time-limited URL for a document.
func (c *Client) DownloadLink(ctx context.Context, documentID string) (string, error) {
	return c.issuer.Issue(ctx, documentID)
}

// ExpiryInfo is the derived display status of a document's expiry date.
type ExpiryInfo struct {
	Status        expiry.Status
	DaysRemaining int // whole calendar days; meaningless when Status is StatusNone
}

// DocumentStatus classifies a document's expiry date relative to now.
func DocumentStatus(doc *registry.DocumentMetadata, now time.Time) ExpiryInfo {
	var expiresAt time.Time
	if doc.ExpiryDate != nil {
		expiresAt = doc.ExpiryDate.Time
	}

	status := expiry.Classify(expiresAt, now)

	info := ExpiryInfo{Status: status}
	if status != expiry.StatusNone {
		info.DaysRemaining = expiry.DaysUntil(expiresAt, now)
	}

	return info
}

// preferAuth returns the first auth failure among errs, else the first
// non-nil error.
func preferAuth(errs ...error) error {
	for _, err := range errs {
		if err != nil && errors.Is(err, registry.ErrUnauthorized) {
			return err
		}
	}

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
