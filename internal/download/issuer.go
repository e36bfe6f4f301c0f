// Package download converts document identifiers into time-limited signed
// retrieval URLs. Every issuance is a fresh request — links are never cached,
// because their expiry window belongs to the object store, not to us.
package download

import (
	"context"
	"fmt"
	"log/slog"
)

// LinkSource requests a signed URL for a document. The registry client
// provides the real implementation.
type LinkSource interface {
	DocumentDownloadURL(ctx context.Context, documentID string) (string, error)
}

// IssuanceError reports a failed signed-link request. Never retried
// automatically; the caller may re-attempt manually.
type IssuanceError struct {
	DocumentID string
	Err        error
}

func (e *IssuanceError) Error() string {
	return fmt.Sprintf("download: issuing link for document %s: %v", e.DocumentID, e.Err)
}

func (e *IssuanceError) Unwrap() error {
	return e.Err
}

// Issuer issues signed download links through the metadata registry.
type Issuer struct {
	source LinkSource
	logger *slog.Logger
}

// NewIssuer creates an Issuer backed by the given link source.
func NewIssuer(source LinkSource, logger *slog.Logger) *Issuer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Issuer{source: source, logger: logger}
}

// Issue requests a fresh signed URL for the document. The returned URL is an
// opaque capability string; it is never logged and its lifetime is enforced
// by the object store.
func (i *Issuer) Issue(ctx context.Context, documentID string) (string, error) {
	url, err := i.source.DocumentDownloadURL(ctx, documentID)
	if err != nil {
		i.logger.Warn("link issuance failed",
			slog.String("document_id", documentID),
			slog.String("error", err.Error()),
		)

		return "", &IssuanceError{DocumentID: documentID, Err: err}
	}

	i.logger.Debug("issued download link",
		slog.String("document_id", documentID),
	)

	return url, nil
}
