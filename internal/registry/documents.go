package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// CreateDocument registers metadata for an already-stored object (phase 2 of
// the upload protocol). The returned record's StoragePath echoes the request.
func (c *Client) CreateDocument(ctx context.Context, req CreateDocumentRequest) (*DocumentMetadata, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("registry: encoding document request: %w", err)
	}

	c.logger.Info("registering document",
		slog.String("mine_id", req.MineID),
		slog.String("storage_path", req.StoragePath),
		slog.Int("category_id", req.CategoryID),
		slog.Int("authority_id", req.AuthorityID),
	)

	resp, err := c.Do(ctx, http.MethodPost, "/documents/", bytes.NewReader(payload), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var doc DocumentMetadata
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, &ParseError{Resource: "document", Err: err}
	}

	return &doc, nil
}

// downloadURLResponse is the wire shape of GET /documents/{id}/download-url.
type downloadURLResponse struct {
	DownloadURL string `json:"download_url"`
}

// DocumentDownloadURL requests a fresh signed retrieval URL for a document.
// The URL is an opaque capability whose expiry window is enforced by the
// object store; it is never cached and never logged.
func (c *Client) DocumentDownloadURL(ctx context.Context, documentID string) (string, error) {
	var payload downloadURLResponse
	path := fmt.Sprintf("/documents/%s/download-url", url.PathEscape(documentID))

	if err := c.getJSON(ctx, path, "download URL", &payload); err != nil {
		return "", err
	}

	if payload.DownloadURL == "" {
		return "", &ParseError{Resource: "download URL", Err: fmt.Errorf("empty download_url field")}
	}

	return payload.DownloadURL, nil
}
