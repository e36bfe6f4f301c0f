package registry

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// Mines lists all site records.
func (c *Client) Mines(ctx context.Context) ([]Mine, error) {
	var mines []Mine
	if err := c.getJSON(ctx, "/mines/", "mine list", &mines); err != nil {
		return nil, err
	}

	return mines, nil
}

// Mine fetches a single site record by id.
func (c *Client) Mine(ctx context.Context, mineID string) (*Mine, error) {
	var mine Mine
	path := fmt.Sprintf("/mines/%s", url.PathEscape(mineID))

	if err := c.getJSON(ctx, path, "mine", &mine); err != nil {
		return nil, err
	}

	return &mine, nil
}

// MineDocuments lists the registered documents for a site.
func (c *Client) MineDocuments(ctx context.Context, mineID string) ([]DocumentMetadata, error) {
	var docs []DocumentMetadata
	path := fmt.Sprintf("/mines/%s/documents", url.PathEscape(mineID))

	if err := c.getJSON(ctx, path, "document list", &docs); err != nil {
		return nil, err
	}

	c.logger.Debug("fetched mine documents",
		slog.String("mine_id", mineID),
		slog.Int("count", len(docs)),
	)

	return docs, nil
}
