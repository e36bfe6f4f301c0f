package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/orefield/minedocs/internal/session"
)

const userAgent = "minedocs/0.1"

// SessionSource supplies the current session for credential propagation.
// Defined at the consumer; session.Store provides the real implementation.
type SessionSource interface {
	Current() *session.Session
}

// Client is an HTTP client for the document metadata API. It attaches the
// current bearer token to every call and classifies error responses. It is
// stateless per call: the session is read at call time (tokens rotate), and
// nothing is cached or retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   SessionSource
	logger     *slog.Logger
}

// NewClient creates a metadata API client. baseURL is the externally
// configured API root, e.g. "https://api.example.com".
func NewClient(baseURL string, httpClient *http.Client, sessions SessionSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		sessions:   sessions,
		logger:     logger,
	}
}

// Do executes a single HTTP request against the metadata API. The path is
// appended to the client's base URL. Caller-supplied headers take precedence
// over the JSON content-type default, but never over Authorization, which is
// always derived from the current session (and omitted when signed out).
//
// Non-2xx responses are returned as *APIError carrying the verbatim status
// and body. There is no retry and no automatic token refresh: a 401 reaches
// the caller unmodified, and redirect-to-login policy lives there, not here.
// The caller is responsible for closing the response body on success.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, hdr http.Header) (*http.Response, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("registry: creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("User-Agent", userAgent)

	for key, values := range hdr {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	// Session read happens per call, after caller headers, so the
	// credential can neither go stale nor be overridden.
	if sess := c.sessions.Current(); sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	} else {
		req.Header.Del("Authorization")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return nil, fmt.Errorf("registry: %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Debug("request succeeded",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)

		return resp, nil
	}

	errBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()

	if readErr != nil {
		errBody = []byte("(failed to read response body)")
	}

	c.logger.Warn("request returned error status",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	return nil, newAPIError(resp.StatusCode, errBody)
}

// getJSON performs a GET and decodes the response body into out.
// resource names the entity for ParseError messages.
func (c *Client) getJSON(ctx context.Context, path, resource string, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ParseError{Resource: resource, Err: err}
	}

	return nil
}
