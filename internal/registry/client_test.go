package registry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orefield/minedocs/internal/session"
)

// staticSessions is a test SessionSource returning a fixed session.
// A nil session models the signed-out state.
type staticSessions struct {
	sess *session.Session
}

func (s *staticSessions) Current() *session.Session {
	return s.sess
}

func signedIn(token string) *staticSessions {
	return &staticSessions{sess: &session.Session{
		UserID:      "user-1",
		AccessToken: token,
		ExpiresAt:   time.Now().Add(time.Hour),
	}}
}

func signedOut() *staticSessions {
	return &staticSessions{}
}

func newTestClient(url string, sessions SessionSource) *Client {
	return NewClient(url, http.DefaultClient, sessions, nil)
}

func TestDo_AttachesBearerTokenWhenSignedIn(t *testing.T) {
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, signedIn("tok-123"))

	resp, err := client.Do(context.Background(), http.MethodGet, "/mines/", nil, nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestDo_OmitsAuthorizationWhenSignedOut(t *testing.T) {
	var hadAuth bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, signedOut())

	resp, err := client.Do(context.Background(), http.MethodGet, "/mines/", nil, nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.False(t, hadAuth)
}

func TestDo_ReadsSessionAtCallTime(t *testing.T) {
	var tokens []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	sessions := signedIn("tok-old")
	client := newTestClient(srv.URL, sessions)

	resp, err := client.Do(context.Background(), http.MethodGet, "/mines/", nil, nil)
	require.NoError(t, err)
	resp.Body.Close()

	// Token rotates between calls; the transport must pick up the new one.
	sessions.sess = &session.Session{AccessToken: "tok-new"}

	resp, err = client.Do(context.Background(), http.MethodGet, "/mines/", nil, nil)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, tokens, 2)
	assert.Equal(t, "Bearer tok-old", tokens[0])
	assert.Equal(t, "Bearer tok-new", tokens[1])
}

func TestDo_Unauthorized_ForwardedVerbatimWithoutRetry(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"token expired"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, signedIn("tok-stale"))

	_, err := client.Do(context.Background(), http.MethodGet, "/mines/m-1", nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "token expired", apiErr.Detail)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// No automatic retry and no automatic logout inside the transport.
	assert.Equal(t, 1, calls)
}

func TestDo_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"bad request", http.StatusBadRequest, ErrBadRequest},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrForbidden},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"conflict", http.StatusConflict, ErrConflict},
		{"unprocessable", http.StatusUnprocessableEntity, ErrUnprocessable},
		{"server error", http.StatusInternalServerError, ErrServerError},
		{"bad gateway", http.StatusBadGateway, ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"detail":"boom"}`))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL, signedIn("tok"))

			_, err := client.Do(context.Background(), http.MethodGet, "/x", nil, nil)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestDo_DefaultContentTypeAndCallerPrecedence(t *testing.T) {
	var contentType, auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, signedIn("tok-real"))

	// No caller headers: body requests default to JSON.
	resp, err := client.Do(context.Background(), http.MethodPost, "/documents/", strings.NewReader(`{}`), nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "application/json", contentType)

	// Caller headers win over the content-type default, but not over
	// Authorization.
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/octet-stream")
	hdr.Set("Authorization", "Bearer forged")

	resp, err = client.Do(context.Background(), http.MethodPost, "/documents/", strings.NewReader(`x`), hdr)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "application/octet-stream", contentType)
	assert.Equal(t, "Bearer tok-real", auth)
}

func TestDo_NetworkErrorWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // closed on purpose: every dial fails

	client := newTestClient(srv.URL, signedOut())

	_, err := client.Do(context.Background(), http.MethodGet, "/mines/", nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "network failure is not an APIError")
}

func TestDo_SuccessBodyReadable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"value":"ok"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, signedOut())

	resp, err := client.Do(context.Background(), http.MethodGet, "/mines/", nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"value":"ok"}`, string(body))
}
