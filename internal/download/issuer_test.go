package download

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orefield/minedocs/internal/registry"
)

// fakeLinkSource counts calls and returns a canned URL or error.
type fakeLinkSource struct {
	url   string
	err   error
	calls int
}

func (f *fakeLinkSource) DocumentDownloadURL(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}

	return f.url, nil
}

func TestIssue_FreshLinkPerInvocation(t *testing.T) {
	source := &fakeLinkSource{url: "https://store.example.com/signed?sig=a"}
	issuer := NewIssuer(source, nil)

	url, err := issuer.Issue(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, source.url, url)

	// No caching: every invocation goes back to the registry.
	_, err = issuer.Issue(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestIssue_FailureWrapsWithoutRetry(t *testing.T) {
	source := &fakeLinkSource{err: &registry.APIError{
		StatusCode: 404,
		Detail:     "document not found",
		Err:        registry.ErrNotFound,
	}}
	issuer := NewIssuer(source, nil)

	_, err := issuer.Issue(context.Background(), "doc-missing")

	var issErr *IssuanceError
	require.ErrorAs(t, err, &issErr)
	assert.Equal(t, "doc-missing", issErr.DocumentID)
	assert.ErrorIs(t, err, registry.ErrNotFound)
	assert.Equal(t, 1, source.calls)
}
