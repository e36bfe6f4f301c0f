package objectstore

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKey_SchemeAndUniqueness(t *testing.T) {
	key := BuildKey("mine-1", "annual permit.pdf")

	parts := strings.SplitN(key, "/", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, "mine-1", parts[0])
	assert.True(t, strings.HasSuffix(parts[1], ".pdf"))

	// The middle segment is a real UUID.
	_, err := uuid.Parse(strings.TrimSuffix(parts[1], ".pdf"))
	require.NoError(t, err)

	// Keys are never reused across attempts for the same logical upload.
	assert.NotEqual(t, key, BuildKey("mine-1", "annual permit.pdf"))
}

func TestBuildKey_NoExtension(t *testing.T) {
	key := BuildKey("mine-2", "README")

	parts := strings.SplitN(key, "/", 2)
	require.Len(t, parts, 2)
	assert.Equal(t, "mine-2", parts[0])
	assert.NotContains(t, parts[1], ".")

	_, err := uuid.Parse(parts[1])
	require.NoError(t, err)
}

func TestBuildKey_PreservesLastExtensionOnly(t *testing.T) {
	key := BuildKey("mine-3", "backup.tar.gz")
	assert.True(t, strings.HasSuffix(key, ".gz"))
	assert.False(t, strings.Contains(strings.TrimSuffix(key, ".gz"), ".tar"))
}
