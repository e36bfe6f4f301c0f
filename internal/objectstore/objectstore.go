// Package objectstore writes document blobs to an S3-compatible object
// store. The store is assumed atomic per object: a failed Put leaves no
// partial artifact, and a successful Put is durable under the returned key.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store is the object-store write interface the upload coordinator depends
// on. Implementations must be atomic per object.
type Store interface {
	// Put writes body under bucket/key and returns the storage path the
	// metadata registry should reference (the object key).
	Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) (string, error)
}

// BuildKey generates a fresh destination key for a document upload:
// {mineID}/{uuid}.{extension}, with the extension carried over from the
// original filename. The random suffix makes every key unique by
// construction, so retrying an upload can never overwrite an earlier object.
// Part of the external storage contract — do not change the scheme.
func BuildKey(mineID, filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	id := uuid.New()

	if ext == "" {
		return fmt.Sprintf("%s/%s", mineID, id)
	}

	return fmt.Sprintf("%s/%s.%s", mineID, id, ext)
}
