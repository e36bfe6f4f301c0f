package upload

import (
	"fmt"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// FromFile captures a local file for upload: content, size, base name, and
// a sniffed mime type. Content sniffing is used rather than trusting the
// extension — the captured type is recorded in the metadata registry.
func FromFile(fsys afero.Fs, path string) (LocalFile, error) {
	content, err := afero.ReadFile(fsys, path)
	if err != nil {
		return LocalFile{}, fmt.Errorf("upload: reading %s: %w", path, err)
	}

	return LocalFile{
		Name:     filepath.Base(path),
		MimeType: mimetype.Detect(content).String(),
		Size:     int64(len(content)),
		Content:  content,
	}, nil
}
