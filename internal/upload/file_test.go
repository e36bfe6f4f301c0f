package upload

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFile_CapturesContentSizeAndType(t *testing.T) {
	fsys := afero.NewMemMapFs()
	pdf := []byte("%PDF-1.4\nsome document body")
	require.NoError(t, afero.WriteFile(fsys, "/docs/annual permit.pdf", pdf, 0o644))

	file, err := FromFile(fsys, "/docs/annual permit.pdf")
	require.NoError(t, err)

	assert.Equal(t, "annual permit.pdf", file.Name)
	assert.Equal(t, pdf, file.Content)
	assert.Equal(t, int64(len(pdf)), file.Size)
	assert.Equal(t, "application/pdf", file.MimeType)
}

func TestFromFile_SniffsTypeNotExtension(t *testing.T) {
	fsys := afero.NewMemMapFs()
	// Plain text masquerading as a PDF: the sniffed type wins.
	require.NoError(t, afero.WriteFile(fsys, "/notes.pdf", []byte("just text"), 0o644))

	file, err := FromFile(fsys, "/notes.pdf")
	require.NoError(t, err)

	assert.Contains(t, file.MimeType, "text/plain")
}

func TestFromFile_Missing(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := FromFile(fsys, "/absent.pdf")
	require.Error(t, err)
}
