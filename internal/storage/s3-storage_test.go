package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFileTypeOf(t *testing.T) {
	assert.Equal(t, "pdf", FileTypeOf("transcript.PDF"))
	assert.Equal(t, "image", FileTypeOf("scan.jpeg"))
	assert.Equal(t, "image", FileTypeOf("photo.png"))
	assert.Equal(t, "docx", FileTypeOf("essay.docx"))
	assert.Equal(t, "txt", FileTypeOf("notes.txt"))
	assert.Equal(t, "unknown", FileTypeOf("archive.zip"))
	assert.Equal(t, "unknown", FileTypeOf("noextension"))
}

func TestStoredFileFromKey(t *testing.T) {
	now := time.Now()

	f := storedFileFromKey("user-uploads/u1/application/transcript.pdf", "user-uploads/u1/", 1234, now)
	assert.Equal(t, "application", f.Section)
	assert.Equal(t, "transcript.pdf", f.Filename)
	assert.Equal(t, "pdf", f.FileType)
	assert.Equal(t, int64(1234), f.Size)

	// Objects without a section directory default to general.
	f = storedFileFromKey("user-uploads/u1/loose.txt", "user-uploads/u1/", 10, now)
	assert.Equal(t, "general", f.Section)
	assert.Equal(t, "loose.txt", f.Filename)
}
