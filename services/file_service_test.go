package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedAttachment(t *testing.T) {
	tests := []struct {
		filename string
		allowed  bool
	}{
		{"thesis.pdf", true},
		{"THESIS.PDF", true},
		{"notes.txt", true},
		{"draft.doc", true},
		{"draft.docx", true},
		{"image.png", false},
		{"archive.zip", false},
		{"script.sh", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.allowed, IsAllowedAttachment(tt.filename))
		})
	}
}

func TestIsAllowedImage(t *testing.T) {
	assert.True(t, IsAllowedImage("avatar.jpg"))
	assert.True(t, IsAllowedImage("avatar.webp"))
	assert.False(t, IsAllowedImage("avatar.pdf"))
	assert.False(t, IsAllowedImage("avatar.svg"))
}

func TestUniqueFilename(t *testing.T) {
	first := UniqueFilename("thesis.pdf")
	second := UniqueFilename("thesis.pdf")

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "thesis_"))
	assert.True(t, strings.HasSuffix(first, ".pdf"))
	assert.NotContains(t, first, "-")
}

func TestDetectMIMEType(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectMIMEType("thesis.pdf"))
	assert.Equal(t, "application/octet-stream", DetectMIMEType("binary.xyzunknown"))
}

func TestFileStore_SaveAndDeleteThesisFile(t *testing.T) {
	store := NewFileStore(t.TempDir())

	path, mimeType, size, err := store.SaveThesisFile("thesis-1", "chapter.txt", []byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, "thesis-1", filepath.Dir(path))
	assert.Equal(t, int64(5), size)
	assert.Contains(t, mimeType, "text/plain")
	assert.True(t, store.Exists(path))

	content, err := os.ReadFile(store.Abs(path))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	store.Delete(path)
	assert.False(t, store.Exists(path))

	// Empty thesis directory is swept up with the last file
	_, err = os.Stat(filepath.Dir(store.Abs(path)))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_SaveProfilePicture(t *testing.T) {
	store := NewFileStore(t.TempDir())

	path, _, _, err := store.SaveProfilePicture("user-1", "me.png", []byte{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, "profiles", filepath.Dir(path))
	assert.Contains(t, filepath.Base(path), "user-1_profile_")
	assert.True(t, store.Exists(path))
}

func TestFileStore_DeleteMissingFile(t *testing.T) {
	store := NewFileStore(t.TempDir())

	// Best effort: deleting a path that never existed must not panic
	store.Delete("thesis-1/ghost.pdf")
	store.Delete("")
}
