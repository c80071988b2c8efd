package services

import (
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Attachment uploads are restricted to document formats.
var allowedAttachmentExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// Profile pictures are restricted to common image formats.
var allowedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MaxProfilePictureSize caps profile picture uploads at 5MB.
const MaxProfilePictureSize = 5 * 1024 * 1024

// FileStore saves and removes uploaded files under a fixed root
// directory, partitioned by thesis ID or a profiles subdirectory.
type FileStore struct {
	root string
}

// NewFileStore creates a file store rooted at the given directory
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// IsAllowedAttachment reports whether the filename has an allowed
// document extension.
func IsAllowedAttachment(filename string) bool {
	_, ok := allowedAttachmentExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// IsAllowedImage reports whether the filename has an allowed image extension.
func IsAllowedImage(filename string) bool {
	_, ok := allowedImageExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// UniqueFilename appends a random hex suffix to the base name so
// repeated uploads of the same file never collide.
func UniqueFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s_%s%s", base, suffix, ext)
}

// DetectMIMEType guesses the MIME type from the filename extension
func DetectMIMEType(filename string) string {
	mimetype := mime.TypeByExtension(filepath.Ext(filename))
	if mimetype == "" {
		mimetype = "application/octet-stream"
	}
	return mimetype
}

// SaveThesisFile writes an uploaded document under the thesis directory.
// Returns the path relative to the uploads root, the MIME type and size.
func (s *FileStore) SaveThesisFile(thesisID, filename string, content []byte) (string, string, int64, error) {
	dir := filepath.Join(s.root, thesisID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", 0, fmt.Errorf("create thesis directory: %w", err)
	}

	stored := UniqueFilename(filename)
	if err := os.WriteFile(filepath.Join(dir, stored), content, 0o644); err != nil {
		return "", "", 0, fmt.Errorf("write file: %w", err)
	}

	return filepath.Join(thesisID, stored), DetectMIMEType(filename), int64(len(content)), nil
}

// SaveProfilePicture writes an uploaded image under the profiles directory
func (s *FileStore) SaveProfilePicture(userID, filename string, content []byte) (string, string, int64, error) {
	dir := filepath.Join(s.root, "profiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", 0, fmt.Errorf("create profiles directory: %w", err)
	}

	ext := filepath.Ext(filename)
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	stored := fmt.Sprintf("%s_profile_%s%s", userID, suffix, ext)
	if err := os.WriteFile(filepath.Join(dir, stored), content, 0o644); err != nil {
		return "", "", 0, fmt.Errorf("write file: %w", err)
	}

	return filepath.Join("profiles", stored), DetectMIMEType(filename), int64(len(content)), nil
}

// Abs resolves a stored relative path against the uploads root
func (s *FileStore) Abs(relPath string) string {
	return filepath.Join(s.root, relPath)
}

// Exists reports whether a stored file is present on disk
func (s *FileStore) Exists(relPath string) bool {
	_, err := os.Stat(s.Abs(relPath))
	return err == nil
}

// Delete removes a stored file, best effort. Failures are logged and
// swallowed so the caller can proceed with the database removal.
func (s *FileStore) Delete(relPath string) {
	if relPath == "" {
		return
	}

	full := s.Abs(relPath)
	if err := os.Remove(full); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("file store: failed to delete %s: %v", relPath, err)
		}
		return
	}

	// Drop the thesis directory once it is empty
	dir := filepath.Dir(full)
	if dir != s.root {
		if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
			_ = os.Remove(dir)
		}
	}
}
