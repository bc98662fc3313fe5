// Package storage handles the files behind contracts and move-in
// evidence: PDFs and uploaded photos addressed by paths relative to a
// process-wide upload root.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStore reads and deletes stored files by relative path.
type FileStore struct {
	root string
}

// NewFileStore creates a file store rooted at the given directory.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Root returns the upload root directory.
func (s *FileStore) Root() string {
	return s.root
}

// resolve maps a stored relative path onto the upload root, refusing
// paths that would escape it.
func (s *FileStore) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean("/" + relPath)
	full := filepath.Join(s.root, cleaned)
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes upload root", relPath)
	}
	return full, nil
}

// Save writes the reader's contents to the given relative path,
// creating parent directories as needed. It returns the relative path
// as stored.
func (s *FileStore) Save(relPath string, r io.Reader) (string, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+relPath)), "/"), nil
}

// Remove deletes the file at the given relative path. A file that is
// already gone is not an error.
func (s *FileStore) Remove(relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
