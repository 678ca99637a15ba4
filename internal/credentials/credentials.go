// ABOUTME: Credential provider for the completion API key
// ABOUTME: Source interface plus a file-backed implementation with owner-only permissions

package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when no credential has been stored.
var ErrNotFound = errors.New("no credential stored")

// Source supplies, replaces, or removes the one API secret. The
// completion client consumes Get; Set and Delete back the key management
// commands.
type Source interface {
	Get() (string, error)
	Set(secret string) error
	Delete() error
}

// FileStore keeps the credential in a file readable only by the owner.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed credential store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get returns the stored credential, or ErrNotFound if none exists.
func (s *FileStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading credential: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Set stores the credential, creating parent directories as needed.
func (s *FileStore) Set(secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(secret+"\n"), 0600); err != nil {
		return fmt.Errorf("writing credential: %w", err)
	}
	return nil
}

// Delete removes the stored credential. Deleting an absent credential is
// not an error.
func (s *FileStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing credential: %w", err)
	}
	return nil
}
