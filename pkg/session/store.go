// Package session holds the process-wide identity: who is logged in,
// where their bearer token lives, and how login is performed.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yassnemo/health-pulse-sub000/internal/vault"
	"github.com/yassnemo/health-pulse-sub000/pkg/api"
)

// FileStore persists the bearer token in a single file, the durable
// equivalent of the browser's local-storage slot. With a key configured
// the token is sealed with AES-GCM before it touches disk.
type FileStore struct {
	path string
	key  []byte
	mu   sync.Mutex
}

var _ api.TokenStore = (*FileStore)(nil)

// NewFileStore creates a store at path. key is an optional 32-byte AES
// key; pass nil to store the token in the clear (file mode 0600).
func NewFileStore(path string, key []byte) *FileStore {
	return &FileStore{path: path, key: key}
}

// Token reads the stored token. Any read or decrypt failure is treated
// as "no token": the user simply has to log in again.
func (s *FileStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", false
	}
	if s.key != nil {
		token, err = vault.Open(token, s.key)
		if err != nil {
			return "", false
		}
	}
	return token, true
}

// Save writes the token atomically (temp file, then rename) so a crash
// mid-write leaves either the old token or the new one, never garbage.
func (s *FileStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	payload := token
	if s.key != nil {
		sealed, err := vault.Seal(token, s.key)
		if err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
		payload = sealed
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, []byte(payload), 0600); err != nil {
		return err
	}
	return os.Rename(tempPath, s.path)
}

// Clear removes the token file. Missing files are not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemoryStore is an in-process token slot for tests and the bypass mode.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	has   bool
}

var _ api.TokenStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.has
}

func (s *MemoryStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.has = true
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.has = false
	return nil
}
