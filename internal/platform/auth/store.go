package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SessionStore persists the signed-in token between process runs.
type SessionStore interface {
	Load() (*Token, error)
	Save(tok *Token) error
	Clear() error
}

type fileStore struct {
	path string
}

// NewFileStore keeps the session as JSON at path with 0600 permissions.
func NewFileStore(path string) SessionStore {
	return &fileStore{path: path}
}

// DefaultSessionPath is ~/.trustlens/session.json, or TRUSTLENS_SESSION_FILE when set.
func DefaultSessionPath() string {
	if p := os.Getenv("TRUSTLENS_SESSION_FILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "trustlens-session.json")
	}
	return filepath.Join(home, ".trustlens", "session.json")
}

func (f *fileStore) Load() (*Token, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var tok Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if tok.Raw == "" {
		return nil, nil
	}
	return &tok, nil
}

func (f *fileStore) Save(tok *Token) error {
	if tok == nil {
		return f.Clear()
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *fileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

type memoryStore struct {
	tok *Token
}

// NewMemoryStore keeps the session in process memory only.
func NewMemoryStore() SessionStore { return &memoryStore{} }

func (m *memoryStore) Load() (*Token, error) { return m.tok, nil }
func (m *memoryStore) Save(tok *Token) error { m.tok = tok; return nil }
func (m *memoryStore) Clear() error          { m.tok = nil; return nil }
