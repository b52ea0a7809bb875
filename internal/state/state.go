package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	stateFileName = "chapters.json"
	hashBytes     = 8192 // First 8KB for content hash
)

// ReadingState stores the last chapter shown for a single book
type ReadingState struct {
	Href    string    `json:"href"`
	Updated time.Time `json:"updated"`
}

// StateStore manages persistent reading state
type StateStore struct {
	path string
	data map[string]ReadingState
	mu   sync.RWMutex
}

// NewStateStore creates or loads state from XDG_STATE_HOME/folio/
func NewStateStore() (*StateStore, error) {
	dir := getStateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	store := &StateStore{
		path: filepath.Join(dir, stateFileName),
		data: make(map[string]ReadingState),
	}
	if err := store.load(); err != nil {
		// Non-fatal - start with empty state
		store.data = make(map[string]ReadingState)
	}
	return store, nil
}

// getStateDir returns XDG_STATE_HOME/folio or ~/.local/state/folio
func getStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "folio")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "folio")
}

// HashBytes identifies a book by the first 8KB of its content.
func HashBytes(data []byte) string {
	if len(data) > hashBytes {
		data = data[:hashBytes]
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16]) // First 16 bytes = 32 hex chars
}

// Chapter returns the saved chapter href for a book, or "" if not found
func (s *StateStore) Chapter(hash string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[hash].Href
}

// SetChapter saves the chapter href for a book
func (s *StateStore) SetChapter(hash, href string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[hash] = ReadingState{Href: href, Updated: time.Now().UTC()}
	return s.save()
}

// Clear removes saved state for a book
func (s *StateStore) Clear(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, hash)
	return s.save()
}

func (s *StateStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.data)
}

func (s *StateStore) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
