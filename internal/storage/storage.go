package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"wsprobe/internal/models"
)

// ProbeStorage handles persistence of probe history to disk.
type ProbeStorage struct {
	mu      sync.RWMutex
	path    string
	history []models.ProbeEntry
}

// NewProbeStorage creates a storage instance and loads existing history if present.
func NewProbeStorage(path string) (*ProbeStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}

	s := &ProbeStorage{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Append adds a new probe entry and persists it to disk.
func (s *ProbeStorage) Append(entry models.ProbeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, entry)
	return s.persist()
}

// Latest returns the latest probe entry if it exists.
func (s *ProbeStorage) Latest() (models.ProbeEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.history) == 0 {
		return models.ProbeEntry{}, false
	}
	return s.history[len(s.history)-1], true
}

// History returns a copy of the entire history slice.
func (s *ProbeStorage) History() []models.ProbeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]models.ProbeEntry, len(s.history))
	copy(copied, s.history)
	return copied
}

// HistoryN returns up to n most recent entries, oldest first.
func (s *ProbeStorage) HistoryN(n int) []models.ProbeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.history) {
		n = len(s.history)
	}
	if n == 0 {
		return nil
	}
	copied := make([]models.ProbeEntry, n)
	copy(copied, s.history[len(s.history)-n:])
	return copied
}

func (s *ProbeStorage) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.history = []models.ProbeEntry{}
			return nil
		}
		return fmt.Errorf("read history: %w", err)
	}

	if len(data) == 0 {
		s.history = []models.ProbeEntry{}
		return nil
	}

	var entries []models.ProbeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse history: %w", err)
	}

	s.history = entries
	return nil
}

func (s *ProbeStorage) persist() error {
	bytes, err := json.MarshalIndent(s.history, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmpPath, bytes, 0o644); err != nil {
		return fmt.Errorf("write temp history: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}
