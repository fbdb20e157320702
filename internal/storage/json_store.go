package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type jsonFile struct {
	Version   int                        `json:"version"`
	Blobs     map[string]json.RawMessage `json:"blobs"`
	UpdatedAt string                     `json:"updated_at"`
}

// JSONStore persists all blobs in a single pretty-printed JSON document.
// Selected for *.json config paths.
type JSONStore struct {
	path string
	file *jsonFile
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.file = &jsonFile{
		Version: 1,
		Blobs:   make(map[string]json.RawMessage),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'scorecard init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.file = &jsonFile{}
	if err := json.Unmarshal(data, s.file); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.file.Blobs == nil {
		s.file.Blobs = make(map[string]json.RawMessage)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	s.file.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(s.file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) GetBlob(key string) ([]byte, bool, error) {
	if s.file == nil {
		return nil, false, fmt.Errorf("storage not loaded")
	}

	raw, ok := s.file.Blobs[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(raw), true, nil
}

func (s *JSONStore) SetBlob(key string, data []byte) error {
	if s.file == nil {
		return fmt.Errorf("storage not loaded")
	}

	if !json.Valid(data) {
		return fmt.Errorf("blob %q is not valid JSON", key)
	}

	s.file.Blobs[key] = json.RawMessage(data)
	return s.save()
}

func (s *JSONStore) Path() string {
	return s.path
}
