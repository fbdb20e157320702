package storage

import "fmt"

// MemoryStore is an in-process Provider used by tests and as a scratch target
// for dry-run imports.
type MemoryStore struct {
	blobs  map[string][]byte
	loaded bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init() error {
	if s.blobs != nil {
		return fmt.Errorf("storage already initialized")
	}
	s.blobs = make(map[string][]byte)
	s.loaded = true
	return nil
}

func (s *MemoryStore) Load() error {
	if s.blobs == nil {
		s.blobs = make(map[string][]byte)
	}
	s.loaded = true
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) GetBlob(key string) ([]byte, bool, error) {
	if !s.loaded {
		return nil, false, fmt.Errorf("storage not loaded")
	}
	data, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return data, true, nil
}

func (s *MemoryStore) SetBlob(key string, data []byte) error {
	if !s.loaded {
		return fmt.Errorf("storage not loaded")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[key] = cp
	return nil
}

func (s *MemoryStore) Path() string {
	return ":memory:"
}
