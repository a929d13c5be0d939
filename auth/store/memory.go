package store

import (
	"context"

	"github.com/viant/mcp-protocol/syncmap"
)

// memoryStore keeps pending records in process memory. Sufficient for a
// single-process deployment where the redirect lands on the same instance
// that suspended the turn.
type memoryStore struct {
	entries *syncmap.Map[string, []byte]
}

func (m *memoryStore) Put(ctx context.Context, key string, data []byte) error {
	value := make([]byte, len(data))
	copy(value, data)
	m.entries.Put(key, value)
	return nil
}

func (m *memoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := m.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	m.entries.Delete(key)
	return value, true, nil
}

// NewMemoryStore creates an in-memory read-once store.
func NewMemoryStore() Store {
	return &memoryStore{entries: syncmap.NewMap[string, []byte]()}
}
