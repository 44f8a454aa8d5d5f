package record

import (
	"bytes"
	"sync"

	"github.com/dgryski/go-farm"
)

// MemoryStore is the in-process Store. Writes are content-addressed, so
// storing the same bytes twice is a no-op on the same key.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[Hash][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[Hash][]byte),
	}
}

func (m *MemoryStore) Put(item Serde) (Hash, error) {
	var payload bytes.Buffer
	if err := item.Serialize(&payload); err != nil {
		return 0, err
	}
	entry := &TypedEntry{
		TypeTag: typeTag(item),
		Data:    payload.Bytes(),
	}
	var framed bytes.Buffer
	if err := entry.Serialize(&framed); err != nil {
		return 0, err
	}
	data := framed.Bytes()
	h := Hash(farm.Hash64(data))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[h] = data
	return h, nil
}

func (m *MemoryStore) Has(hash Hash) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[hash]
	return ok
}

func (m *MemoryStore) getValue(h Hash) (bool, []byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[h]
	if !ok {
		return false, nil, nil
	}
	return true, v, nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
