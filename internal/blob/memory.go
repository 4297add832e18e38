package blob

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sucharith-p/personal-data-lake/internal/domain"
)

// MemoryStore is an in-memory blob store used in tests and in dev mode when
// no S3 endpoint is configured. Thread-safe for concurrent readers and writers.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryObject
}

type memoryObject struct {
	data     []byte
	modified time.Time
}

// NewMemoryStore creates a new in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryObject)}
}

// Put writes a blob, overwriting any existing object under the same key.
func (m *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]byte, len(data))
	copy(copied, data)
	m.blobs[key] = memoryObject{data: copied, modified: time.Now().UTC()}
	return nil
}

// Get returns the bytes stored under key, or ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}

	copied := make([]byte, len(obj.data))
	copy(copied, obj.data)
	return copied, nil
}

// List returns every stored object, sorted by key.
func (m *MemoryStore) List(_ context.Context) ([]domain.ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]domain.ObjectInfo, 0, len(m.blobs))
	for key, obj := range m.blobs {
		infos = append(infos, domain.ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.modified,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Delete removes a blob. Deleting a missing key is not an error.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, key)
	return nil
}

// Len reports the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

var _ domain.BlobStore = (*MemoryStore)(nil)
