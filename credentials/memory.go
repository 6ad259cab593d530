package credentials

import "sync"

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps credentials for the lifetime of the process only
type MemoryStore struct {
	values map[Key]string
	lock   sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Key]string)}
}

func (m *MemoryStore) Get(key Key) (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key Key, value string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key Key) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.values, key)
	return nil
}

// Snapshot returns a copy of every stored value
func (m *MemoryStore) Snapshot() map[Key]string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	out := make(map[Key]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
