package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps session state in process memory. Default driver and the
// backend used by most tests.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]map[string][]byte)}
}

func (b *MemoryBackend) Get(_ context.Context, sid, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	kv, ok := b.sessions[sid]
	if !ok {
		return nil, nil
	}
	v, ok := kv[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (b *MemoryBackend) Set(_ context.Context, sid, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	kv, ok := b.sessions[sid]
	if !ok {
		kv = make(map[string][]byte)
		b.sessions[sid] = kv
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	kv[key] = stored
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, sid string, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	kv, ok := b.sessions[sid]
	if !ok {
		return nil
	}
	for _, key := range keys {
		delete(kv, key)
	}
	if len(kv) == 0 {
		delete(b.sessions, sid)
	}
	return nil
}
