package lock

import (
	"context"
	"sync"
	"time"

	"storefront/internal/usecase/shared"
)

// MemoryLockManager mirrors the Redis semantics for unit tests and
// single-process development runs.
type MemoryLockManager struct {
	mu    sync.Mutex
	locks map[string]memoryLock
}

type memoryLock struct {
	token     string
	expiresAt time.Time
}

func NewMemoryLockManager() *MemoryLockManager {
	return &MemoryLockManager{locks: make(map[string]memoryLock)}
}

var _ shared.LockManager = (*MemoryLockManager)(nil)

func (m *MemoryLockManager) Acquire(_ context.Context, key, token string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.locks[key]; ok && existing.expiresAt.After(now) {
		return false, nil
	}

	m.locks[key] = memoryLock{token: token, expiresAt: now.Add(ttl)}
	return true, nil
}

func (m *MemoryLockManager) Release(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.locks[key]; ok && existing.token == token {
		delete(m.locks, key)
	}
	return nil
}
