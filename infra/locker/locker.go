// locker/locker.go
package locker

import (
	"context"
	"sync"
	"time"

	"github.com/radhian/billing-reconciliation/entity"
)

// Locker serializes the read-modify-write cycle of a pipeline step.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

type Lock interface {
	Release(ctx context.Context) error
}

// MemoryLocker is a process-local Locker; waiting callers give up when ctx is done.
type MemoryLocker struct {
	mu           sync.Mutex
	inProcessMap map[string]chan struct{}
}

func New() *MemoryLocker {
	return &MemoryLocker{
		inProcessMap: make(map[string]chan struct{}),
	}
}

func (l *MemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.inProcessMap[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.inProcessMap[key] = s
	}
	return s
}

// Obtain blocks until key is free. The ttl is ignored: a process-local lock dies with its holder.
func (l *MemoryLocker) Obtain(ctx context.Context, key string, _ time.Duration) (Lock, error) {
	s := l.slot(key)
	select {
	case s <- struct{}{}:
		return &memoryLock{slot: s}, nil
	case <-ctx.Done():
		return nil, entity.ErrLockNotObtained
	}
}

// IsProcessing checks if key is currently held.
func (l *MemoryLocker) IsProcessing(key string) bool {
	return len(l.slot(key)) > 0
}

type memoryLock struct {
	once sync.Once
	slot chan struct{}
}

func (m *memoryLock) Release(ctx context.Context) error {
	m.once.Do(func() { <-m.slot })
	return nil
}
