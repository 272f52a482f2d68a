package lock

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
)

// KeyedMutex serializes postings per (tenant, document) inside one process.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]*slot
	wait  time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex creates a KeyedMutex that gives up after wait.
func NewKeyedMutex(wait time.Duration) *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*slot), wait: wait}
}

var _ portsrepo.DocumentLocker = (*KeyedMutex)(nil)

// WithDocumentLock runs fn while holding the document's slot.
func (k *KeyedMutex) WithDocumentLock(ctx context.Context, doc domain.DocumentRef, fn func(ctx context.Context) error) error {
	key := doc.String()
	if Held(ctx, key) {
		return fn(ctx)
	}

	s := k.acquire(key)
	defer k.release(key, s)

	timer := time.NewTimer(k.wait)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
	case <-timer.C:
		return apperrors.NewBusyError(key, nil)
	case <-ctx.Done():
		return apperrors.NewTimeoutError(key, ctx.Err())
	}
	defer func() { <-s.ch }()

	return fn(MarkHeld(ctx, key))
}

func (k *KeyedMutex) acquire(key string) *slot {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		k.slots[key] = s
	}
	s.refs++
	return s
}

func (k *KeyedMutex) release(key string, s *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, key)
	}
}

// Len returns the number of documents currently locked or awaited.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.slots)
}
