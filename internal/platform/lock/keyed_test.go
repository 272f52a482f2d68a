package lock_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/platform/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var doc = domain.DocumentRef{TenantID: "t1", RefTable: "purchase", RefID: "P-1"}

func TestKeyedMutex_SerializesSameDocument(t *testing.T) {
	m := lock.NewKeyedMutex(5 * time.Second)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithDocumentLock(context.Background(), doc, func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					cur := atomic.LoadInt32(&maxInside)
					if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, m.Len())
}

func TestKeyedMutex_BusyAfterBoundedWait(t *testing.T) {
	m := lock.NewKeyedMutex(20 * time.Millisecond)
	holding := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = m.WithDocumentLock(context.Background(), doc, func(ctx context.Context) error {
			close(holding)
			<-done
			return nil
		})
	}()
	<-holding

	err := m.WithDocumentLock(context.Background(), doc, func(ctx context.Context) error {
		t.Fatal("must not run while another holder owns the document")
		return nil
	})
	close(done)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConcurrency))
	var ce *apperrors.ConcurrencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, apperrors.ConcurrencyBusy, ce.Kind)
}

func TestKeyedMutex_ContextCancelled(t *testing.T) {
	m := lock.NewKeyedMutex(time.Minute)
	holding := make(chan struct{})
	done := make(chan struct{})
	defer close(done)

	go func() {
		_ = m.WithDocumentLock(context.Background(), doc, func(ctx context.Context) error {
			close(holding)
			<-done
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := m.WithDocumentLock(ctx, doc, func(ctx context.Context) error { return nil })

	var ce *apperrors.ConcurrencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, apperrors.ConcurrencyTimeout, ce.Kind)
}

func TestKeyedMutex_ReentrantAndIndependentDocuments(t *testing.T) {
	m := lock.NewKeyedMutex(50 * time.Millisecond)
	other := domain.DocumentRef{TenantID: "t2", RefTable: "purchase", RefID: "P-1"}

	calls := 0
	err := m.WithDocumentLock(context.Background(), doc, func(ctx context.Context) error {
		return m.WithDocumentLock(ctx, doc, func(ctx context.Context) error {
			calls++
			// Same ref in another tenant is a different document.
			return m.WithDocumentLock(ctx, other, func(ctx context.Context) error {
				calls++
				return nil
			})
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestKeyedMutex_PropagatesCallbackError(t *testing.T) {
	m := lock.NewKeyedMutex(time.Second)
	err := m.WithDocumentLock(context.Background(), doc, func(ctx context.Context) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, m.Len())
}
