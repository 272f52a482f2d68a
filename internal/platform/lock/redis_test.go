package lock_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	"github.com/SscSPs/bizledger/internal/platform/lock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only when a Redis server is available, e.g.
// BIZLEDGER_TEST_REDIS_URL=redis://localhost:6379/15 go test ./internal/platform/lock/...
func TestRedisLocker(t *testing.T) {
	url := os.Getenv("BIZLEDGER_TEST_REDIS_URL")
	if url == "" {
		t.Skip("BIZLEDGER_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := lock.NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	l := lock.NewRedisLocker(client, 100*time.Millisecond, 5*time.Second, nil)
	d := domain.DocumentRef{TenantID: "t1", RefTable: "sales_invoice", RefID: time.Now().Format(time.RFC3339Nano)}

	err = l.WithDocumentLock(ctx, d, func(ctx context.Context) error {
		// A second, independent owner gives up after the wait budget.
		inner := l.WithDocumentLock(context.Background(), d, func(context.Context) error { return nil })
		assert.ErrorIs(t, inner, apperrors.ErrConcurrency)

		// The holder itself re-enters.
		return l.WithDocumentLock(ctx, d, func(context.Context) error { return nil })
	})
	require.NoError(t, err)

	// Released after the first owner returned.
	assert.NoError(t, l.WithDocumentLock(ctx, d, func(context.Context) error { return nil }))
}

func TestRedisLocker_UnreachableServerIsNotContention(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	l := lock.NewRedisLocker(client, 100*time.Millisecond, time.Second, nil)
	d := domain.DocumentRef{TenantID: "t1", RefTable: "sales_invoice", RefID: "INV-1"}

	called := false
	err := l.WithDocumentLock(context.Background(), d, func(context.Context) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.NotErrorIs(t, err, apperrors.ErrConcurrency)
}
