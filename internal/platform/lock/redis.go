package lock

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	portsrepo "github.com/SscSPs/bizledger/internal/core/ports/repositories"
)

const redisRetryStep = 25 * time.Millisecond

// RedisLocker serializes postings across processes with a Redis lock per document.
type RedisLocker struct {
	client *redislock.Client
	wait   time.Duration
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewRedisLocker creates a RedisLocker. ttl bounds how long a crashed holder can block a document.
// A nil logger falls back to slog.Default().
func NewRedisLocker(rdb redis.UniversalClient, wait, ttl time.Duration, logger *slog.Logger) *RedisLocker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLocker{
		client: redislock.New(rdb),
		wait:   wait,
		ttl:    ttl,
		prefix: "bizledger:lock:",
		logger: logger,
	}
}

var _ portsrepo.DocumentLocker = (*RedisLocker)(nil)

// WithDocumentLock obtains the document lock, retrying until the wait budget is spent.
func (r *RedisLocker) WithDocumentLock(ctx context.Context, doc domain.DocumentRef, fn func(ctx context.Context) error) error {
	key := doc.String()
	if Held(ctx, key) {
		return fn(ctx)
	}

	retries := int(r.wait / redisRetryStep)
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(redisRetryStep), retries),
	}

	l, err := r.client.Obtain(ctx, r.prefix+key, r.ttl, opts)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return apperrors.NewBusyError(key, err)
		}
		if ctx.Err() != nil {
			return apperrors.NewTimeoutError(key, ctx.Err())
		}
		return apperrors.NewAppError(500, "failed to obtain document lock", err)
	}
	defer func() {
		// Release on a fresh context so a cancelled request still frees the lock.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if rerr := l.Release(releaseCtx); rerr != nil && !errors.Is(rerr, redislock.ErrLockNotHeld) {
			r.logger.Warn("Failed to release document lock",
				slog.String("document", key), slog.String("error", rerr.Error()))
		}
	}()

	return fn(MarkHeld(ctx, key))
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
