package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a single-instance Redis lock shared by every API replica.
type Redis struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	retry   time.Duration
	maxWait time.Duration
	log     *zap.Logger
}

type RedisOption func(*Redis)

func WithTTL(d time.Duration) RedisOption     { return func(r *Redis) { r.ttl = d } }
func WithMaxWait(d time.Duration) RedisOption { return func(r *Redis) { r.maxWait = d } }
func WithLogger(l *zap.Logger) RedisOption    { return func(r *Redis) { r.log = l } }

func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client:  client,
		prefix:  "resort:lock:",
		ttl:     30 * time.Second,
		retry:   25 * time.Millisecond,
		maxWait: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	full := r.prefix + key

	ctx, cancel := context.WithTimeout(ctx, r.maxWait)
	defer cancel()

	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, full, token, r.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrNotAcquired
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release on a fresh context: the caller's may already be done.
			relCtx, relCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer relCancel()
			if err := releaseScript.Run(relCtx, r.client, []string{full}, token).Err(); err != nil {
				// the key still expires after ttl
				r.log.Warn("lock release failed", zap.String("key", full), zap.Error(err))
			}
		})
	}, nil
}
