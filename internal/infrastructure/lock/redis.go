package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	appqna "github.com/setof/qna-backend/internal/application/qna"
	"github.com/setof/qna-backend/internal/domain/qna"
)

const (
	// DefaultKeyPrefix namespaces scope lock keys in Redis
	DefaultKeyPrefix = "lock:"
	// DefaultLockTTL bounds how long a crashed holder keeps a scope
	DefaultLockTTL = 5 * time.Second

	minPollInterval = 10 * time.Millisecond
	maxPollInterval = 200 * time.Millisecond
)

// ErrLockLost is returned by Release when the key expired or was taken over
var ErrLockLost = errors.New("lock: scope lock expired before release")

// deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisScopeLocker is a distributed scope lock built on SET NX PX.
// Each holder writes a random token and only that token may delete the key.
type RedisScopeLocker struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	wait      time.Duration
}

// NewRedisScopeLocker connects to Redis and returns a locker
func NewRedisScopeLocker(cfg RedisConfig, ttl, wait time.Duration) (*RedisScopeLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisScopeLockerWithClient(client, DefaultKeyPrefix, ttl, wait), nil
}

// NewRedisScopeLockerWithClient creates a locker on an existing client
func NewRedisScopeLockerWithClient(client *redis.Client, keyPrefix string, ttl, wait time.Duration) *RedisScopeLocker {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	if wait <= 0 {
		wait = DefaultLockWait
	}
	return &RedisScopeLocker{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		wait:      wait,
	}
}

// Acquire polls SET NX until the key is taken, the wait bound elapses or ctx is done
func (l *RedisScopeLocker) Acquire(ctx context.Context, key string) (appqna.ScopeLock, error) {
	redisKey := l.keyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)
	interval := minPollInterval

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to acquire scope lock %s: %w", key, err)
		}
		if ok {
			return &redisLock{client: l.client, key: redisKey, token: token}, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, qna.ErrReplyScopeBusy.Errorf("scope %s still busy after %s", key, l.wait)
		}
		sleep := min(interval, remaining)

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		interval = min(interval*2, maxPollInterval)
	}
}

// Close closes the Redis connection
func (l *RedisScopeLocker) Close() error {
	return l.client.Close()
}

type redisLock struct {
	client *redis.Client
	key    string
	token  string
}

// Release deletes the key if this holder still owns it
func (k *redisLock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, k.client, []string{k.key}, k.token).Int()
	if err != nil {
		return fmt.Errorf("failed to release scope lock %s: %w", k.key, err)
	}
	if n == 0 {
		return ErrLockLost
	}
	return nil
}
