package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// RuleLocker serializes fee generation per rule. Two concurrent executions of
// the same rule must not race past the duplicate check together; the loser of
// the lock simply skips the rule and relies on the next run to catch up.
type RuleLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// redisLocker coordinates rule ownership across engine processes.
type redisLocker struct {
	client *redis.Client
	script *redis.Script
}

func NewRedisLocker(client *redis.Client) RuleLocker {
	if client == nil {
		return nil
	}
	return &redisLocker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
	}
}

func (l *redisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *redisLocker) Unlock(ctx context.Context, key, token string) error {
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}

// localLocker is the single-process fallback used when Redis is not
// configured.
type localLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func NewLocalLocker() RuleLocker {
	return &localLocker{held: make(map[string]string)}
}

func (l *localLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[key]; taken {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = token
	return token, true, nil
}

func (l *localLocker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if current, taken := l.held[key]; taken && current == token {
		delete(l.held, key)
	}
	return nil
}
