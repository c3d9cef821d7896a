package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PurgeLockKey names the redis critical section guarding bulk data purges.
const PurgeLockKey = "admin:purge:lock"

// Lock is a best-effort redis mutex for operations that must not overlap,
// such as the transactional-tier bulk purge.
type Lock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

// NewLock constructs a Lock for key with the given expiry.
func NewLock(client *redis.Client, key string, ttl time.Duration) *Lock {
	return &Lock{client: client, key: key, token: uuid.NewString(), ttl: ttl}
}

// Acquire attempts to take the lock. It returns false when another holder
// already owns it.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
}

// Release drops the lock if this instance still owns it.
func (l *Lock) Release(ctx context.Context) error {
	const script = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`
	return l.client.Eval(ctx, script, []string{l.key}, l.token).Err()
}
