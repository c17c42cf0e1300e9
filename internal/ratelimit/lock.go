package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Delete only when the stored owner token matches, so a holder that
// outlived its TTL cannot release a lock the key already handed to
// someone else.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker is a best-effort distributed lock keyed per user.
type Locker struct {
	rdb    *redis.Client
	unlock *redis.Script
}

func NewLocker(rdb *redis.Client) *Locker {
	if rdb == nil {
		return nil
	}
	return &Locker{
		rdb:    rdb,
		unlock: redis.NewScript(unlockScript),
	}
}

// Acquire takes the lock for ttl and returns the owner token on success.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	switch {
	case l == nil || l.rdb == nil:
		return "", false, errors.New("lock store not configured")
	case strings.TrimSpace(key) == "":
		return "", false, errors.New("lock key is empty")
	case ttl <= 0:
		return "", false, errors.New("lock ttl must be positive")
	}

	owner := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return owner, ok, nil
}

// Release frees the lock if owner still holds it.
func (l *Locker) Release(ctx context.Context, key, owner string) error {
	if l == nil || l.rdb == nil || key == "" || owner == "" {
		return nil
	}
	return l.unlock.Run(ctx, l.rdb, []string{key}, owner).Err()
}
