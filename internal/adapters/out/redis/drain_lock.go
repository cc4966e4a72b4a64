// Package redis keeps notification drain passes from overlapping across processes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultLockKey = "storefront:notifications:drain"
	DefaultLockTTL = 2 * time.Minute
)

// releaseScript deletes the key only while it still holds our token, so a pass
// that outlived its TTL cannot release a lock taken by the next pass.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var ErrLockLost = errors.New("drain lock expired before release")

// DrainLock implements ports.DrainLock with SET NX PX.
type DrainLock struct {
	client goredis.Cmdable
	key    string
	ttl    time.Duration
}

// NewDrainLock needs a ttl longer than the slowest drain pass.
func NewDrainLock(client goredis.Cmdable, key string, ttl time.Duration) *DrainLock {
	if key == "" {
		key = DefaultLockKey
	}
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &DrainLock{client: client, key: key, ttl: ttl}
}

func (l *DrainLock) TryAcquire(ctx context.Context) (func(context.Context) error, bool, error) {
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		deleted, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
		if err != nil {
			return fmt.Errorf("release %s: %w", l.key, err)
		}
		if deleted == 0 {
			return ErrLockLost
		}
		return nil
	}
	return release, true, nil
}

// NewClient builds the go-redis client used by the lock.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}
