package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects the idempotency store and verifies it with a ping.
// poolSize bounds concurrent connections; <= 0 keeps the driver default.
func OpenRedis(addr string, db, poolSize int) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr, DB: db}
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	r := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}
