package watermark

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

// saveMax only ever raises the stored mark.
var saveMax = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
if tonumber(ARGV[1]) > cur then
	redis.call("SET", KEYS[1], ARGV[1])
end
return 0
`)

type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb, prefix}
}

func (s *RedisStore) key(k Key) string {
	return s.prefix + k.String()
}

func (s *RedisStore) Load(ctx context.Context, key Key) (int64, error) {
	millis, err := s.rdb.Get(ctx, s.key(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return millis, err
}

func (s *RedisStore) Save(ctx context.Context, key Key, millis int64) error {
	return saveMax.Run(ctx, s.rdb, []string{s.key(key)}, millis).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
