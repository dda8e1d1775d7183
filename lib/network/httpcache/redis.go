package httpcache

import (
	"time"

	redisCache "github.com/go-redis/cache"
	"github.com/go-redis/redis"
	"github.com/vmihailenco/msgpack"
)

// RedisCacheAdapter shares cached result pages between server instances
// through a redis ring, msgpack-encoded. It cannot enumerate keys, so
// round invalidation relies on the TTL.
type RedisCacheAdapter struct {
	codec *redisCache.Codec
}

type RedisRingOptions redis.RingOptions

func NewRedisCacheAdapter(opt *RedisRingOptions) *RedisCacheAdapter {
	ringOptions := redis.RingOptions(*opt)
	return &RedisCacheAdapter{
		codec: &redisCache.Codec{
			Redis:     redis.NewRing(&ringOptions),
			Marshal:   msgpack.Marshal,
			Unmarshal: msgpack.Unmarshal,
		},
	}
}

func (a *RedisCacheAdapter) Get(key string) (*Response, bool) {
	var resp Response
	if err := a.codec.Get(key, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (a *RedisCacheAdapter) Set(key string, resp *Response, expiration time.Time) {
	var ttl time.Duration
	if !expiration.IsZero() {
		ttl = time.Until(expiration)
	}
	a.codec.Set(&redisCache.Item{
		Key:        key,
		Object:     resp,
		Expiration: ttl,
	})
}

func (a *RedisCacheAdapter) Remove(key string) {
	a.codec.Delete(key)
}
