package httpcache

import (
	"errors"

	"github.com/tokenvote/tokenvote/lib/common"
)

func NewAdapter(cfg common.Config) (Adapter, error) {
	switch cfg.HTTPCacheAdapter {
	case common.HTTPCacheMemoryAdapterName:
		size := cfg.HTTPCachePoolSize
		adapter := NewMemCacheAdapter(size)
		return adapter, nil
	case common.HTTPCacheRedisAdapterName:
		adapter := NewRedisCacheAdapter(&RedisRingOptions{
			Addrs: cfg.HTTPCacheRedisAddrs,
		})
		return adapter, nil
	case "":
		return nil, nil
	default:
		return nil, errors.New("adapter not found")
	}
}
