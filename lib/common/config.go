package common

import (
	"time"
)

const (
	HTTPCachePoolSize = 10000

	HTTPCacheMemoryAdapterName = "mem"
	HTTPCacheRedisAdapterName  = "redis"
)

//
// Config carries the process-wide, non-round settings: how the API is
// served and cached, and how external collaborators are reached. Per-round
// settings (deadline, caps, strategy) live in the round configuration.
//
type Config struct {
	RateLimitRuleAPI RateLimitRule

	HTTPCacheAdapter    string
	HTTPCachePoolSize   int
	HTTPCacheRedisAddrs map[string]string
	HTTPCacheExpire     time.Duration

	// attestation/approval collaborator
	AttestationEndpoint string
	AttestationTimeout  time.Duration
	AttestationRetries  int
}

func NewConfig() Config {
	p := Config{}

	p.RateLimitRuleAPI = NewRateLimitRule(RateLimitAPI)
	p.HTTPCachePoolSize = HTTPCachePoolSize
	p.HTTPCacheExpire = time.Minute

	p.AttestationTimeout = 5 * time.Second
	p.AttestationRetries = 3

	return p
}
