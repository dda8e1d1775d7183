package common

import (
	"time"

	"github.com/ulule/limiter"
)

var (
	// default rate limit for API requests
	RateLimitAPI limiter.Rate = limiter.Rate{
		Period: time.Minute,
		Limit:  100,
	}
)

type RateLimitRule struct {
	Default     limiter.Rate
	ByIPAddress map[string]limiter.Rate
}

func NewRateLimitRule(rate limiter.Rate) RateLimitRule {
	return RateLimitRule{
		Default:     rate,
		ByIPAddress: map[string]limiter.Rate{},
	}
}
