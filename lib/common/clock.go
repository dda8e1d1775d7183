package common

import (
	"time"

	"github.com/beevik/ntp"
)

// Clock supplies the current time to deadline checks. The voting deadline
// is compared against this clock, never against time.Now directly, so tests
// and operators can substitute their own source.
type Clock interface {
	Now() time.Time
}

type LocalClock struct{}

func (LocalClock) Now() time.Time {
	return time.Now()
}

// NTPClock applies a fixed offset, measured once against an NTP server,
// on top of the local clock.
type NTPClock struct {
	offset time.Duration
}

func NewNTPClock(server string) (NTPClock, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return NTPClock{}, err
	}
	if err := resp.Validate(); err != nil {
		return NTPClock{}, err
	}

	return NTPClock{offset: resp.ClockOffset}, nil
}

func (c NTPClock) Now() time.Time {
	return time.Now().Add(c.offset)
}

func (c NTPClock) Offset() time.Duration {
	return c.offset
}

// FixedClock always returns the same instant. Test helper.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}
