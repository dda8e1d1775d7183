package observer

import (
	"github.com/GianlucaGuarini/go-observable"
)

// BallotObserver is triggered on every draft save and publish with the
// round-scoped voter key, e.g. "published-2-0xabc..". Result caches and
// tests hang off it.
var BallotObserver = observable.New()
