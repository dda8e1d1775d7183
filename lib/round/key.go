package round

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tokenvote/tokenvote/lib/errors"
)

// Key is the round-scoped voter identity under which a ballot is stored.
//
// Round 1 predates the multi-round scheme, so its keys are the bare voter
// identity; every later round encodes as "{round}-{voter}". The special
// case lives entirely in Encode/DecodeKey, nothing else may inspect the
// encoded form.
type Key struct {
	Round uint64
	Voter string
}

func NewKey(round uint64, voter string) Key {
	return Key{Round: round, Voter: voter}
}

func (k Key) Encode() string {
	if k.Round <= 1 {
		return k.Voter
	}
	return fmt.Sprintf("%d-%s", k.Round, k.Voter)
}

func (k Key) String() string {
	return k.Encode()
}

// DecodeKey parses an encoded voter key. An encoded key without a numeric
// round prefix belongs to round 1. DecodeKey(k.Encode()) returns k for any
// valid Key; for the legacy form "1-voter" it returns the normalized
// round-1 Key whose Encode() is the bare voter.
func DecodeKey(s string) (Key, error) {
	if len(s) < 1 {
		return Key{}, errors.ErrorInvalidRoundKey
	}

	i := strings.IndexByte(s, '-')
	if i < 1 {
		return Key{Round: 1, Voter: s}, nil
	}

	round, err := strconv.ParseUint(s[:i], 10, 64)
	if err != nil {
		// no numeric prefix; the whole string is a round-1 voter
		return Key{Round: 1, Voter: s}, nil
	}
	if round < 1 || len(s) <= i+1 {
		return Key{}, errors.ErrorInvalidRoundKey.Clone().SetData("key", s)
	}

	return Key{Round: round, Voter: s[i+1:]}, nil
}
