package ballot

import (
	"encoding/json"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/errors"
)

// Vote is a single token allocation to a project. The order of votes
// inside a ballot is significant: the vote hash is computed over the
// serialized list as submitted, so reordering changes the hash.
type Vote struct {
	ProjectID string        `json:"projectId"`
	Amount    common.Amount `json:"amount"`
}

// CanonicalizeVotes produces the byte form over which the vote hash is
// computed. Field order inside each vote and the order of the votes
// themselves are both preserved exactly.
func CanonicalizeVotes(votes []Vote) []byte {
	if votes == nil {
		votes = []Vote{}
	}
	b, err := json.Marshal(votes)
	if err != nil {
		panic(err) // Vote has no unmarshalable fields
	}
	return b
}

// HashVotes returns the keccak256 digest of the canonical vote
// serialization.
func HashVotes(votes []Vote) ethcommon.Hash {
	return crypto.Keccak256Hash(CanonicalizeVotes(votes))
}

// TotalAmount sums the vote amounts with overflow checking.
func TotalAmount(votes []Vote) (total common.Amount, err error) {
	for _, v := range votes {
		if total, err = total.Add(v.Amount); err != nil {
			return
		}
	}
	return
}

// ValidateVotes rejects votes that could not have come from a
// well-formed client: empty project ids.
func ValidateVotes(votes []Vote) error {
	for _, v := range votes {
		if len(v.ProjectID) < 1 {
			return errors.ErrorInvalidVote.Clone().SetData("reason", "empty projectId")
		}
	}
	return nil
}
