package tally

import (
	"math/big"

	"github.com/tokenvote/tokenvote/lib/common"
)

// PayoutLine is one project's share of the round's prize pool, in the
// pool token's base units.
type PayoutLine struct {
	ProjectID string        `json:"projectId"`
	Votes     common.Amount `json:"votes"`
	Amount    *big.Int      `json:"payoutAmount"`
}

// Distribute splits the pool among the ranked projects in proportion
// to their scores, rounding down. The exact-arithmetic form,
// score * pool / totalVotes in big integers, guarantees the paid sum
// never exceeds the pool. A round with no votes pays nothing.
func Distribute(result Result, pool *big.Int) []PayoutLine {
	ranked := Rank(result)
	lines := make([]PayoutLine, 0, len(ranked))

	zeroVotes := result.TotalVotes == 0
	empty := pool == nil || pool.Sign() < 1

	total := new(big.Int).SetUint64(uint64(result.TotalVotes))
	for _, score := range ranked {
		amount := new(big.Int)
		if !zeroVotes && !empty {
			amount.SetUint64(uint64(score.Votes))
			amount.Mul(amount, pool)
			amount.Quo(amount, total)
		}
		lines = append(lines, PayoutLine{
			ProjectID: score.ProjectID,
			Votes:     score.Votes,
			Amount:    amount,
		})
	}
	return lines
}
