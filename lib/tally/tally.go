package tally

import (
	"sort"

	logging "github.com/inconshreveable/log15"

	"github.com/tokenvote/tokenvote/lib/ballot"
	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/errors"
	"github.com/tokenvote/tokenvote/lib/round"
	"github.com/tokenvote/tokenvote/lib/storage"
)

var log logging.Logger = logging.New("module", "tally")

func init() {
	SetLogging(common.DefaultLogLevel, common.DefaultLogHandler)
}

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

// ProjectScore is a project's aggregated score for a round.
type ProjectScore struct {
	ProjectID string        `json:"projectId"`
	Votes     common.Amount `json:"votes"`
}

// Result is the full tally of one round. Projects holds the score per
// project; Order lists project ids in first appearance order across
// the published ballots, which makes downstream ranking deterministic
// without depending on map iteration.
type Result struct {
	Round       uint64                  `json:"round"`
	Strategy    round.Strategy          `json:"strategy"`
	Projects    map[string]ProjectScore `json:"projects"`
	Order       []string                `json:"-"`
	TotalVoters uint64                  `json:"totalVoters"`
	TotalVotes  common.Amount           `json:"totalVotes"`
}

// Compute tallies every published ballot of the round. Only published
// ballots count; drafts are invisible here. Within one ballot,
// repeated entries for the same project collapse to the last one, the
// same rule clients apply when rendering the ballot.
func Compute(st *storage.LevelDBBackend, config round.Config) (result Result, err error) {
	result = Result{
		Round:    config.Round,
		Strategy: config.Strategy,
		Projects: map[string]ProjectScore{},
	}

	contributions := map[string][]common.Amount{}

	iterFunc, closeFunc := ballot.GetPublishedBallots(st, config.Round)
	defer closeFunc()

	for {
		b, hasNext := iterFunc()
		if !hasNext {
			break
		}
		result.TotalVoters++

		deduped := map[string]common.Amount{}
		var order []string
		for _, v := range b.Votes {
			if _, seen := deduped[v.ProjectID]; !seen {
				order = append(order, v.ProjectID)
			}
			deduped[v.ProjectID] = v.Amount
		}
		for _, projectID := range order {
			if _, seen := contributions[projectID]; !seen {
				result.Order = append(result.Order, projectID)
			}
			contributions[projectID] = append(contributions[projectID], deduped[projectID])
		}
	}

	for _, projectID := range result.Order {
		var score common.Amount
		if score, err = scoreProject(config, contributions[projectID]); err != nil {
			return
		}
		result.Projects[projectID] = ProjectScore{ProjectID: projectID, Votes: score}
		if result.TotalVotes, err = result.TotalVotes.Add(score); err != nil {
			return
		}
	}

	log.Debug(
		"round tallied",
		"round", config.Round,
		"strategy", config.Strategy.String(),
		"voters", result.TotalVoters,
		"projects", len(result.Projects),
	)
	return
}

// scoreProject reduces one project's per-voter amounts to a single
// score. The quorum threshold only gates the averaging strategies: a
// sum over few voters is small by construction, but an average or
// median over one or two ballots is as large as one over hundreds.
func scoreProject(config round.Config, amounts []common.Amount) (common.Amount, error) {
	if len(amounts) < 1 {
		return common.Amount(0), nil
	}

	if config.Strategy.UsesQuorum() && uint64(len(amounts)) < config.QuorumThreshold {
		return common.Amount(0), nil
	}

	switch config.Strategy {
	case round.StrategySum:
		return sumAmounts(amounts)
	case round.StrategyAverage:
		sum, err := sumAmounts(amounts)
		if err != nil {
			return common.Amount(0), err
		}
		return common.Amount(uint64(sum) / uint64(len(amounts))), nil
	case round.StrategyMedian:
		return medianAmount(amounts), nil
	default:
		return common.Amount(0), errors.ErrorInvalidStrategy.Clone().SetData("strategy", config.Strategy)
	}
}

func sumAmounts(amounts []common.Amount) (sum common.Amount, err error) {
	for _, a := range amounts {
		if sum, err = sum.Add(a); err != nil {
			return
		}
	}
	return
}

func medianAmount(amounts []common.Amount) common.Amount {
	sorted := make([]common.Amount, len(amounts))
	copy(sorted, amounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	lo, hi := uint64(sorted[mid-1]), uint64(sorted[mid])
	return common.Amount(lo/2 + hi/2 + (lo%2+hi%2)/2) // avoids uint64 overflow
}
