package tally

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenvote/tokenvote/lib/ballot"
	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/round"
	"github.com/tokenvote/tokenvote/lib/storage"
)

func prepareTally(t *testing.T, config round.Config) (*ballot.Store, *storage.LevelDBBackend) {
	st := storage.NewTestStorage()
	t.Cleanup(func() { st.Close() })
	return ballot.NewStore(st, common.LocalClock{}, ballot.ApproveAll{}), st
}

func publishVotes(t *testing.T, s *ballot.Store, config round.Config, votes []ballot.Vote) ballot.TestVoter {
	voter := ballot.NewTestVoter()
	_, err := s.SaveDraft(config, voter.Address, votes)
	require.NoError(t, err)
	_, err = s.Publish(config, voter.Address, voter.SignedPublishRequest(votes, config.ChainID))
	require.NoError(t, err)
	return voter
}

func TestComputeSum(t *testing.T) {
	config := round.NewConfig(1)
	config.Strategy = round.StrategySum
	s, st := prepareTally(t, config)

	publishVotes(t, s, config, []ballot.Vote{
		{ProjectID: "p1", Amount: common.Amount(100)},
		{ProjectID: "p2", Amount: common.Amount(30)},
	})
	publishVotes(t, s, config, []ballot.Vote{
		{ProjectID: "p1", Amount: common.Amount(50)},
	})

	result, err := Compute(st, config)
	require.NoError(t, err)
	require.Equal(t, uint64(2), result.TotalVoters)
	require.Equal(t, common.Amount(150), result.Projects["p1"].Votes)
	require.Equal(t, common.Amount(30), result.Projects["p2"].Votes)
	require.Equal(t, common.Amount(180), result.TotalVotes)
}

func TestComputeIgnoresDrafts(t *testing.T) {
	config := round.NewConfig(1)
	s, st := prepareTally(t, config)

	publishVotes(t, s, config, []ballot.Vote{{ProjectID: "p1", Amount: common.Amount(10)}})

	draft := ballot.NewTestVoter()
	_, err := s.SaveDraft(config, draft.Address, []ballot.Vote{{ProjectID: "p1", Amount: common.Amount(1000)}})
	require.NoError(t, err)

	result, err := Compute(st, config)
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.TotalVoters)
	require.Equal(t, common.Amount(10), result.Projects["p1"].Votes)
}

func TestComputeRoundScoping(t *testing.T) {
	config1 := round.NewConfig(1)
	config2 := round.NewConfig(2)
	s, st := prepareTally(t, config1)

	publishVotes(t, s, config1, []ballot.Vote{{ProjectID: "p1", Amount: common.Amount(100)}})
	publishVotes(t, s, config2, []ballot.Vote{{ProjectID: "p1", Amount: common.Amount(7)}})

	result, err := Compute(st, config2)
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.TotalVoters)
	require.Equal(t, common.Amount(7), result.Projects["p1"].Votes)
}

func TestComputeDuplicateProjectLastWins(t *testing.T) {
	config := round.NewConfig(1)
	s, st := prepareTally(t, config)

	publishVotes(t, s, config, []ballot.Vote{
		{ProjectID: "p1", Amount: common.Amount(100)},
		{ProjectID: "p1", Amount: common.Amount(5)},
	})

	result, err := Compute(st, config)
	require.NoError(t, err)
	require.Equal(t, common.Amount(5), result.Projects["p1"].Votes)
	require.Equal(t, common.Amount(5), result.TotalVotes)
}

func TestComputeAverageWithQuorum(t *testing.T) {
	config := round.NewConfig(1)
	config.Strategy = round.StrategyAverage
	config.QuorumThreshold = 2
	s, st := prepareTally(t, config)

	publishVotes(t, s, config, []ballot.Vote{{ProjectID: "p1", Amount: common.Amount(100)}})
	publishVotes(t, s, config, []ballot.Vote{{ProjectID: "p1", Amount: common.Amount(50)}})
	publishVotes(t, s, config, []ballot.Vote{{ProjectID: "p2", Amount: common.Amount(10)}})

	result, err := Compute(st, config)
	require.NoError(t, err)
	require.Equal(t, uint64(3), result.TotalVoters)
	require.Equal(t, common.Amount(75), result.Projects["p1"].Votes)
	// p2 has one voter, below quorum
	require.Equal(t, common.Amount(0), result.Projects["p2"].Votes)
	require.Equal(t, common.Amount(75), result.TotalVotes)
}

func TestComputeMedian(t *testing.T) {
	config := round.NewConfig(1)
	config.Strategy = round.StrategyMedian
	s, st := prepareTally(t, config)

	for _, amount := range []uint64{10, 200, 30} {
		publishVotes(t, s, config, []ballot.Vote{{ProjectID: "p1", Amount: common.Amount(amount)}})
	}
	publishVotes(t, s, config, []ballot.Vote{{ProjectID: "p2", Amount: common.Amount(8)}})
	publishVotes(t, s, config, []ballot.Vote{{ProjectID: "p2", Amount: common.Amount(11)}})

	result, err := Compute(st, config)
	require.NoError(t, err)
	// odd count takes the middle value
	require.Equal(t, common.Amount(30), result.Projects["p1"].Votes)
	// even count takes the mean of the middle pair, rounded down
	require.Equal(t, common.Amount(9), result.Projects["p2"].Votes)
}

func TestComputeEmptyRound(t *testing.T) {
	config := round.NewConfig(9)
	_, st := prepareTally(t, config)

	result, err := Compute(st, config)
	require.NoError(t, err)
	require.Equal(t, uint64(0), result.TotalVoters)
	require.Equal(t, common.Amount(0), result.TotalVotes)
	require.Empty(t, result.Projects)
}

func TestRankStableOrder(t *testing.T) {
	result := Result{
		Projects: map[string]ProjectScore{
			"p1": {ProjectID: "p1", Votes: common.Amount(50)},
			"p2": {ProjectID: "p2", Votes: common.Amount(100)},
			"p3": {ProjectID: "p3", Votes: common.Amount(50)},
		},
		Order: []string{"p1", "p2", "p3"},
	}

	ranked := Rank(result)
	require.Equal(t, "p2", ranked[0].ProjectID)
	// p1 and p3 tie; first appearance order breaks the tie
	require.Equal(t, "p1", ranked[1].ProjectID)
	require.Equal(t, "p3", ranked[2].ProjectID)
}

func TestPage(t *testing.T) {
	ranked := []ProjectScore{
		{ProjectID: "a"}, {ProjectID: "b"}, {ProjectID: "c"},
	}

	require.Len(t, Page(ranked, 0, 2), 2)
	require.Equal(t, "c", Page(ranked, 2, 2)[0].ProjectID)
	require.Empty(t, Page(ranked, 3, 2))
	require.Len(t, Page(ranked, 0, 0), 3)
}

func TestDistributeProportional(t *testing.T) {
	result := Result{
		Projects: map[string]ProjectScore{
			"p1": {ProjectID: "p1", Votes: common.Amount(75)},
			"p2": {ProjectID: "p2", Votes: common.Amount(0)},
		},
		Order:      []string{"p1", "p2"},
		TotalVotes: common.Amount(75),
	}
	pool := big.NewInt(1000)

	lines := Distribute(result, pool)
	require.Len(t, lines, 2)
	require.Equal(t, "p1", lines[0].ProjectID)
	require.Equal(t, int64(1000), lines[0].Amount.Int64())
	require.Equal(t, int64(0), lines[1].Amount.Int64())
}

func TestDistributeRoundsDown(t *testing.T) {
	result := Result{
		Projects: map[string]ProjectScore{
			"p1": {ProjectID: "p1", Votes: common.Amount(1)},
			"p2": {ProjectID: "p2", Votes: common.Amount(1)},
			"p3": {ProjectID: "p3", Votes: common.Amount(1)},
		},
		Order:      []string{"p1", "p2", "p3"},
		TotalVotes: common.Amount(3),
	}
	pool := big.NewInt(100)

	lines := Distribute(result, pool)
	paid := new(big.Int)
	for _, line := range lines {
		require.Equal(t, int64(33), line.Amount.Int64())
		paid.Add(paid, line.Amount)
	}
	require.True(t, paid.Cmp(pool) <= 0)
}

func TestDistributeZeroVotes(t *testing.T) {
	result := Result{
		Projects: map[string]ProjectScore{
			"p1": {ProjectID: "p1", Votes: common.Amount(0)},
		},
		Order:      []string{"p1"},
		TotalVotes: common.Amount(0),
	}

	lines := Distribute(result, big.NewInt(1000))
	require.Len(t, lines, 1)
	require.Equal(t, int64(0), lines[0].Amount.Int64())
}

func TestDistributeLargePool(t *testing.T) {
	// an 18 decimal pool of 270000 tokens
	pool, ok := new(big.Int).SetString("270000000000000000000000", 10)
	require.True(t, ok)

	result := Result{
		Projects: map[string]ProjectScore{
			"p1": {ProjectID: "p1", Votes: common.Amount(2)},
			"p2": {ProjectID: "p2", Votes: common.Amount(1)},
		},
		Order:      []string{"p1", "p2"},
		TotalVotes: common.Amount(3),
	}

	lines := Distribute(result, pool)
	expected, _ := new(big.Int).SetString("180000000000000000000000", 10)
	require.Equal(t, 0, lines[0].Amount.Cmp(expected))
}
