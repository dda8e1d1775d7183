package round

import (
	"io/ioutil"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/storage"
)

func TestParseStrategy(t *testing.T) {
	for name, expected := range map[string]Strategy{
		"sum":     StrategySum,
		"average": StrategyAverage,
		"median":  StrategyMedian,
	} {
		s, err := ParseStrategy(name)
		require.Nil(t, err)
		require.Equal(t, expected, s)
		require.Equal(t, name, s.String())
	}

	_, err := ParseStrategy("mode")
	require.NotNil(t, err)
}

func TestStrategyUsesQuorum(t *testing.T) {
	require.False(t, StrategySum.UsesQuorum())
	require.True(t, StrategyAverage.UsesQuorum())
	require.True(t, StrategyMedian.UsesQuorum())
}

func TestConfigSaveAndGet(t *testing.T) {
	st := storage.NewTestStorage()
	defer st.Close()

	c := NewConfig(2)
	c.Strategy = StrategyAverage
	c.QuorumThreshold = 2
	require.Nil(t, c.Save(st))

	fetched, err := GetConfig(st, 2)
	require.Nil(t, err)
	require.Equal(t, c, fetched)

	// overwrite through the admin path
	c.QuorumThreshold = 6
	require.Nil(t, c.Save(st))
	fetched, _ = GetConfig(st, 2)
	require.Equal(t, uint64(6), fetched.QuorumThreshold)

	_, err = GetConfig(st, 99)
	require.NotNil(t, err)
}

func TestConfigVotingClosed(t *testing.T) {
	c := NewConfig(1)
	require.False(t, c.VotingClosed(common.LocalClock{}))

	deadline := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	c.VotingEndsAt = common.FormatISO8601(deadline)

	before := common.FixedClock{T: deadline.Add(-time.Second)}
	atDeadline := common.FixedClock{T: deadline}
	after := common.FixedClock{T: deadline.Add(time.Second)}

	require.False(t, c.VotingClosed(before))
	require.True(t, c.VotingClosed(atDeadline))
	require.True(t, c.VotingClosed(after))
}

func TestConfigResultsAvailable(t *testing.T) {
	c := NewConfig(1)
	require.True(t, c.ResultsAvailable(common.LocalClock{}))

	at := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	c.ResultsAt = common.FormatISO8601(at)

	require.False(t, c.ResultsAvailable(common.FixedClock{T: at.Add(-time.Second)}))
	require.True(t, c.ResultsAvailable(common.FixedClock{T: at}))
}

func TestConfigPool(t *testing.T) {
	c := NewConfig(1)

	pool, err := c.Pool()
	require.Nil(t, err)
	require.Equal(t, 0, pool.Sign())

	c.PoolAmount = "270000000000000000000000"
	pool, err = c.Pool()
	require.Nil(t, err)

	expected, _ := new(big.Int).SetString("270000000000000000000000", 10)
	require.Equal(t, 0, pool.Cmp(expected))

	c.PoolAmount = "not-a-number"
	_, err = c.Pool()
	require.NotNil(t, err)
}

func TestLoadConfigsFromFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "tokenvote-round")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "rounds.yml")
	content := `
rounds:
  - round: 1
    strategy: sum
    pool_amount: "270000000000000000000000"
    chain_id: 314
  - round: 2
    strategy: average
    quorum_threshold: 2
    voting_ends_at: "2024-07-01T12:00:00.000000000Z"
    voting_max_total: 500000000
    admins:
      - "0xAdmin"
`
	require.Nil(t, ioutil.WriteFile(path, []byte(content), 0644))

	configs, err := LoadConfigsFromFile(path)
	require.Nil(t, err)
	require.Equal(t, 2, len(configs))

	require.Equal(t, StrategySum, configs[0].Strategy)
	require.Equal(t, uint64(314), configs[0].ChainID)

	require.Equal(t, StrategyAverage, configs[1].Strategy)
	require.Equal(t, uint64(2), configs[1].QuorumThreshold)
	require.Equal(t, common.Amount(500000000), configs[1].VotingMaxTotal)
	require.True(t, configs[1].IsAdmin("0xadmin"))

	_, err = LoadConfigsFromFile(filepath.Join(dir, "missing.yml"))
	require.NotNil(t, err)
}
