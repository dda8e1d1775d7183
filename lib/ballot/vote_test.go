package ballot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenvote/tokenvote/lib/common"
)

func TestCanonicalizeVotesPreservesOrder(t *testing.T) {
	votes := []Vote{
		{ProjectID: "beta", Amount: common.Amount(200)},
		{ProjectID: "alpha", Amount: common.Amount(100)},
	}

	require.Equal(
		t,
		`[{"projectId":"beta","amount":"200"},{"projectId":"alpha","amount":"100"}]`,
		string(CanonicalizeVotes(votes)),
	)
}

func TestCanonicalizeVotesEmpty(t *testing.T) {
	require.Equal(t, "[]", string(CanonicalizeVotes(nil)))
	require.Equal(t, "[]", string(CanonicalizeVotes([]Vote{})))
}

func TestHashVotesSensitivity(t *testing.T) {
	base := []Vote{
		{ProjectID: "alpha", Amount: common.Amount(100)},
		{ProjectID: "beta", Amount: common.Amount(200)},
	}
	baseHash := HashVotes(base)

	{ // same content hashes the same
		same := []Vote{
			{ProjectID: "alpha", Amount: common.Amount(100)},
			{ProjectID: "beta", Amount: common.Amount(200)},
		}
		require.Equal(t, baseHash, HashVotes(same))
	}

	{ // reorder
		reordered := []Vote{base[1], base[0]}
		require.NotEqual(t, baseHash, HashVotes(reordered))
	}

	{ // amount changed
		changed := []Vote{
			{ProjectID: "alpha", Amount: common.Amount(101)},
			{ProjectID: "beta", Amount: common.Amount(200)},
		}
		require.NotEqual(t, baseHash, HashVotes(changed))
	}

	{ // project dropped
		dropped := []Vote{base[0]}
		require.NotEqual(t, baseHash, HashVotes(dropped))
	}
}

func TestTotalAmount(t *testing.T) {
	votes := []Vote{
		{ProjectID: "alpha", Amount: common.Amount(100)},
		{ProjectID: "beta", Amount: common.Amount(250)},
	}
	total, err := TotalAmount(votes)
	require.NoError(t, err)
	require.Equal(t, common.Amount(350), total)

	overflow := []Vote{
		{ProjectID: "alpha", Amount: common.MaximumSupply},
		{ProjectID: "beta", Amount: common.Amount(1)},
	}
	_, err = TotalAmount(overflow)
	require.Error(t, err)
}
