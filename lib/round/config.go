package round

import (
	"fmt"
	"io/ioutil"
	"math/big"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/tokenvote/tokenvote/lib/common"
	tverrors "github.com/tokenvote/tokenvote/lib/errors"
	"github.com/tokenvote/tokenvote/lib/storage"
)

const ConfigPrefix string = "rc-"

// Config is the per-round configuration: how ballots are capped and
// deadlined, how published ballots are tallied and how the pool is sized.
// It is written through the admin path and read fresh on every tally.
//
// models
//  * 'round'
// 	- 'rc-<round>': `Config`
type Config struct {
	Round           uint64          `json:"round" yaml:"round"`
	Strategy        Strategy        `json:"strategy" yaml:"strategy"`
	QuorumThreshold uint64          `json:"quorum_threshold" yaml:"quorum_threshold"`

	// ISO8601; empty means no deadline / results immediately available
	VotingEndsAt string `json:"voting_ends_at" yaml:"voting_ends_at"`
	ResultsAt    string `json:"results_at" yaml:"results_at"`

	// caps in base units; zero means uncapped
	VotingMaxTotal   common.Amount `json:"voting_max_total" yaml:"voting_max_total"`
	VotingMaxProject common.Amount `json:"voting_max_project" yaml:"voting_max_project"`

	// pool in 18-decimal base units, decimal string
	PoolAmount string `json:"pool_amount" yaml:"pool_amount"`

	ChainID           uint64   `json:"chain_id" yaml:"chain_id"`
	Admins            []string `json:"admins" yaml:"admins"`
	SkipApprovalCheck bool     `json:"skip_approval_check" yaml:"skip_approval_check"`
}

func NewConfig(round uint64) Config {
	return Config{
		Round:    round,
		Strategy: StrategySum,
		ChainID:  1,
	}
}

func GetConfigKey(round uint64) string {
	return fmt.Sprintf("%s%d", ConfigPrefix, round)
}

func (c Config) Save(st *storage.LevelDBBackend) (err error) {
	key := GetConfigKey(c.Round)

	var exists bool
	if exists, err = st.Has(key); err != nil {
		return
	}

	if exists {
		err = st.Set(key, c)
	} else {
		err = st.New(key, c)
	}

	return
}

func GetConfig(st *storage.LevelDBBackend, round uint64) (c Config, err error) {
	if err = st.Get(GetConfigKey(round), &c); err != nil {
		if err == tverrors.ErrorStorageRecordDoesNotExist {
			err = tverrors.ErrorRoundConfigNotFound.Clone().SetData("round", round)
		}
		return
	}

	return
}

func ExistsConfig(st *storage.LevelDBBackend, round uint64) (bool, error) {
	return st.Has(GetConfigKey(round))
}

func (c Config) IsAdmin(voter string) bool {
	return common.InArray(c.Admins, voter)
}

func (c Config) VotingDeadline() (time.Time, bool) {
	if len(c.VotingEndsAt) < 1 {
		return time.Time{}, false
	}

	t, err := common.ParseISO8601(c.VotingEndsAt)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func (c Config) ResultsAvailableAt() (time.Time, bool) {
	if len(c.ResultsAt) < 1 {
		return time.Time{}, false
	}

	t, err := common.ParseISO8601(c.ResultsAt)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// VotingClosed reports whether the round's deadline has passed on the
// given clock. A round without a deadline never closes.
func (c Config) VotingClosed(clock common.Clock) bool {
	deadline, ok := c.VotingDeadline()
	if !ok {
		return false
	}

	return !clock.Now().Before(deadline)
}

func (c Config) ResultsAvailable(clock common.Clock) bool {
	at, ok := c.ResultsAvailableAt()
	if !ok {
		return true
	}

	return !clock.Now().Before(at)
}

func (c Config) Pool() (*big.Int, error) {
	if len(c.PoolAmount) < 1 {
		return new(big.Int), nil
	}

	pool, ok := new(big.Int).SetString(c.PoolAmount, 10)
	if !ok || pool.Sign() < 0 {
		return nil, errors.Errorf("invalid pool amount: '%s'", c.PoolAmount)
	}

	return pool, nil
}

// LoadConfigsFromFile reads round configurations from a yaml file:
//
//   rounds:
//     - round: 1
//       strategy: average
//       quorum_threshold: 2
//       ...
func LoadConfigsFromFile(path string) ([]Config, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read round config file '%s'", path)
	}

	var parsed struct {
		Rounds []Config `yaml:"rounds"`
	}
	if err := yaml.Unmarshal(b, &parsed); err != nil {
		return nil, errors.Wrapf(err, "failed to parse round config file '%s'", path)
	}

	for _, c := range parsed.Rounds {
		if c.Round < 1 {
			return nil, errors.Errorf("round config file '%s' has an entry without a round number", path)
		}
		if _, err := c.Pool(); err != nil {
			return nil, err
		}
	}

	return parsed.Rounds, nil
}
