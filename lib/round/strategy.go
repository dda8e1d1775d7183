package round

import (
	"github.com/tokenvote/tokenvote/lib/errors"
)

// Strategy selects how per-project contributions are folded into a score.
type Strategy uint8

const (
	StrategySum Strategy = iota
	StrategyAverage
	StrategyMedian
)

var strategyNames = map[Strategy]string{
	StrategySum:     "sum",
	StrategyAverage: "average",
	StrategyMedian:  "median",
}

func ParseStrategy(s string) (Strategy, error) {
	for strategy, name := range strategyNames {
		if name == s {
			return strategy, nil
		}
	}

	return StrategySum, errors.ErrorInvalidStrategy.Clone().SetData("strategy", s)
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// UsesQuorum reports whether the strategy gates scores behind the quorum
// threshold. Sum counts every ballot immediately; the central tendencies
// need a minimum sample before a single voter cannot swing a project.
func (s Strategy) UsesQuorum() bool {
	return s == StrategyAverage || s == StrategyMedian
}

func (s Strategy) MarshalText() ([]byte, error) {
	if _, ok := strategyNames[s]; !ok {
		return nil, errors.ErrorInvalidStrategy
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(b []byte) (err error) {
	*s, err = ParseStrategy(string(b))
	return
}

func (s Strategy) MarshalYAML() (interface{}, error) {
	if _, ok := strategyNames[s]; !ok {
		return nil, errors.ErrorInvalidStrategy
	}
	return s.String(), nil
}

func (s *Strategy) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}

	parsed, err := ParseStrategy(name)
	if err != nil {
		return err
	}
	*s = parsed

	return nil
}
