package resource

import (
	"strconv"
	"strings"

	"github.com/nvellon/hal"

	"github.com/tokenvote/tokenvote/lib/tally"
)

type Payout struct {
	roundNumber uint64
	line        tally.PayoutLine
}

func NewPayout(roundNumber uint64, line tally.PayoutLine) *Payout {
	return &Payout{
		roundNumber: roundNumber,
		line:        line,
	}
}

func (p Payout) GetMap() hal.Entry {
	return hal.Entry{
		"id":     p.line.ProjectID,
		"votes":  p.line.Votes,
		"payout": p.line.Amount.String(),
	}
}

func (p Payout) Resource() *hal.Resource {
	return hal.NewResource(p, p.LinkSelf())
}

func (p Payout) LinkSelf() string {
	link := strings.Replace(URLResultProject, "{round}", strconv.FormatUint(p.roundNumber, 10), -1)
	return strings.Replace(link, "{id}", p.line.ProjectID, -1)
}
