package resource

import (
	"strconv"
	"strings"

	"github.com/nvellon/hal"

	"github.com/tokenvote/tokenvote/lib/tally"
)

type Result struct {
	result tally.Result
}

func NewResult(result tally.Result) *Result {
	return &Result{result: result}
}

func (r Result) GetMap() hal.Entry {
	return hal.Entry{
		"round":        r.result.Round,
		"strategy":     r.result.Strategy.String(),
		"total_voters": r.result.TotalVoters,
		"total_votes":  r.result.TotalVotes,
	}
}

func (r Result) Resource() *hal.Resource {
	resource := hal.NewResource(r, r.LinkSelf())
	resource.AddLink("projects", hal.NewLink(r.roundURL(URLResultProjects)+"{?offset,limit}", hal.LinkAttr{"templated": true}))
	resource.AddLink("payouts", hal.NewLink(r.roundURL(URLPayouts)))
	return resource
}

func (r Result) LinkSelf() string {
	return r.roundURL(URLResults)
}

func (r Result) roundURL(pattern string) string {
	return strings.Replace(pattern, "{round}", strconv.FormatUint(r.result.Round, 10), -1)
}

type ProjectScore struct {
	roundNumber uint64
	score       tally.ProjectScore
	name        string
	payout      string
}

func NewProjectScore(roundNumber uint64, score tally.ProjectScore) *ProjectScore {
	return &ProjectScore{
		roundNumber: roundNumber,
		score:       score,
	}
}

func (p *ProjectScore) SetName(name string) *ProjectScore {
	p.name = name
	return p
}

func (p *ProjectScore) SetPayout(payout string) *ProjectScore {
	p.payout = payout
	return p
}

func (p ProjectScore) GetMap() hal.Entry {
	entry := hal.Entry{
		"id":    p.score.ProjectID,
		"votes": p.score.Votes,
	}
	if len(p.name) > 0 {
		entry["name"] = p.name
	}
	if len(p.payout) > 0 {
		entry["payout"] = p.payout
	}
	return entry
}

func (p ProjectScore) Resource() *hal.Resource {
	return hal.NewResource(p, p.LinkSelf())
}

func (p ProjectScore) LinkSelf() string {
	link := strings.Replace(URLResultProject, "{round}", strconv.FormatUint(p.roundNumber, 10), -1)
	return strings.Replace(link, "{id}", p.score.ProjectID, -1)
}
