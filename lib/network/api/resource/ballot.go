package resource

import (
	"strconv"
	"strings"

	"github.com/nvellon/hal"

	"github.com/tokenvote/tokenvote/lib/ballot"
	"github.com/tokenvote/tokenvote/lib/round"
)

type Ballot struct {
	roundNumber uint64
	b           ballot.Ballot
}

func NewBallot(roundNumber uint64, b ballot.Ballot) *Ballot {
	return &Ballot{
		roundNumber: roundNumber,
		b:           b,
	}
}

func (r Ballot) GetMap() hal.Entry {
	voter := r.b.VoterKey
	if key, err := round.DecodeKey(r.b.VoterKey); err == nil {
		voter = key.Voter
	}

	entry := hal.Entry{
		"voter":      voter,
		"round":      r.roundNumber,
		"votes":      r.b.Votes,
		"published":  r.b.IsPublished(),
		"created_at": r.b.CreatedAt,
		"updated_at": r.b.UpdatedAt,
	}
	if r.b.IsPublished() {
		entry["published_at"] = r.b.PublishedAt
		entry["signature"] = r.b.Signature
	}
	return entry
}

func (r Ballot) Resource() *hal.Resource {
	resource := hal.NewResource(r, r.LinkSelf())
	resource.AddLink("publish", hal.NewLink(r.roundURL(URLBallotPublish)))
	resource.AddLink("results", hal.NewLink(r.roundURL(URLResults)))
	return resource
}

func (r Ballot) LinkSelf() string {
	return r.roundURL(URLBallot)
}

func (r Ballot) roundURL(pattern string) string {
	return strings.Replace(pattern, "{round}", strconv.FormatUint(r.roundNumber, 10), -1)
}
