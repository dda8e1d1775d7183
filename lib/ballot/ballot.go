package ballot

import (
	"encoding/json"
	"fmt"

	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/common/observer"
	"github.com/tokenvote/tokenvote/lib/errors"
	"github.com/tokenvote/tokenvote/lib/round"
	"github.com/tokenvote/tokenvote/lib/storage"
)

const (
	BallotPrefix        = "bl-voter-"   // bl-voter-<round key> -> ballot
	BallotCreatedPrefix = "bl-created-" // bl-created-<uuid v1> -> round key, creation order
	PublishedPrefix     = "bp-"         // bp-<round>-<voter> -> round key, publish marker
)

// Ballot is one voter's allotment of votes within a round. A ballot
// is a draft until PublishedAt is set; after that it is immutable.
type Ballot struct {
	VoterKey    string `json:"voter_key"`
	Votes       []Vote `json:"votes"`
	Signature   string `json:"signature,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	PublishedAt string `json:"published_at,omitempty"`

	isSaved bool
}

func NewBallot(key round.Key, votes []Vote, now string) *Ballot {
	return &Ballot{
		VoterKey:  key.Encode(),
		Votes:     votes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b Ballot) IsPublished() bool {
	return len(b.PublishedAt) > 0
}

func GetBallotKey(key round.Key) string {
	return BallotPrefix + key.Encode()
}

func GetBallotCreatedKey() string {
	return BallotCreatedPrefix + common.GetUniqueIDFromUUID()
}

// GetPublishedMarkerKey always embeds the numeric round, unlike the
// encoded round key which leaves round 1 bare. Prefix scans over
// "bp-<round>-" therefore never mix rounds.
func GetPublishedMarkerKey(key round.Key) string {
	return fmt.Sprintf("%s%d-%s", PublishedPrefix, key.Round, key.Voter)
}

func GetPublishedMarkerPrefix(roundNumber uint64) string {
	return fmt.Sprintf("%s%d-", PublishedPrefix, roundNumber)
}

func ExistsBallot(st *storage.LevelDBBackend, key round.Key) (bool, error) {
	return st.Has(GetBallotKey(key))
}

func GetBallot(st *storage.LevelDBBackend, key round.Key) (b Ballot, err error) {
	if err = st.Get(GetBallotKey(key), &b); err != nil {
		if err == errors.ErrorStorageRecordDoesNotExist {
			err = errors.ErrorBallotNotFound
		}
		return
	}
	b.isSaved = true
	return
}

// Save writes the ballot, maintaining the creation-order index for
// first writes. Observers are not notified here; callers fire
// NotifyObservers once the write is durable, so a listener never sees
// a ballot whose transaction may still be discarded.
func (b *Ballot) Save(st *storage.LevelDBBackend) (err error) {
	key := BallotPrefix + b.VoterKey

	if b.isSaved {
		err = st.Set(key, b)
	} else {
		if err = st.New(key, b); err == nil {
			err = st.New(GetBallotCreatedKey(), b.VoterKey)
		}
	}
	if err != nil {
		return
	}
	b.isSaved = true
	return
}

// NotifyObservers announces the ballot's committed state, both on the
// plain event and on the voter-scoped event the SSE stream subscribes
// to.
func (b *Ballot) NotifyObservers() {
	event := "saved"
	if b.IsPublished() {
		event = "published"
	}
	observer.BallotObserver.Trigger(event, b)
	observer.BallotObserver.Trigger(fmt.Sprintf("%s-%s", event, b.VoterKey), b)
}

// GetPublishedBallots walks the publish markers of a round in voter
// order and yields the published ballots.
func GetPublishedBallots(st *storage.LevelDBBackend, roundNumber uint64) (func() (Ballot, bool), func()) {
	iterFunc, closeFunc := st.GetIterator(
		GetPublishedMarkerPrefix(roundNumber),
		storage.NewDefaultListOptions(false, nil, 0),
	)

	return func() (Ballot, bool) {
			item, hasNext := iterFunc()
			if !hasNext {
				return Ballot{}, false
			}
			var voterKey string
			if err := json.Unmarshal(item.Value, &voterKey); err != nil {
				return Ballot{}, false
			}
			var b Ballot
			if err := st.Get(BallotPrefix+voterKey, &b); err != nil {
				return Ballot{}, false
			}
			b.isSaved = true
			return b, true
		}, func() {
			closeFunc()
		}
}

func (b Ballot) Serialize() ([]byte, error) {
	return json.Marshal(b)
}

func (b Ballot) String() string {
	encoded, _ := json.MarshalIndent(b, "", "  ")
	return string(encoded)
}
