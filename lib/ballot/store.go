package ballot

import (
	logging "github.com/inconshreveable/log15"

	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/errors"
	"github.com/tokenvote/tokenvote/lib/round"
	"github.com/tokenvote/tokenvote/lib/storage"
)

var log logging.Logger = logging.New("module", "ballot")

func init() {
	SetLogging(common.DefaultLogLevel, common.DefaultLogHandler)
}

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

// ApprovalChecker answers whether a voter passed the off-chain
// attestation process for the current election.
type ApprovalChecker interface {
	IsApproved(voter string) (bool, error)
}

// ApproveAll accepts every voter. Used when a round is configured to
// skip the approval check, and in tests.
type ApproveAll struct{}

func (ApproveAll) IsApproved(string) (bool, error) { return true, nil }

// PublishRequest carries the client-signed publication material.
type PublishRequest struct {
	ChainID   uint64         `json:"chainId"`
	Signature string         `json:"signature"`
	Message   PublishMessage `json:"message"`
}

// Store coordinates ballot reads and writes against one storage
// backend. All deadline decisions go through the store's clock so
// they can be pinned in tests.
type Store struct {
	st       *storage.LevelDBBackend
	clock    common.Clock
	approval ApprovalChecker
}

func NewStore(st *storage.LevelDBBackend, clock common.Clock, approval ApprovalChecker) *Store {
	if clock == nil {
		clock = common.LocalClock{}
	}
	if approval == nil {
		approval = ApproveAll{}
	}
	return &Store{st: st, clock: clock, approval: approval}
}

func (s *Store) Get(config round.Config, voter string) (Ballot, error) {
	return GetBallot(s.st, round.NewKey(config.Round, voter))
}

// SaveDraft creates or overwrites the voter's draft for the round.
// Drafts are freely replaceable until published; saving clears any
// stale signature so a draft can never masquerade as published.
func (s *Store) SaveDraft(config round.Config, voter string, votes []Vote) (b Ballot, err error) {
	if config.VotingClosed(s.clock) {
		err = errors.ErrorVotingClosed
		return
	}
	if err = ValidateVotes(votes); err != nil {
		return
	}

	key := round.NewKey(config.Round, voter)
	now := common.FormatISO8601(s.clock.Now())

	// The read and the write share one transaction so a concurrent
	// Publish cannot commit in between: whichever side opens its
	// transaction second sees the other's committed state, and a
	// published ballot can never be clobbered back into a draft.
	ts, err := s.st.OpenTransaction()
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			ts.Discard()
		}
	}()

	existing, getErr := GetBallot(ts, key)
	if getErr == nil {
		if existing.IsPublished() {
			err = errors.ErrorAlreadyPublished
			return
		}
		existing.Votes = votes
		existing.UpdatedAt = now
		existing.Signature = ""
		if err = existing.Save(ts); err != nil {
			return
		}
		if err = ts.Commit(); err != nil {
			return
		}
		existing.NotifyObservers()
		return existing, nil
	}
	if getErr != errors.ErrorBallotNotFound {
		err = getErr
		return
	}

	fresh := NewBallot(key, votes, now)
	if err = fresh.Save(ts); err != nil {
		return
	}
	if err = ts.Commit(); err != nil {
		return
	}
	fresh.NotifyObservers()
	log.Debug("draft saved", "voter", key.Encode(), "votes", len(votes))
	return *fresh, nil
}

// Publish finalizes the voter's draft. The checks run in a fixed
// order so a client always sees the same failure for the same state:
// deadline, draft existence, prior publication, quota, approval, vote
// hash, signature. The publish marker is written create-only inside a
// storage transaction, so concurrent publishes of the same ballot
// resolve to exactly one winner.
func (s *Store) Publish(config round.Config, voter string, req PublishRequest) (b Ballot, err error) {
	if config.VotingClosed(s.clock) {
		err = errors.ErrorVotingClosed
		return
	}
	key := round.NewKey(config.Round, voter)

	ts, err := s.st.OpenTransaction()
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			ts.Discard()
		}
	}()

	if b, err = GetBallot(ts, key); err != nil {
		return
	}
	if b.IsPublished() {
		err = errors.ErrorAlreadyPublished
		return
	}

	if err = s.checkQuota(config, b.Votes); err != nil {
		return
	}
	if !config.SkipApprovalCheck {
		var approved bool
		if approved, err = s.approval.IsApproved(voter); err != nil {
			log.Error("approval lookup failed", "voter", voter, "error", err)
			err = errors.ErrorApprovalCheckFailed.Clone().SetData("voter", voter)
			return
		}
		if !approved {
			err = errors.ErrorVoterNotApproved.Clone().SetData("voter", voter)
			return
		}
	}

	if hash := HashVotes(b.Votes).Hex(); hash != req.Message.HashedVotes {
		err = errors.ErrorHashMismatch.Clone().SetData("expected", hash)
		return
	}
	if config.ChainID != 0 && req.ChainID != config.ChainID {
		err = errors.ErrorInvalidSignature.Clone().SetData("chainId", req.ChainID)
		return
	}
	if err = VerifySignature(req.Message, req.ChainID, req.Signature, voter); err != nil {
		return
	}

	b.Signature = req.Signature
	b.PublishedAt = common.FormatISO8601(s.clock.Now())
	b.UpdatedAt = b.PublishedAt

	if err = ts.New(GetPublishedMarkerKey(key), key.Encode()); err != nil {
		if err == errors.ErrorStorageRecordAlreadyExists {
			err = errors.ErrorAlreadyPublished
		}
		return
	}
	if err = b.Save(ts); err != nil {
		return
	}
	if err = ts.Commit(); err != nil {
		return
	}
	b.NotifyObservers()

	log.Info("ballot published", "voter", key.Encode(), "votes", len(b.Votes))
	return b, nil
}

func (s *Store) checkQuota(config round.Config, votes []Vote) error {
	total, err := TotalAmount(votes)
	if err != nil {
		return err
	}
	if config.VotingMaxTotal > 0 && total > config.VotingMaxTotal {
		return errors.ErrorQuotaExceeded.Clone().SetData("total", total.String())
	}
	if config.VotingMaxProject > 0 {
		for _, v := range votes {
			if v.Amount > config.VotingMaxProject {
				return errors.ErrorQuotaExceeded.Clone().SetData("projectId", v.ProjectID)
			}
		}
	}
	return nil
}

// AuditRecord is one published ballot as exposed by the export
// endpoint. ProjectNames carries the display names of the voted
// projects when a metadata resolver is configured.
type AuditRecord struct {
	VoterID      string            `json:"voterId"`
	Signature    string            `json:"signature"`
	PublishedAt  string            `json:"publishedAt"`
	Votes        []Vote            `json:"votes"`
	ProjectNames map[string]string `json:"projectNames,omitempty"`
}

// ExportPublished returns every published ballot of a round in voter
// order, with signatures, for third party verification.
func (s *Store) ExportPublished(roundNumber uint64) (records []AuditRecord, err error) {
	iterFunc, closeFunc := GetPublishedBallots(s.st, roundNumber)
	defer closeFunc()

	for {
		b, hasNext := iterFunc()
		if !hasNext {
			break
		}
		key, decodeErr := round.DecodeKey(b.VoterKey)
		if decodeErr != nil {
			continue
		}
		records = append(records, AuditRecord{
			VoterID:     key.Voter,
			Signature:   b.Signature,
			PublishedAt: b.PublishedAt,
			Votes:       b.Votes,
		})
	}
	return
}
