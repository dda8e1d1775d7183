package ballot

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/errors"
)

// Publication signatures follow the EIP-712 typed structured data
// scheme. The signed message is a summary of the ballot rather than
// the ballot itself: the full vote list is bound in through its
// keccak256 hash, so the wallet prompt stays small while the
// signature still commits to every vote.
const (
	SigningDomainName    = "TokenVote"
	SigningDomainVersion = "1"
)

var (
	ballotTypeHash = crypto.Keccak256([]byte("Ballot(uint256 total_votes,uint256 project_count,string hashed_votes)"))
	domainTypeHash = crypto.Keccak256([]byte("EIP712Domain(string name,string version,uint256 chainId)"))
)

// PublishMessage is the typed data the voter's wallet signs when
// publishing a ballot.
type PublishMessage struct {
	TotalVotes   common.Amount `json:"total_votes"`
	ProjectCount uint64        `json:"project_count"`
	HashedVotes  string        `json:"hashed_votes"`
}

// NewPublishMessage builds the message a client would sign for the
// given votes.
func NewPublishMessage(votes []Vote) (PublishMessage, error) {
	total, err := TotalAmount(votes)
	if err != nil {
		return PublishMessage{}, err
	}
	return PublishMessage{
		TotalVotes:   total,
		ProjectCount: uint64(len(votes)),
		HashedVotes:  HashVotes(votes).Hex(),
	}, nil
}

func encodeUint256(v uint64) []byte {
	return math.PaddedBigBytes(new(big.Int).SetUint64(v), 32)
}

func domainSeparator(chainID uint64) []byte {
	return crypto.Keccak256(
		domainTypeHash,
		crypto.Keccak256([]byte(SigningDomainName)),
		crypto.Keccak256([]byte(SigningDomainVersion)),
		encodeUint256(chainID),
	)
}

func (m PublishMessage) structHash() []byte {
	return crypto.Keccak256(
		ballotTypeHash,
		encodeUint256(uint64(m.TotalVotes)),
		encodeUint256(m.ProjectCount),
		crypto.Keccak256([]byte(m.HashedVotes)),
	)
}

// SigningDigest is the 32 byte hash that is actually signed:
// keccak256(0x19 || 0x01 || domainSeparator || structHash).
func SigningDigest(m PublishMessage, chainID uint64) []byte {
	return crypto.Keccak256(
		[]byte{0x19, 0x01},
		domainSeparator(chainID),
		m.structHash(),
	)
}

// VerifySignature recovers the signer of a publish message and checks
// it against the claimed voter address. The signature is the usual
// 65 byte r||s||v hex blob with v in either the 0/1 or 27/28
// convention.
func VerifySignature(m PublishMessage, chainID uint64, signature, voter string) error {
	raw, err := hexutil.Decode(signature)
	if err != nil || len(raw) != 65 {
		return errors.ErrorInvalidSignature.Clone().SetData("reason", "malformed signature")
	}
	sig := make([]byte, 65)
	copy(sig, raw)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(SigningDigest(m, chainID), sig)
	if err != nil {
		return errors.ErrorInvalidSignature.Clone().SetData("reason", err.Error())
	}
	recovered := crypto.PubkeyToAddress(*pub).Hex()
	if !strings.EqualFold(recovered, voter) {
		return errors.ErrorInvalidSignature.Clone().SetData("recovered", recovered)
	}
	return nil
}

// SignPublish produces a signature in the format VerifySignature
// accepts. Real deployments never hold voter keys; this exists for
// clients and tests.
func SignPublish(m PublishMessage, chainID uint64, priv *ecdsa.PrivateKey) (string, error) {
	sig, err := crypto.Sign(SigningDigest(m, chainID), priv)
	if err != nil {
		return "", err
	}
	sig[64] += 27
	return hexutil.Encode(sig), nil
}
