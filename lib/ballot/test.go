package ballot

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
)

// TestVoter is a throwaway keypair for exercising the signing path.
type TestVoter struct {
	Key     *ecdsa.PrivateKey
	Address string
}

func NewTestVoter() TestVoter {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return TestVoter{
		Key:     key,
		Address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
	}
}

// SignedPublishRequest builds a valid publish request for the votes,
// signed by this voter.
func (v TestVoter) SignedPublishRequest(votes []Vote, chainID uint64) PublishRequest {
	message, err := NewPublishMessage(votes)
	if err != nil {
		panic(err)
	}
	signature, err := SignPublish(message, chainID, v.Key)
	if err != nil {
		panic(err)
	}
	return PublishRequest{
		ChainID:   chainID,
		Signature: signature,
		Message:   message,
	}
}
