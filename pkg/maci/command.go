package maci

import (
	"github.com/MuriData/maci-core/pkg/babyjub"
	"github.com/MuriData/maci-core/pkg/field"
	"github.com/MuriData/maci-core/pkg/poseidon"
)

// Command is a user's cleartext intent: update the vote at VoteOptionIndex
// to NewVoteWeight, optionally rotating to NewPubKey, authenticated by
// Nonce and made unlinkable by Salt. NewPubKey is always present even when
// no rotation is intended — callers set it to the current key to signal
// "no change".
type Command struct {
	StateIndex      field.Element
	NewPubKey       babyjub.PubKey
	VoteOptionIndex field.Element
	NewVoteWeight   field.Element
	Nonce           field.Element
	Salt            field.Element
}

// ToFieldElements returns the canonical 7-element serialization
// [stateIndex, newPubKey.x, newPubKey.y, voteOptionIndex, newVoteWeight,
// nonce, salt].
func (c Command) ToFieldElements() []field.Element {
	return []field.Element{
		c.StateIndex,
		c.NewPubKey.X,
		c.NewPubKey.Y,
		c.VoteOptionIndex,
		c.NewVoteWeight,
		c.Nonce,
		c.Salt,
	}
}

// Hash returns H(ToFieldElements()), the message a Command's signature
// is computed over.
func (c Command) Hash() field.Element {
	return poseidon.Hash(c.ToFieldElements()...)
}

// Sign produces the EdDSA signature a coordinator will check during
// ProcessMessage: Verify(signerPub, c.Hash(), sig).
func (c Command) Sign(sk babyjub.PrivKey) babyjub.Signature {
	return babyjub.Sign(sk, c.Hash())
}
