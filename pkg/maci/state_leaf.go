package maci

import (
	"github.com/MuriData/maci-core/pkg/babyjub"
	"github.com/MuriData/maci-core/pkg/field"
	"github.com/MuriData/maci-core/pkg/maciconfig"
	"github.com/MuriData/maci-core/pkg/merkle"
	"github.com/MuriData/maci-core/pkg/poseidon"
)

// StateLeaf is the hashed form of a user slot committed to the state
// tree: the user's key, the root of their per-option vote tree, their
// remaining voice credit balance, and their nonce.
type StateLeaf struct {
	PubKey             babyjub.PubKey
	VoteOptionTreeRoot field.Element
	VoiceCreditBalance field.Element
	Nonce              field.Element
}

// ToFieldElements returns the canonical 5-element serialization
// [pubKey.x, pubKey.y, voteOptionTreeRoot, voiceCreditBalance, nonce].
func (l StateLeaf) ToFieldElements() []field.Element {
	return []field.Element{
		l.PubKey.X,
		l.PubKey.Y,
		l.VoteOptionTreeRoot,
		l.VoiceCreditBalance,
		l.Nonce,
	}
}

// Hash returns H(ToFieldElements()), the value actually stored in the
// state tree.
func (l StateLeaf) Hash() field.Element {
	return poseidon.Hash(l.ToFieldElements()...)
}

// blankVoteOptionTreeRoot is the root of an all-zero vote-option tree at
// the given depth; every freshly signed-up user and the blank state leaf
// share this root until a vote is cast.
func blankVoteOptionTreeRoot(voteOptionTreeDepth int) field.Element {
	return merkle.NewTree(voteOptionTreeDepth, field.Zero()).Root()
}

// BlankStateLeaf is the state leaf every unfilled slot in the state tree
// reads as: zero key, the root of an all-zero vote-option tree, zero
// balance, zero nonce.
func BlankStateLeaf(cfg *maciconfig.Config) StateLeaf {
	return StateLeaf{
		PubKey:             babyjub.PubKey{X: field.Zero(), Y: field.Zero()},
		VoteOptionTreeRoot: blankVoteOptionTreeRoot(cfg.VoteOptionTreeDepth),
		VoiceCreditBalance: field.Zero(),
		Nonce:               field.Zero(),
	}
}

// RandomStateLeaf draws a leaf with all four fields uniformly random in
// F. It is never associated with a real user; MaciState uses it solely
// as the per-batch zeroth-leaf randomness beacon.
func RandomStateLeaf() (StateLeaf, error) {
	x, err := field.Random()
	if err != nil {
		return StateLeaf{}, err
	}
	y, err := field.Random()
	if err != nil {
		return StateLeaf{}, err
	}
	root, err := field.Random()
	if err != nil {
		return StateLeaf{}, err
	}
	balance, err := field.Random()
	if err != nil {
		return StateLeaf{}, err
	}
	nonce, err := field.Random()
	if err != nil {
		return StateLeaf{}, err
	}
	return StateLeaf{
		PubKey:             babyjub.PubKey{X: x, Y: y},
		VoteOptionTreeRoot: root,
		VoiceCreditBalance: balance,
		Nonce:               nonce,
	}, nil
}
