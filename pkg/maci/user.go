package maci

import (
	"github.com/MuriData/maci-core/pkg/babyjub"
	"github.com/MuriData/maci-core/pkg/field"
	"github.com/MuriData/maci-core/pkg/maciconfig"
	"github.com/MuriData/maci-core/pkg/merkle"
)

// User is one signed-up state tree slot: a key, a fixed-length vote
// vector (one entry per vote option), a remaining voice credit balance,
// and the count of accepted commands (nonce).
type User struct {
	PubKey             babyjub.PubKey
	Votes              []field.Element
	VoiceCreditBalance field.Element
	Nonce              field.Element
}

// NewUser returns a freshly signed-up user: the given key, an all-zero
// vote vector sized to the configuration, the full initial credit
// balance, and nonce 0.
func NewUser(pubKey babyjub.PubKey, cfg *maciconfig.Config) User {
	votes := make([]field.Element, cfg.NumVoteOptions())
	for i := range votes {
		votes[i] = field.Zero()
	}
	return User{
		PubKey:             pubKey,
		Votes:              votes,
		VoiceCreditBalance: cfg.InitialVoiceCreditBalance,
		Nonce:               field.Zero(),
	}
}

// VoteOptionTreeRoot builds the user's per-option vote tree at the given
// depth and returns its root. It is recomputed on demand rather than
// cached, in keeping with MaciState's policy of treating Merkle trees as
// transient views over owned data.
func (u User) VoteOptionTreeRoot(voteOptionTreeDepth int) field.Element {
	t := merkle.NewTree(voteOptionTreeDepth, field.Zero())
	for i, v := range u.Votes {
		if err := t.Update(i, v); err != nil {
			panic(err) // Votes is always sized to the tree's capacity
		}
	}
	return t.Root()
}

// StateLeaf returns the hashed state-tree leaf this user currently
// commits to.
func (u User) StateLeaf(cfg *maciconfig.Config) StateLeaf {
	return StateLeaf{
		PubKey:             u.PubKey,
		VoteOptionTreeRoot: u.VoteOptionTreeRoot(cfg.VoteOptionTreeDepth),
		VoiceCreditBalance: u.VoiceCreditBalance,
		Nonce:               u.Nonce,
	}
}

// Copy returns a deep clone of u, independent of further mutation on the
// receiver's Votes slice.
func (u User) Copy() User {
	votes := make([]field.Element, len(u.Votes))
	copy(votes, u.Votes)
	return User{
		PubKey:             u.PubKey,
		Votes:              votes,
		VoiceCreditBalance: u.VoiceCreditBalance,
		Nonce:               u.Nonce,
	}
}
