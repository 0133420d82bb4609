// Package maci implements the MaciState engine: the off-chain coordinator
// state that mirrors an on-chain MACI voting deployment, together with
// the domain objects (Command, Message, StateLeaf, User) it operates on.
package maci

import (
	"fmt"
	"math/big"

	"github.com/MuriData/maci-core/pkg/babyjub"
	"github.com/MuriData/maci-core/pkg/field"
	"github.com/MuriData/maci-core/pkg/maciconfig"
	"github.com/MuriData/maci-core/pkg/merkle"
	"github.com/MuriData/maci-core/pkg/poseidon"
	"github.com/rs/zerolog"
)

// MaciState is the authoritative in-memory coordinator state. It owns
// users, messages, encPubKeys, and zerothStateLeaf exclusively; Merkle
// trees over them are transient views built on demand, never stored.
type MaciState struct {
	cfg                *maciconfig.Config
	coordinatorKeypair *babyjub.Keypair

	users      []User
	messages   []Message
	encPubKeys []babyjub.PubKey

	zerothStateLeaf StateLeaf

	log zerolog.Logger
}

// NewMaciState constructs an empty coordinator state for cfg, owned by
// coordinator. log receives aggregate batch summaries only; pass
// zerolog.Nop() to disable logging entirely.
func NewMaciState(cfg *maciconfig.Config, coordinator *babyjub.Keypair, log zerolog.Logger) *MaciState {
	return &MaciState{
		cfg:                cfg,
		coordinatorKeypair: coordinator,
		zerothStateLeaf:    BlankStateLeaf(cfg),
		log:                log,
	}
}

// Config returns the engine's immutable configuration.
func (s *MaciState) Config() *maciconfig.Config { return s.cfg }

// CoordinatorPubKey returns the coordinator's public key, the
// counterparty every published message's ECDH shared key is derived
// against.
func (s *MaciState) CoordinatorPubKey() babyjub.PubKey {
	return s.coordinatorKeypair.Pub
}

// NumUsers returns the number of signed-up users.
func (s *MaciState) NumUsers() int { return len(s.users) }

// NumMessages returns the number of published messages.
func (s *MaciState) NumMessages() int { return len(s.messages) }

// User returns a copy of the user at 1-based stateIndex.
func (s *MaciState) User(stateIndex int) (User, error) {
	if stateIndex < 1 || stateIndex > len(s.users) {
		return User{}, fmt.Errorf("maci: %w: stateIndex %d", ErrIndexOutOfRange, stateIndex)
	}
	return s.users[stateIndex-1].Copy(), nil
}

// SignUp appends a new user slot and returns its 1-based stateIndex.
func (s *MaciState) SignUp(pubKey babyjub.PubKey) (int, error) {
	if len(s.users) >= s.cfg.StateTreeCapacity()-1 {
		return 0, ErrStateTreeFull
	}
	s.users = append(s.users, NewUser(pubKey, s.cfg))
	return len(s.users), nil
}

// PublishMessage appends message and its ephemeral public key to the
// committed log. No validation happens here: even an invalid message
// becomes part of the message tree, preserving censorship resistance —
// a coordinator cannot quietly drop a message it dislikes, only reject
// it visibly during processing.
func (s *MaciState) PublishMessage(message Message, encPubKey babyjub.PubKey) error {
	if len(s.messages) >= s.cfg.MessageTreeCapacity() {
		return ErrMessageTreeFull
	}
	s.messages = append(s.messages, message)
	s.encPubKeys = append(s.encPubKeys, encPubKey)
	return nil
}

// buildStateTree constructs the current state tree: leaf 0 is
// zerothStateLeaf, leaves 1..len(users) are each user's StateLeaf hash.
func (s *MaciState) buildStateTree() *merkle.Tree {
	t := merkle.NewTree(s.cfg.StateTreeDepth, BlankStateLeaf(s.cfg).Hash())
	mustInsert(t, s.zerothStateLeaf.Hash())
	for _, u := range s.users {
		mustInsert(t, u.StateLeaf(s.cfg).Hash())
	}
	return t
}

// buildMessageTree constructs the current message tree: leaf i is
// H(messages[i].ToFieldElements()...), zero leaf is NothingUpMySleeve.
func (s *MaciState) buildMessageTree() *merkle.Tree {
	t := merkle.NewTree(s.cfg.MessageTreeDepth, NothingUpMySleeve)
	for _, m := range s.messages {
		mustInsert(t, poseidon.Hash(m.ToFieldElements()...))
	}
	return t
}

func mustInsert(t *merkle.Tree, leaf field.Element) {
	if _, err := t.Insert(leaf); err != nil {
		panic(err) // capacity is checked at SignUp/PublishMessage time
	}
}

// fieldAsBoundedIndex reports whether e's canonical representative is <=
// max, returning it as an int only when that holds. big.Int.Int64() is
// undefined for values >= 2^63 (in practice it silently wraps to a
// negative int64), so callers must never truncate a field element to an
// int before its range is proven — a signed command can carry any
// element of F, including ones far larger than any valid index.
func fieldAsBoundedIndex(e field.Element, max int) (int, bool) {
	if field.Cmp(e, field.FromInt64(int64(max))) > 0 {
		return 0, false
	}
	return int(e.BigInt().Int64()), true
}

// GenStateRoot returns the current state tree root.
func (s *MaciState) GenStateRoot() field.Element {
	return s.buildStateTree().Root()
}

// GenMessageRoot returns the current message tree root.
func (s *MaciState) GenMessageRoot() field.Element {
	return s.buildMessageTree().Root()
}

// ProcessMessage applies the message at index i. It returns (false, nil)
// for any message that fails a §4.7 validity predicate — that is normal
// operation, not an error, and leaves the state byte-for-byte unchanged.
// A non-nil error indicates a programmer error (out-of-range index).
func (s *MaciState) ProcessMessage(i int) (bool, error) {
	if i < 0 || i >= len(s.messages) {
		return false, fmt.Errorf("maci: %w: message index %d", ErrIndexOutOfRange, i)
	}

	sharedKey := babyjub.SharedKey(s.coordinatorKeypair.Priv, s.encPubKeys[i])
	cmd, sig := DecryptMessage(s.messages[i], sharedKey)

	stateIndex, ok := fieldAsBoundedIndex(cmd.StateIndex, len(s.users))
	if !ok || stateIndex < 1 {
		return false, nil
	}
	user := s.users[stateIndex-1]

	if !babyjub.Verify(user.PubKey, cmd.Hash(), sig) {
		return false, nil
	}

	expectedNonce := field.Add(user.Nonce, field.FromInt64(1))
	if !field.Equal(cmd.Nonce, expectedNonce) {
		return false, nil
	}

	voteOptionIndex, ok := fieldAsBoundedIndex(cmd.VoteOptionIndex, s.cfg.MaxVoteOptionIndex)
	if !ok {
		return false, nil
	}
	// The credit check is done over the integers: a field element is never
	// negative, so balance + prev^2 - new^2 must be computed on the
	// canonical representatives before the sign can be tested.
	prevInt := user.Votes[voteOptionIndex].BigInt()
	weightInt := cmd.NewVoteWeight.BigInt()
	balanceInt := new(big.Int).Add(user.VoiceCreditBalance.BigInt(), new(big.Int).Mul(prevInt, prevInt))
	balanceInt.Sub(balanceInt, new(big.Int).Mul(weightInt, weightInt))
	if balanceInt.Sign() < 0 {
		return false, nil
	}
	newBalance := field.FromBigInt(balanceInt)

	// All predicates passed: apply the update atomically. Key rotation
	// takes effect from the NEXT message, since it is user.PubKey that the
	// NEXT call's Verify reads.
	user.Votes[voteOptionIndex] = cmd.NewVoteWeight
	user.VoiceCreditBalance = newBalance
	user.Nonce = expectedNonce
	user.PubKey = cmd.NewPubKey
	s.users[stateIndex-1] = user

	return true, nil
}

// BatchProcessMessage calls ProcessMessage for every message in
// [startIndex, startIndex+batchSize) present in the log (short batches at
// the tail are allowed), then replaces zerothStateLeaf with
// randomStateLeaf. Only the aggregate accepted/rejected counts are
// logged — never which individual messages were rejected, since that
// would leak which ciphertexts the coordinator could decrypt.
func (s *MaciState) BatchProcessMessage(startIndex, batchSize int, randomStateLeaf StateLeaf) error {
	accepted := 0
	processed := 0
	for i := startIndex; i < startIndex+batchSize; i++ {
		if i >= len(s.messages) {
			break
		}
		ok, err := s.ProcessMessage(i)
		if err != nil {
			return err
		}
		processed++
		if ok {
			accepted++
		}
	}

	s.zerothStateLeaf = randomStateLeaf

	s.log.Info().
		Int("startIndex", startIndex).
		Int("batchSize", batchSize).
		Int("processed", processed).
		Int("accepted", accepted).
		Msg("batch processed")

	return nil
}

// Copy returns a deep clone of the engine: independent users, messages,
// encPubKeys, zerothStateLeaf, and coordinator keys. genBatch* circuit
// input builders mutate a Copy() to simulate forward, never the caller's
// state.
func (s *MaciState) Copy() *MaciState {
	users := make([]User, len(s.users))
	for i, u := range s.users {
		users[i] = u.Copy()
	}
	messages := make([]Message, len(s.messages))
	copy(messages, s.messages)
	encPubKeys := make([]babyjub.PubKey, len(s.encPubKeys))
	copy(encPubKeys, s.encPubKeys)

	coordCopy := *s.coordinatorKeypair

	return &MaciState{
		cfg:                s.cfg,
		coordinatorKeypair: &coordCopy,
		users:              users,
		messages:           messages,
		encPubKeys:         encPubKeys,
		zerothStateLeaf:    s.zerothStateLeaf,
		log:                s.log,
	}
}
