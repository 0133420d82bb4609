package maci

import (
	"fmt"

	"github.com/MuriData/maci-core/pkg/babyjub"
	"github.com/MuriData/maci-core/pkg/field"
	"github.com/MuriData/maci-core/pkg/merkle"
	"github.com/MuriData/maci-core/pkg/poseidon"
)

// Every circuit input builder in this file is read-only with respect to
// the MaciState it is called on: genUpdateStateTreeCircuitInputs and
// genQuadVoteTallyCircuitInputs only read state, and
// genBatchUpdateStateTreeCircuitInputs operates on an internal Copy(). Field
// elements are canonicalized to decimal strings (field.Element.String())
// since that is the wire contract an external prover consumes.

func toDecimalStrings(v []field.Element) []string {
	out := make([]string, len(v))
	for i, e := range v {
		out[i] = e.String()
	}
	return out
}

func pathStrings(p merkle.Path) ([]string, []int) {
	return toDecimalStrings(p.Siblings), p.PathIndices
}

// UpdateStateTreeCircuitInputs is the witness for a single message's
// state transition.
type UpdateStateTreeCircuitInputs struct {
	CoordinatorPubKey []string // [x, y]
	EncPubKey         []string // [x, y]
	Message           []string // 11 elements, the raw published message

	MessageTreeRoot      string
	MessagePathElements  []string
	MessagePathIndices   []int
	MessageIndex         int

	StateTreeRoot       string
	StatePathElements   []string
	StatePathIndices    []int
	StateIndex          int
	StateLeaf           []string // 5 elements, the leaf BEFORE this message is applied

	VoteOptionTreeRoot      string
	VoteOptionPathElements  []string
	VoteOptionPathIndices   []int
	VoteOptionIndex         int
	PrevVoteWeight          string

	MaxVoteOptionIndex int
}

// decryptMessageAt decrypts message i under the coordinator's ECDH shared
// key without mutating state.
func (s *MaciState) decryptMessageAt(i int) (Command, babyjub.Signature) {
	sharedKey := babyjub.SharedKey(s.coordinatorKeypair.Priv, s.encPubKeys[i])
	return DecryptMessage(s.messages[i], sharedKey)
}

// GenUpdateStateTreeCircuitInputs builds the witness for message i's
// state transition without mutating s. A decrypted stateIndex or
// voteOptionIndex outside its valid range is clamped to 0, matching the
// "use the zeroth/blank slot" convention a circuit applies to an
// otherwise-invalid command.
func (s *MaciState) GenUpdateStateTreeCircuitInputs(i int) (*UpdateStateTreeCircuitInputs, error) {
	if i < 0 || i >= len(s.messages) {
		return nil, fmt.Errorf("maci: %w: message index %d", ErrIndexOutOfRange, i)
	}

	cmd, _ := s.decryptMessageAt(i)

	msgTree := s.buildMessageTree()
	msgPath, err := msgTree.GetPath(i)
	if err != nil {
		return nil, err
	}

	stateIndex, ok := fieldAsBoundedIndex(cmd.StateIndex, len(s.users))
	if !ok {
		stateIndex = 0
	}

	stateTree := s.buildStateTree()
	statePath, err := stateTree.GetPath(stateIndex)
	if err != nil {
		return nil, err
	}

	var leaf StateLeaf
	var votes []field.Element
	if stateIndex == 0 {
		leaf = s.zerothStateLeaf
		votes = s.zeroVotes()
	} else {
		u := s.users[stateIndex-1]
		leaf = u.StateLeaf(s.cfg)
		votes = u.Votes
	}

	voteOptionIndex, ok := fieldAsBoundedIndex(cmd.VoteOptionIndex, s.cfg.NumVoteOptions()-1)
	if !ok {
		voteOptionIndex = 0
	}

	voteTree := merkle.NewTree(s.cfg.VoteOptionTreeDepth, field.Zero())
	for idx, v := range votes {
		if err := voteTree.Update(idx, v); err != nil {
			return nil, err
		}
	}
	voteOptionPath, err := voteTree.GetPath(voteOptionIndex)
	if err != nil {
		return nil, err
	}

	msgPathElements, msgPathIndices := pathStrings(msgPath)
	statePathElements, statePathIndices := pathStrings(statePath)
	voteOptionPathElements, voteOptionPathIndices := pathStrings(voteOptionPath)

	return &UpdateStateTreeCircuitInputs{
		CoordinatorPubKey: toDecimalStrings([]field.Element{s.coordinatorKeypair.Pub.X, s.coordinatorKeypair.Pub.Y}),
		EncPubKey:         toDecimalStrings([]field.Element{s.encPubKeys[i].X, s.encPubKeys[i].Y}),
		Message:           toDecimalStrings(s.messages[i].ToFieldElements()),

		MessageTreeRoot:     msgTree.Root().String(),
		MessagePathElements: msgPathElements,
		MessagePathIndices:  msgPathIndices,
		MessageIndex:        i,

		StateTreeRoot:     stateTree.Root().String(),
		StatePathElements: statePathElements,
		StatePathIndices:  statePathIndices,
		StateIndex:        stateIndex,
		StateLeaf:         toDecimalStrings(leaf.ToFieldElements()),

		VoteOptionTreeRoot:     voteTree.Root().String(),
		VoteOptionPathElements: voteOptionPathElements,
		VoteOptionPathIndices:  voteOptionPathIndices,
		VoteOptionIndex:        voteOptionIndex,
		PrevVoteWeight:         votes[voteOptionIndex].String(),

		MaxVoteOptionIndex: s.cfg.MaxVoteOptionIndex,
	}, nil
}

// BatchUpdateStateTreeCircuitInputs is the witness for a full message
// batch: one UpdateStateTreeCircuitInputs per message (recorded BEFORE
// that message is applied) plus the zeroth-leaf refresh at the end.
type BatchUpdateStateTreeCircuitInputs struct {
	PerMessage []*UpdateStateTreeCircuitInputs

	RandomStateLeaf          []string // 5 elements
	RandomLeafPathElements    []string
	RandomLeafPathIndices     []int
	StateRootBeforeRandomLeaf string
	StateRootAfterRandomLeaf  string
}

// GenBatchUpdateStateTreeCircuitInputs builds the witness for processing
// [startIndex, startIndex+batchSize) against a deep clone of s, leaving s
// itself untouched. For each message it records the per-message witness
// BEFORE applying that message to the clone, then advances the clone;
// finally it overwrites the clone's zeroth leaf with randomStateLeaf and
// records that path.
func (s *MaciState) GenBatchUpdateStateTreeCircuitInputs(startIndex, batchSize int, randomStateLeaf StateLeaf) (*BatchUpdateStateTreeCircuitInputs, error) {
	clone := s.Copy()

	var perMessage []*UpdateStateTreeCircuitInputs
	for i := startIndex; i < startIndex+batchSize; i++ {
		if i >= len(clone.messages) {
			break
		}
		witness, err := clone.GenUpdateStateTreeCircuitInputs(i)
		if err != nil {
			return nil, err
		}
		perMessage = append(perMessage, witness)

		if _, err := clone.ProcessMessage(i); err != nil {
			return nil, err
		}
	}

	stateTree := clone.buildStateTree()
	oldRoot := stateTree.Root()
	update, err := stateTree.GetPathUpdate(0, randomStateLeaf.Hash())
	if err != nil {
		return nil, err
	}
	pathElements, pathIndices := pathStrings(update.Path)

	return &BatchUpdateStateTreeCircuitInputs{
		PerMessage: perMessage,

		RandomStateLeaf:           toDecimalStrings(randomStateLeaf.ToFieldElements()),
		RandomLeafPathElements:    pathElements,
		RandomLeafPathIndices:     pathIndices,
		StateRootBeforeRandomLeaf: oldRoot.String(),
		StateRootAfterRandomLeaf:  update.NewRoot.String(),
	}, nil
}

// QuadVoteTallyCircuitInputs is the witness for tallying one batch of
// users' quadratic votes.
type QuadVoteTallyCircuitInputs struct {
	StateRoot                  string
	IntermediatePathElements   []string
	IntermediatePathIndices    []int
	BatchIndex                 int

	StateLeaves []string   // batchSize state-leaf hashes
	VoteLeaves  [][]string // batchSize x NumVoteOptions vote vectors

	CurrentResults           []string
	CurrentResultsCommitment string
	CurrentResultsSalt       string

	NewResults           []string
	NewResultsCommitment string
	NewResultsSalt       string
}

func commitResults(results []field.Element, salt field.Element) field.Element {
	return poseidon.Hash(append(append([]field.Element{}, results...), salt)...)
}

// GenQuadVoteTallyCircuitInputs builds the witness for tallying the batch
// of users at [startIndex, startIndex+batchSize). batchSize must be a
// power of two (batchTreeDepth = log2(batchSize)) and startIndex must be
// a multiple of batchSize. It constructs a batch tree per full batch of
// the state tree and an intermediate tree over the batch roots, and
// fails with ErrInvariantViolation if the intermediate tree's root
// disagrees with the authoritative state root.
func (s *MaciState) GenQuadVoteTallyCircuitInputs(startIndex, batchSize int, currentResultsSalt, newResultsSalt field.Element) (*QuadVoteTallyCircuitInputs, error) {
	if batchSize <= 0 || batchSize&(batchSize-1) != 0 {
		return nil, fmt.Errorf("maci: batchSize must be a power of two, got %d", batchSize)
	}
	if startIndex%batchSize != 0 {
		return nil, fmt.Errorf("maci: startIndex %d is not a multiple of batchSize %d", startIndex, batchSize)
	}
	batchTreeDepth := 0
	for n := batchSize; n > 1; n >>= 1 {
		batchTreeDepth++
	}
	intermediateDepth := s.cfg.StateTreeDepth - batchTreeDepth
	if intermediateDepth < 0 {
		return nil, fmt.Errorf("maci: batchSize exceeds state tree capacity")
	}

	blankLeafHash := BlankStateLeaf(s.cfg).Hash()
	zeroBatchRoot := merkle.NewTree(batchTreeDepth, blankLeafHash).Root()

	numBatches := s.cfg.StateTreeCapacity() / batchSize
	currentBatchIndex := startIndex / batchSize

	batchRoots := make([]field.Element, numBatches)
	var stateLeaves []field.Element
	var voteLeaves [][]field.Element

	for b := 0; b < numBatches; b++ {
		bt := merkle.NewTree(batchTreeDepth, blankLeafHash)
		for j := 0; j < batchSize; j++ {
			globalIdx := b*batchSize + j

			// leafHash follows the state tree's own 1-based convention
			// (index 0 is the zeroth sentinel, index k is users[k-1]) so
			// the batch tree's structure matches buildStateTree exactly;
			// this is what the intermediate-root invariant depends on.
			var leafHash field.Element
			switch {
			case globalIdx == 0:
				leafHash = s.zerothStateLeaf.Hash()
			case globalIdx-1 < len(s.users):
				leafHash = s.users[globalIdx-1].StateLeaf(s.cfg).Hash()
			default:
				leafHash = blankLeafHash
			}
			mustInsert(bt, leafHash)

			if b == currentBatchIndex {
				stateLeaves = append(stateLeaves, leafHash)

				// votes follows computeBatchVoteTally's position
				// convention instead (position p indexes users[p]
				// directly, p == 0 is the skipped zeroth slot), so the
				// per-user vote vectors handed to the prover sum to
				// exactly newResults - currentResults.
				var votes []field.Element
				switch {
				case globalIdx == 0:
					votes = s.zeroVotes()
				case globalIdx < len(s.users):
					votes = s.users[globalIdx].Votes
				default:
					votes = s.zeroVotes()
				}
				voteLeaves = append(voteLeaves, votes)
			}
		}
		batchRoots[b] = bt.Root()
	}

	it := merkle.NewTree(intermediateDepth, zeroBatchRoot)
	for _, r := range batchRoots {
		mustInsert(it, r)
	}

	if !field.Equal(it.Root(), s.GenStateRoot()) {
		return nil, fmt.Errorf("maci: %w: intermediate tree root disagrees with state root", ErrInvariantViolation)
	}

	path, err := it.GetPath(currentBatchIndex)
	if err != nil {
		return nil, err
	}
	pathElements, pathIndices := pathStrings(path)

	currentResults := s.computeCumulativeVoteTally(startIndex)
	batchTally, err := s.computeBatchVoteTally(startIndex, batchSize)
	if err != nil {
		return nil, err
	}
	newResults := make([]field.Element, len(currentResults))
	for i := range newResults {
		newResults[i] = field.Add(currentResults[i], batchTally[i])
	}

	return &QuadVoteTallyCircuitInputs{
		StateRoot:                s.GenStateRoot().String(),
		IntermediatePathElements: pathElements,
		IntermediatePathIndices:  pathIndices,
		BatchIndex:               currentBatchIndex,

		StateLeaves: toDecimalStrings(stateLeaves),
		VoteLeaves:  voteLeavesToStrings(voteLeaves),

		CurrentResults:           toDecimalStrings(currentResults),
		CurrentResultsCommitment: commitResults(currentResults, currentResultsSalt).String(),
		CurrentResultsSalt:       currentResultsSalt.String(),

		NewResults:           toDecimalStrings(newResults),
		NewResultsCommitment: commitResults(newResults, newResultsSalt).String(),
		NewResultsSalt:       newResultsSalt.String(),
	}, nil
}

func voteLeavesToStrings(vv [][]field.Element) [][]string {
	out := make([][]string, len(vv))
	for i, v := range vv {
		out[i] = toDecimalStrings(v)
	}
	return out
}
