// Package maciconfig holds the immutable, validated configuration a
// MaciState engine is constructed with: the tree depths and batch sizes
// that size every Merkle tree and circuit-input builder in pkg/maci.
package maciconfig

import (
	"fmt"

	"github.com/MuriData/maci-core/pkg/field"
)

// MaxTreeDepth is the ceiling on any tree depth this package accepts.
// Grounded on the teacher's config.MaxTreeDepth = 20 pattern — same idea,
// wider ceiling since state/message trees here are not file-chunk trees.
const MaxTreeDepth = 32

// Config is immutable after NewConfig returns it; pkg/maci never mutates
// a *Config it was given.
type Config struct {
	StateTreeDepth      int
	MessageTreeDepth    int
	VoteOptionTreeDepth int

	MessageBatchSize       int
	QuadVoteTallyBatchSize int

	MaxVoteOptionIndex int

	InitialVoiceCreditBalance field.Element

	// IntermediateStateTreeDepth = StateTreeDepth - log2(QuadVoteTallyBatchSize).
	// Derived, not supplied, so it can never disagree with the two depths
	// it comes from.
	IntermediateStateTreeDepth int
}

// ConfigError reports a construction-time configuration defect. It is
// always fatal: callers must not attempt to build a MaciState from a
// Config that failed validation.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("maciconfig: invalid configuration: %s", e.Reason)
}

// NewConfig validates its arguments and returns a ready-to-use Config, or
// a *ConfigError describing the first defect found.
func NewConfig(
	stateTreeDepth, messageTreeDepth, voteOptionTreeDepth int,
	messageBatchSize, quadVoteTallyBatchSize int,
	maxVoteOptionIndex int,
	initialVoiceCreditBalance field.Element,
) (*Config, error) {
	if stateTreeDepth <= 0 || messageTreeDepth <= 0 || voteOptionTreeDepth <= 0 {
		return nil, &ConfigError{Reason: "tree depths must be positive"}
	}
	if stateTreeDepth > MaxTreeDepth || messageTreeDepth > MaxTreeDepth || voteOptionTreeDepth > MaxTreeDepth {
		return nil, &ConfigError{Reason: "tree depths must not exceed MaxTreeDepth"}
	}
	if messageBatchSize <= 0 || quadVoteTallyBatchSize <= 0 {
		return nil, &ConfigError{Reason: "batch sizes must be positive"}
	}
	if !isPowerOfTwo(messageBatchSize) {
		return nil, &ConfigError{Reason: "messageBatchSize must be a power of two"}
	}
	if !isPowerOfTwo(quadVoteTallyBatchSize) {
		return nil, &ConfigError{Reason: "quadVoteTallyBatchSize must be a power of two"}
	}
	if quadVoteTallyBatchSize > 1<<uint(stateTreeDepth) {
		return nil, &ConfigError{Reason: "quadVoteTallyBatchSize exceeds state tree capacity"}
	}
	maxVoteOptionLeafIndex := 1<<uint(voteOptionTreeDepth) - 1
	if maxVoteOptionIndex < 0 || maxVoteOptionIndex > maxVoteOptionLeafIndex {
		return nil, &ConfigError{Reason: "maxVoteOptionIndex exceeds the vote option tree's leaf range"}
	}

	batchDepth := log2Exact(quadVoteTallyBatchSize)

	return &Config{
		StateTreeDepth:             stateTreeDepth,
		MessageTreeDepth:           messageTreeDepth,
		VoteOptionTreeDepth:        voteOptionTreeDepth,
		MessageBatchSize:           messageBatchSize,
		QuadVoteTallyBatchSize:     quadVoteTallyBatchSize,
		MaxVoteOptionIndex:         maxVoteOptionIndex,
		InitialVoiceCreditBalance:  initialVoiceCreditBalance,
		IntermediateStateTreeDepth: stateTreeDepth - batchDepth,
	}, nil
}

// NumVoteOptions returns 2^VoteOptionTreeDepth, the fixed length of every
// user's vote vector.
func (c *Config) NumVoteOptions() int {
	return 1 << uint(c.VoteOptionTreeDepth)
}

// StateTreeCapacity returns 2^StateTreeDepth, the maximum number of state
// tree leaves including the zeroth sentinel.
func (c *Config) StateTreeCapacity() int {
	return 1 << uint(c.StateTreeDepth)
}

// MessageTreeCapacity returns 2^MessageTreeDepth.
func (c *Config) MessageTreeCapacity() int {
	return 1 << uint(c.MessageTreeDepth)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// log2Exact returns log2(n) for a power-of-two n; NewConfig has already
// rejected non-powers-of-two by the time this is called.
func log2Exact(n int) int {
	depth := 0
	for n > 1 {
		n >>= 1
		depth++
	}
	return depth
}
