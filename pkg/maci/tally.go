package maci

import (
	"fmt"

	"github.com/MuriData/maci-core/pkg/field"
)

// zeroVotes returns a fresh all-zero vote vector of the configured
// length.
func (s *MaciState) zeroVotes() []field.Element {
	v := make([]field.Element, s.cfg.NumVoteOptions())
	for i := range v {
		v[i] = field.Zero()
	}
	return v
}

func addVotesInto(sum []field.Element, votes []field.Element) {
	for i, v := range votes {
		sum[i] = field.Add(sum[i], v)
	}
}

// computeCumulativeVoteTally returns the elementwise sum of user.votes
// over users[0 .. startIndex-2], i.e. every user strictly before the
// current batch, skipping one position so the conceptual zeroth state
// leaf (which is never a real user) does not shift the count. Returns
// all zeros when startIndex <= 1.
func (s *MaciState) computeCumulativeVoteTally(startIndex int) []field.Element {
	sum := s.zeroVotes()
	for i := 0; i < startIndex-1 && i < len(s.users); i++ {
		addVotesInto(sum, s.users[i].Votes)
	}
	return sum
}

// computeBatchVoteTally sums user.votes for users at positions
// [startIndex, startIndex+batchSize), skipping position 0 when
// startIndex == 0 (that position is the zeroth conceptual slot, never a
// real user) and treating any position >= len(users) as a zero
// contribution.
func (s *MaciState) computeBatchVoteTally(startIndex, batchSize int) ([]field.Element, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("maci: batchSize must be positive")
	}
	if startIndex < 0 || startIndex >= len(s.users) {
		return nil, fmt.Errorf("maci: %w: startIndex %d", ErrIndexOutOfRange, startIndex)
	}
	if startIndex%batchSize != 0 {
		return nil, fmt.Errorf("maci: startIndex %d is not a multiple of batchSize %d", startIndex, batchSize)
	}

	sum := s.zeroVotes()
	for pos := startIndex; pos < startIndex+batchSize; pos++ {
		if startIndex == 0 && pos == 0 {
			continue
		}
		if pos >= len(s.users) {
			continue
		}
		addVotesInto(sum, s.users[pos].Votes)
	}
	return sum, nil
}
