package maci

import (
	"testing"

	"github.com/MuriData/maci-core/pkg/babyjub"
	"github.com/MuriData/maci-core/pkg/field"
	"github.com/MuriData/maci-core/pkg/maciconfig"
	"github.com/rs/zerolog"
)

func mustKeypair(t *testing.T) *babyjub.Keypair {
	t.Helper()
	kp, err := babyjub.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return kp
}

// s1Config is the scenario-1 configuration from the design notes:
// stateTreeDepth=4, messageTreeDepth=4, voteOptionTreeDepth=2,
// maxVoteOptionIndex=3, initialVoiceCreditBalance=100.
func s1Config(t *testing.T) *maciconfig.Config {
	t.Helper()
	cfg, err := maciconfig.NewConfig(4, 4, 2, 4, 4, 3, field.FromInt64(100))
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return cfg
}

// publishSignedCommand builds, signs, encrypts, and publishes cmd on
// behalf of user, returning the message's index in the log.
func publishSignedCommand(t *testing.T, s *MaciState, user *babyjub.Keypair, cmd Command) int {
	t.Helper()
	sig := cmd.Sign(user.Priv)
	sharedKey := babyjub.SharedKey(user.Priv, s.CoordinatorPubKey())
	msg, err := EncryptCommand(cmd, sig, sharedKey)
	if err != nil {
		t.Fatalf("EncryptCommand: %v", err)
	}
	if err := s.PublishMessage(msg, user.Pub); err != nil {
		t.Fatalf("PublishMessage: %v", err)
	}
	return s.NumMessages() - 1
}

// TestS1SingleUserSingleValidVote exercises scenario S1.
func TestS1SingleUserSingleValidVote(t *testing.T) {
	cfg := s1Config(t)
	coordinator := mustKeypair(t)
	s := NewMaciState(cfg, coordinator, zerolog.Nop())

	u1 := mustKeypair(t)
	stateIndex, err := s.SignUp(u1.Pub)
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if stateIndex != 1 {
		t.Fatalf("stateIndex = %d, want 1", stateIndex)
	}

	cmd := Command{
		StateIndex:      field.FromInt64(1),
		NewPubKey:       u1.Pub,
		VoteOptionIndex: field.FromInt64(2),
		NewVoteWeight:   field.FromInt64(5),
		Nonce:           field.FromInt64(1),
		Salt:            field.FromInt64(424242),
	}
	i := publishSignedCommand(t, s, u1, cmd)

	accepted, err := s.ProcessMessage(i)
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if !accepted {
		t.Fatalf("valid command was rejected")
	}

	u, err := s.User(1)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if !field.Equal(u.Votes[2], field.FromInt64(5)) {
		t.Fatalf("votes[2] = %s, want 5", u.Votes[2].String())
	}
	if !field.Equal(u.VoiceCreditBalance, field.FromInt64(75)) {
		t.Fatalf("balance = %s, want 75", u.VoiceCreditBalance.String())
	}
	if !field.Equal(u.Nonce, field.FromInt64(1)) {
		t.Fatalf("nonce = %s, want 1", u.Nonce.String())
	}
}

// TestS2WrongNonceRejected exercises scenario S2.
func TestS2WrongNonceRejected(t *testing.T) {
	cfg := s1Config(t)
	coordinator := mustKeypair(t)
	s := NewMaciState(cfg, coordinator, zerolog.Nop())

	u1 := mustKeypair(t)
	if _, err := s.SignUp(u1.Pub); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	cmd := Command{
		StateIndex:      field.FromInt64(1),
		NewPubKey:       u1.Pub,
		VoteOptionIndex: field.FromInt64(1),
		NewVoteWeight:   field.FromInt64(3),
		Nonce:           field.FromInt64(2), // wrong: should be 1
		Salt:            field.FromInt64(1),
	}
	i := publishSignedCommand(t, s, u1, cmd)

	accepted, err := s.ProcessMessage(i)
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if accepted {
		t.Fatalf("command with wrong nonce should be rejected")
	}

	u, err := s.User(1)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if !u.Nonce.IsZero() {
		t.Fatalf("user should be unchanged, nonce = %s", u.Nonce.String())
	}
	if s.NumMessages() != 1 {
		t.Fatalf("messages length = %d, want 1", s.NumMessages())
	}
}

// TestS3OverdrawRejected exercises scenario S3.
func TestS3OverdrawRejected(t *testing.T) {
	cfg, err := maciconfig.NewConfig(4, 4, 2, 4, 4, 3, field.FromInt64(16))
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	coordinator := mustKeypair(t)
	s := NewMaciState(cfg, coordinator, zerolog.Nop())

	u1 := mustKeypair(t)
	if _, err := s.SignUp(u1.Pub); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	cmd := Command{
		StateIndex:      field.FromInt64(1),
		NewPubKey:       u1.Pub,
		VoteOptionIndex: field.FromInt64(0),
		NewVoteWeight:   field.FromInt64(5), // costs 25 > 16 available
		Nonce:           field.FromInt64(1),
		Salt:            field.FromInt64(1),
	}
	i := publishSignedCommand(t, s, u1, cmd)

	accepted, err := s.ProcessMessage(i)
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if accepted {
		t.Fatalf("overdrawing command should be rejected")
	}
	u, err := s.User(1)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if !field.Equal(u.VoiceCreditBalance, field.FromInt64(16)) {
		t.Fatalf("balance should be unchanged at 16, got %s", u.VoiceCreditBalance.String())
	}
}

// TestS4KeyRotationAppliesToNextMessage exercises scenario S4.
func TestS4KeyRotationAppliesToNextMessage(t *testing.T) {
	cfg := s1Config(t)
	coordinator := mustKeypair(t)
	s := NewMaciState(cfg, coordinator, zerolog.Nop())

	u1 := mustKeypair(t)
	u1New := mustKeypair(t)
	if _, err := s.SignUp(u1.Pub); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	rotate := Command{
		StateIndex:      field.FromInt64(1),
		NewPubKey:       u1New.Pub,
		VoteOptionIndex: field.FromInt64(0),
		NewVoteWeight:   field.FromInt64(1),
		Nonce:           field.FromInt64(1),
		Salt:            field.FromInt64(1),
	}
	i0 := publishSignedCommand(t, s, u1, rotate)
	accepted, err := s.ProcessMessage(i0)
	if err != nil || !accepted {
		t.Fatalf("rotation command should be accepted, accepted=%v err=%v", accepted, err)
	}

	// Signed by the OLD key with nonce=2: must be rejected, since the
	// user's on-file key is now u1New.
	staleKeyCmd := Command{
		StateIndex:      field.FromInt64(1),
		NewPubKey:       u1New.Pub,
		VoteOptionIndex: field.FromInt64(1),
		NewVoteWeight:   field.FromInt64(2),
		Nonce:           field.FromInt64(2),
		Salt:            field.FromInt64(2),
	}
	i1 := publishSignedCommand(t, s, u1, staleKeyCmd)
	accepted, err = s.ProcessMessage(i1)
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if accepted {
		t.Fatalf("command signed by the rotated-away key should be rejected")
	}

	// Signed by the NEW key with nonce=2: must be accepted.
	newKeyCmd := Command{
		StateIndex:      field.FromInt64(1),
		NewPubKey:       u1New.Pub,
		VoteOptionIndex: field.FromInt64(1),
		NewVoteWeight:   field.FromInt64(2),
		Nonce:           field.FromInt64(2),
		Salt:            field.FromInt64(3),
	}
	i2 := publishSignedCommand(t, s, u1New, newKeyCmd)
	accepted, err = s.ProcessMessage(i2)
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if !accepted {
		t.Fatalf("command signed by the rotated-in key should be accepted")
	}
}

// TestS5BatchRandomizedZerothLeaf exercises scenario S5.
func TestS5BatchRandomizedZerothLeaf(t *testing.T) {
	cfg := s1Config(t)
	coordinator := mustKeypair(t)
	s := NewMaciState(cfg, coordinator, zerolog.Nop())

	randomLeaf1, err := RandomStateLeaf()
	if err != nil {
		t.Fatalf("RandomStateLeaf: %v", err)
	}
	if err := s.BatchProcessMessage(0, 4, randomLeaf1); err != nil {
		t.Fatalf("BatchProcessMessage: %v", err)
	}
	if !field.Equal(s.zerothStateLeaf.Hash(), randomLeaf1.Hash()) {
		t.Fatalf("zerothStateLeaf after batch 1 should equal randomLeaf1")
	}
	rootAfterBatch1 := s.GenStateRoot()

	randomLeaf2, err := RandomStateLeaf()
	if err != nil {
		t.Fatalf("RandomStateLeaf: %v", err)
	}
	if err := s.BatchProcessMessage(4, 4, randomLeaf2); err != nil {
		t.Fatalf("BatchProcessMessage: %v", err)
	}
	rootAfterBatch2 := s.GenStateRoot()

	if field.Equal(rootAfterBatch1, rootAfterBatch2) {
		t.Fatalf("state root should differ across batches even with no valid messages")
	}
}

// TestS6CumulativeTallyEqualsFold exercises scenario S6.
func TestS6CumulativeTallyEqualsFold(t *testing.T) {
	cfg := s1Config(t)
	coordinator := mustKeypair(t)
	s := NewMaciState(cfg, coordinator, zerolog.Nop())

	for i := 0; i < 8; i++ {
		u := mustKeypair(t)
		if _, err := s.SignUp(u.Pub); err != nil {
			t.Fatalf("SignUp: %v", err)
		}
	}

	got := s.computeCumulativeVoteTally(8)
	want := s.zeroVotes()
	for i := 0; i < 7; i++ {
		addVotesInto(want, s.users[i].Votes)
	}
	for i := range want {
		if !field.Equal(got[i], want[i]) {
			t.Fatalf("computeCumulativeVoteTally(8)[%d] = %s, want %s", i, got[i].String(), want[i].String())
		}
	}
}

// TestInvalidMessageLeavesStateUnchanged covers the invariant that a
// rejected command does not mutate users, messages, or encPubKeys.
func TestInvalidMessageLeavesStateUnchanged(t *testing.T) {
	cfg := s1Config(t)
	coordinator := mustKeypair(t)
	s := NewMaciState(cfg, coordinator, zerolog.Nop())

	u1 := mustKeypair(t)
	if _, err := s.SignUp(u1.Pub); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	// voteOptionIndex beyond maxVoteOptionIndex.
	cmd := Command{
		StateIndex:      field.FromInt64(1),
		NewPubKey:       u1.Pub,
		VoteOptionIndex: field.FromInt64(99),
		NewVoteWeight:   field.FromInt64(1),
		Nonce:           field.FromInt64(1),
		Salt:            field.FromInt64(1),
	}
	before := s.Copy()
	i := publishSignedCommand(t, s, u1, cmd)
	accepted, err := s.ProcessMessage(i)
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if accepted {
		t.Fatalf("out-of-range voteOptionIndex should be rejected")
	}

	u, err := s.User(1)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	beforeUser := before.users[0]
	if !field.Equal(u.Nonce, beforeUser.Nonce) || !field.Equal(u.VoiceCreditBalance, beforeUser.VoiceCreditBalance) {
		t.Fatalf("user state changed after a rejected message")
	}
}

// TestGenBatchUpdateStateTreeCircuitInputsIsPure covers the builder
// purity invariant: the authoritative state is unchanged by a batch
// circuit-input build.
func TestGenBatchUpdateStateTreeCircuitInputsIsPure(t *testing.T) {
	cfg := s1Config(t)
	coordinator := mustKeypair(t)
	s := NewMaciState(cfg, coordinator, zerolog.Nop())

	u1 := mustKeypair(t)
	if _, err := s.SignUp(u1.Pub); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	cmd := Command{
		StateIndex:      field.FromInt64(1),
		NewPubKey:       u1.Pub,
		VoteOptionIndex: field.FromInt64(1),
		NewVoteWeight:   field.FromInt64(3),
		Nonce:           field.FromInt64(1),
		Salt:            field.FromInt64(1),
	}
	publishSignedCommand(t, s, u1, cmd)

	rootBefore := s.GenStateRoot()
	randomLeaf, err := RandomStateLeaf()
	if err != nil {
		t.Fatalf("RandomStateLeaf: %v", err)
	}

	if _, err := s.GenBatchUpdateStateTreeCircuitInputs(0, 4, randomLeaf); err != nil {
		t.Fatalf("GenBatchUpdateStateTreeCircuitInputs: %v", err)
	}

	if !field.Equal(s.GenStateRoot(), rootBefore) {
		t.Fatalf("GenBatchUpdateStateTreeCircuitInputs must not mutate the caller's state")
	}
	u, err := s.User(1)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if !u.Nonce.IsZero() {
		t.Fatalf("caller's user should still be unprocessed, nonce = %s", u.Nonce.String())
	}
}

// TestGenQuadVoteTallyCircuitInputsIntermediateRootAgrees covers the
// intermediate-tree agreement invariant.
func TestGenQuadVoteTallyCircuitInputsIntermediateRootAgrees(t *testing.T) {
	cfg := s1Config(t)
	coordinator := mustKeypair(t)
	s := NewMaciState(cfg, coordinator, zerolog.Nop())

	for i := 0; i < 4; i++ {
		u := mustKeypair(t)
		if _, err := s.SignUp(u.Pub); err != nil {
			t.Fatalf("SignUp: %v", err)
		}
	}

	inputs, err := s.GenQuadVoteTallyCircuitInputs(0, 4, field.FromInt64(11), field.FromInt64(22))
	if err != nil {
		t.Fatalf("GenQuadVoteTallyCircuitInputs: %v", err)
	}
	if inputs.StateRoot != s.GenStateRoot().String() {
		t.Fatalf("reported StateRoot disagrees with GenStateRoot()")
	}
}
