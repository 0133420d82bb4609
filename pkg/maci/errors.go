package maci

import "errors"

// These are the two "fatal for the caller" conditions §7 of the design
// calls Capacity exceeded. Everything else a message can fail on
// (signature, nonce, credit, option range) is "message invalid": it is
// not an error at all, just a no-op processMessage call that leaves state
// unchanged — see ProcessMessage's bool return.
var (
	// ErrStateTreeFull is returned by SignUp once users has reached
	// 2^StateTreeDepth - 1 slots (index 0 is reserved for the zeroth leaf).
	ErrStateTreeFull = errors.New("maci: state tree is full")

	// ErrMessageTreeFull is returned by PublishMessage once messages has
	// reached 2^MessageTreeDepth entries.
	ErrMessageTreeFull = errors.New("maci: message tree is full")

	// ErrIndexOutOfRange is returned by operations given a message index
	// outside the committed message log, or a state/tally index outside
	// the signed-up users.
	ErrIndexOutOfRange = errors.New("maci: index out of range")

	// ErrInvariantViolation is returned by the circuit-input builders when
	// an internal consistency check fails (e.g. intermediate tree root
	// disagreeing with the state root). It always indicates a programmer
	// error in the engine, never a malformed message.
	ErrInvariantViolation = errors.New("maci: invariant violation")
)
