package babyjub

import (
	"math/big"

	"github.com/MuriData/maci-core/pkg/field"
	"github.com/MuriData/maci-core/pkg/poseidon"
)

// Signature is an EdDSA-over-BabyJubJub signature: a curve point R8 and a
// scalar S, both reduced modulo the BabyJubJub subgroup order.
type Signature struct {
	R8 PubKey
	S  field.Element
}

// Sign produces a deterministic EdDSA signature over msg using Poseidon (H)
// both for the per-signature nonce and for the Fiat-Shamir challenge, the
// standard "EdDSA-Poseidon" construction MACI circuits verify.
func Sign(sk PrivKey, msg field.Element) Signature {
	order := SubgroupOrder()
	prunedInt := prune(sk.s)
	prunedElem := field.FromBigInt(prunedInt)
	pub := scalarMulBase(prunedInt)

	// Deterministic nonce: r = H(prunedScalar, msg) mod order. Using a
	// pseudo-random function of the secret and the message (rather than a
	// fresh CSPRNG draw) avoids nonce reuse across signatures on the same
	// message without requiring per-call randomness.
	r := new(big.Int).Mod(poseidon.Hash(prunedElem, msg).BigInt(), order)
	r8 := scalarMulBase(r)

	hram := new(big.Int).Mod(
		poseidon.Hash(r8.X, r8.Y, pub.X, pub.Y, msg).BigInt(), order)

	s := new(big.Int).Add(r, new(big.Int).Mul(hram, prunedInt))
	s.Mod(s, order)

	return Signature{R8: r8, S: field.FromBigInt(s)}
}

// Verify reports whether sig is a valid EdDSA-over-BabyJubJub signature by
// pk over msg. Any algebraic failure — wrong key, tampered message, flipped
// signature bit — returns false; it never panics or errors.
func Verify(pk PubKey, msg field.Element, sig Signature) bool {
	order := SubgroupOrder()
	hram := new(big.Int).Mod(
		poseidon.Hash(sig.R8.X, sig.R8.Y, pk.X, pk.Y, msg).BigInt(), order)

	lhs := scalarMulBase(sig.S.BigInt())
	rhs := addPoints(sig.R8, scalarMulPoint(pk, hram))

	return lhs.Equal(rhs)
}
