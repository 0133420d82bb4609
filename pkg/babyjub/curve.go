// Package babyjub implements BabyJubJub curve operations, EdDSA signatures,
// and ECDH key agreement for the MACI core. BabyJubJub is the twisted
// Edwards curve embedded in BN254's scalar field, i.e. gnark-crypto's
// ecc/bn254/twistededwards package — the same curve the teacher repo
// parses eddsa.PublicKey values from in export_proof.go.
package babyjub

import (
	"math/big"

	"github.com/MuriData/maci-core/pkg/field"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
)

// curve caches the BabyJubJub curve parameters (base point, subgroup
// order, twisted-Edwards A/D coefficients). GetEdwardsCurve has no
// meaningful per-call cost in gnark-crypto, but caching keeps call sites
// free of the lookup.
var curve = twistededwards.GetEdwardsCurve()

// SubgroupOrder returns the prime order of BabyJubJub's subgroup, the
// modulus all EdDSA/ECDH scalars are reduced against.
func SubgroupOrder() *big.Int {
	return new(big.Int).Set(&curve.Order)
}

// prune derives a BabyJubJub scalar from a raw F element following the
// Ed25519-style pruning rule: clear the bottom 3 bits (cofactor clearing
// for BabyJubJub's cofactor of 8), clear the top bit, and set the
// second-highest bit (forces the scalar into a fixed bit-length range so
// timing of the subsequent scalar multiplication does not leak its size).
func prune(sk field.Element) *big.Int {
	raw := sk.Bytes() // big-endian
	var le [32]byte
	for i, b := range raw {
		le[31-i] = b
	}
	le[0] &^= 0b0000_0111
	le[31] &^= 0b1000_0000
	le[31] |= 0b0100_0000

	// le is little-endian; big.Int.SetBytes wants big-endian, so reverse back.
	var be [32]byte
	for i, b := range le {
		be[31-i] = b
	}
	return new(big.Int).SetBytes(be[:])
}

// scalarMulBase returns scalar * basePoint.
func scalarMulBase(scalar *big.Int) PubKey {
	var p twistededwards.PointAffine
	p.ScalarMultiplication(&curve.Base, scalar)
	return PubKey{X: field.FromFrElement(p.X), Y: field.FromFrElement(p.Y)}
}

// scalarMulPoint returns scalar * pk.
func scalarMulPoint(pk PubKey, scalar *big.Int) PubKey {
	base := twistededwards.PointAffine{X: field.FrElement(pk.X), Y: field.FrElement(pk.Y)}
	var p twistededwards.PointAffine
	p.ScalarMultiplication(&base, scalar)
	return PubKey{X: field.FromFrElement(p.X), Y: field.FromFrElement(p.Y)}
}

// addPoints returns a + b on the curve.
func addPoints(a, b PubKey) PubKey {
	pa := twistededwards.PointAffine{X: field.FrElement(a.X), Y: field.FrElement(a.Y)}
	pb := twistededwards.PointAffine{X: field.FrElement(b.X), Y: field.FrElement(b.Y)}
	var sum twistededwards.PointAffine
	sum.Add(&pa, &pb)
	return PubKey{X: field.FromFrElement(sum.X), Y: field.FromFrElement(sum.Y)}
}
