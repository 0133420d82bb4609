// Package poseidon is MACI's hash layer H: a Poseidon-family permutation
// hash over sequences of field elements, built on gnark-crypto's Poseidon2
// Merkle-Damgard construction (the same hasher the teacher repo's
// pkg/crypto.Hash uses for leaf and node hashing).
package poseidon

import (
	"github.com/MuriData/maci-core/pkg/field"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// Hash computes H(inputs...), feeding each element to a fresh Merkle-Damgard
// Poseidon2 sponge in order. An empty input hashes the empty sequence.
func Hash(inputs ...field.Element) field.Element {
	h := poseidon2.NewMerkleDamgardHasher()
	for _, in := range inputs {
		b := in.Bytes()
		h.Write(b[:])
	}
	return field.FromBytes(h.Sum(nil))
}

// HashOne is hashOne(x) := H([x]).
func HashOne(x field.Element) field.Element {
	return Hash(x)
}
