package babyjub

import "github.com/MuriData/maci-core/pkg/field"

// SharedKey derives the Diffie-Hellman shared secret between a private key
// and a counterparty's public key: scalarMul(pk, prune(sk)).x. It is
// symmetric — SharedKey(a.Priv, b.Pub) == SharedKey(b.Priv, a.Pub) — because
// scalar multiplication commutes on the curve's cyclic subgroup.
func SharedKey(sk PrivKey, pk PubKey) field.Element {
	return scalarMulPoint(pk, prune(sk.s)).X
}
