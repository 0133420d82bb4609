package babyjub

import "github.com/MuriData/maci-core/pkg/field"

// PrivKey is a raw element of F; the scalar actually used on the curve is
// always prune(sk), never sk itself (see curve.go).
type PrivKey struct {
	s field.Element
}

// PubKey is a BabyJubJub point (x, y) in affine coordinates.
type PubKey struct {
	X, Y field.Element
}

// Keypair is a BabyJubJub private/public key pair satisfying
// pubKey = scalarMul(basePoint, prune(privKey)).
type Keypair struct {
	Priv PrivKey
	Pub  PubKey
}

// PrivKeyFromElement wraps a raw field element as a private key.
func PrivKeyFromElement(s field.Element) PrivKey {
	return PrivKey{s: s}
}

// Element returns the raw (un-pruned) private scalar.
func (k PrivKey) Element() field.Element {
	return k.s
}

// Public derives the public key for this private key.
func (k PrivKey) Public() PubKey {
	return scalarMulBase(prune(k.s))
}

// GenerateKeypair draws a fresh private key from the CSPRNG and derives
// the matching public key.
func GenerateKeypair() (*Keypair, error) {
	sk, err := field.Random()
	if err != nil {
		return nil, err
	}
	priv := PrivKeyFromElement(sk)
	return &Keypair{Priv: priv, Pub: priv.Public()}, nil
}

// Equal reports whether two public keys are the same curve point.
func (pk PubKey) Equal(other PubKey) bool {
	return field.Equal(pk.X, other.X) && field.Equal(pk.Y, other.Y)
}

// IsZero reports whether pk is the identity-adjacent (0, 0) placeholder used
// by the blank StateLeaf — (0,0) is not a valid curve point, it is MACI's
// sentinel for "no key registered yet".
func (pk PubKey) IsZero() bool {
	return pk.X.IsZero() && pk.Y.IsZero()
}
