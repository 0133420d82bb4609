// Package field wraps the BN254 scalar field as the single finite field F
// that MACI's cryptography and state machine operate over. Every hash,
// vote, index, nonce, and credit balance is an element of F. All arithmetic
// goes through fr.Element so reduction happens at one choke point instead of
// being repeated with ad-hoc big.Int math at every call site.
package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Element is a canonical representative of F, i.e. an integer in [0, p).
type Element struct {
	inner fr.Element
}

// Modulus returns p, the SNARK-friendly prime modulus of F.
func Modulus() *big.Int {
	return fr.Modulus()
}

// Zero returns the additive identity of F.
func Zero() Element {
	return Element{}
}

// One returns the multiplicative identity of F.
func One() Element {
	var e Element
	e.inner.SetOne()
	return e
}

// FromBigInt reduces x modulo p and returns the resulting Element.
func FromBigInt(x *big.Int) Element {
	var e Element
	e.inner.SetBigInt(x)
	return e
}

// FromInt64 reduces n modulo p.
func FromInt64(n int64) Element {
	var e Element
	e.inner.SetInt64(n)
	return e
}

// FromUint64 reduces n modulo p.
func FromUint64(n uint64) Element {
	var e Element
	e.inner.SetUint64(n)
	return e
}

// BigInt returns the canonical big.Int representative in [0, p).
func (e Element) BigInt() *big.Int {
	out := new(big.Int)
	e.inner.BigInt(out)
	return out
}

// String returns the canonical decimal-string form used for circuit inputs.
func (e Element) String() string {
	return e.BigInt().String()
}

// Bytes returns the canonical big-endian 32-byte encoding.
func (e Element) Bytes() [32]byte {
	return e.inner.Bytes()
}

// FromBytes interprets buf as a big-endian encoding and reduces it modulo p.
func FromBytes(buf []byte) Element {
	var e Element
	e.inner.SetBytes(buf)
	return e
}

// Add returns a + b mod p.
func Add(a, b Element) Element {
	var e Element
	e.inner.Add(&a.inner, &b.inner)
	return e
}

// Sub returns a - b mod p.
func Sub(a, b Element) Element {
	var e Element
	e.inner.Sub(&a.inner, &b.inner)
	return e
}

// Mul returns a * b mod p.
func Mul(a, b Element) Element {
	var e Element
	e.inner.Mul(&a.inner, &b.inner)
	return e
}

// Square returns a^2 mod p.
func Square(a Element) Element {
	var e Element
	e.inner.Square(&a.inner)
	return e
}

// Neg returns -a mod p.
func Neg(a Element) Element {
	var e Element
	e.inner.Neg(&a.inner)
	return e
}

// Equal reports whether a and b are the same element of F.
func Equal(a, b Element) bool {
	return a.inner.Equal(&b.inner)
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool {
	return e.inner.IsZero()
}

// Cmp orders elements by their canonical big.Int representative, e.g. for
// range-checking a field element against a small integer bound; F has no
// cryptographic ordering.
func Cmp(a, b Element) int {
	return a.inner.Cmp(&b.inner)
}

// FrElement returns the underlying gnark-crypto field element by value, for
// packages in this module (such as babyjub) that feed gnark-crypto APIs
// directly.
func FrElement(e Element) fr.Element {
	return e.inner
}

// FromFrElement wraps an fr.Element as an Element.
func FromFrElement(fe fr.Element) Element {
	return Element{inner: fe}
}

// Random draws a cryptographically secure uniformly random element of F.
func Random() (Element, error) {
	var e Element
	if _, err := e.inner.SetRandom(); err != nil {
		return Element{}, err
	}
	return e, nil
}
