// Package cipher implements the stream-style symmetric encryption MACI uses
// to seal a Command+signature plaintext vector under an ECDH shared key
// before it is published on-chain as a Message.
package cipher

import (
	"github.com/MuriData/maci-core/pkg/field"
	"github.com/MuriData/maci-core/pkg/poseidon"
)

// Ciphertext is the wire form of an encrypted plaintext vector: a random IV
// and one F element of output per plaintext element.
type Ciphertext struct {
	IV   field.Element
	Data []field.Element
}

// Encrypt produces Ciphertext{iv, data} where iv is drawn uniformly from F
// and data[i] = plaintext[i] + H([key, iv+i]) (mod p). The per-index key
// stream is a Poseidon-keyed counter mode: simple to invert (see Decrypt)
// and, since H is collision- and preimage-resistant, indistinguishable from
// random to anyone without key.
func Encrypt(plaintext []field.Element, key field.Element) (Ciphertext, error) {
	iv, err := field.Random()
	if err != nil {
		return Ciphertext{}, err
	}
	return EncryptWithIV(plaintext, key, iv), nil
}

// EncryptWithIV is Encrypt with an explicit IV, exposed so tests can
// supply deterministic values.
func EncryptWithIV(plaintext []field.Element, key field.Element, iv field.Element) Ciphertext {
	data := make([]field.Element, len(plaintext))
	for i, pt := range plaintext {
		ki := poseidon.Hash(key, field.Add(iv, field.FromUint64(uint64(i))))
		data[i] = field.Add(pt, ki)
	}
	return Ciphertext{IV: iv, Data: data}
}

// Decrypt inverts Encrypt: decrypt(encrypt(pt, k), k) == pt for the same
// key. Decrypting under a different key yields a vector unrelated to pt,
// indistinguishable from a validly-encrypted-but-invalid command; callers
// must not treat a decryption "failure" as distinct from "message invalid"
// (there is no failure mode here — decryption always succeeds
// arithmetically, only the resulting command may fail validation).
func Decrypt(ct Ciphertext, key field.Element) []field.Element {
	plaintext := make([]field.Element, len(ct.Data))
	for i, d := range ct.Data {
		ki := poseidon.Hash(key, field.Add(ct.IV, field.FromUint64(uint64(i))))
		plaintext[i] = field.Sub(d, ki)
	}
	return plaintext
}
