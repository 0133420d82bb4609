package maci

import (
	"math/big"

	"github.com/MuriData/maci-core/pkg/field"
	"golang.org/x/crypto/sha3"
)

// NothingUpMySleeve is the message tree's zero leaf: a publicly
// verifiable constant, keccak256("Maci") reduced mod p, chosen so nobody
// can claim the zero leaf was secretly crafted to collide with a real
// message.
var NothingUpMySleeve = computeNothingUpMySleeve()

func computeNothingUpMySleeve() field.Element {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte("Maci"))
	digest := h.Sum(nil)
	return field.FromBigInt(new(big.Int).SetBytes(digest))
}
