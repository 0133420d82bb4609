package maci

import (
	"fmt"

	"github.com/MuriData/maci-core/pkg/babyjub"
	"github.com/MuriData/maci-core/pkg/cipher"
	"github.com/MuriData/maci-core/pkg/field"
)

// Message is the encrypted form a Command and its signature take once
// published: a random IV and 10 ciphertext elements. It carries no
// plaintext information; only a coordinator holding the matching shared
// key can recover the Command inside.
type Message struct {
	IV   field.Element
	Data [10]field.Element
}

// ToFieldElements returns the canonical 11-element serialization
// [iv, data_0 ... data_9].
func (m Message) ToFieldElements() []field.Element {
	out := make([]field.Element, 0, 11)
	out = append(out, m.IV)
	out = append(out, m.Data[:]...)
	return out
}

// plaintextVector lays a Command and its signature out as the 10
// elements EncryptCommand seals: the 7 command elements followed by
// R8.x, R8.y, S.
func plaintextVector(cmd Command, sig babyjub.Signature) [10]field.Element {
	cv := cmd.ToFieldElements()
	var pt [10]field.Element
	copy(pt[:7], cv)
	pt[7] = sig.R8.X
	pt[8] = sig.R8.Y
	pt[9] = sig.S
	return pt
}

// EncryptCommand seals cmd and its signature under sharedKey, producing
// the Message a caller publishes via MaciState.PublishMessage.
func EncryptCommand(cmd Command, sig babyjub.Signature, sharedKey field.Element) (Message, error) {
	pt := plaintextVector(cmd, sig)
	ct, err := cipher.Encrypt(pt[:], sharedKey)
	if err != nil {
		return Message{}, err
	}
	var data [10]field.Element
	copy(data[:], ct.Data)
	return Message{IV: ct.IV, Data: data}, nil
}

// DecryptMessage recovers the Command and signature sealed in m under
// sharedKey. When sharedKey does not match the key the message was
// encrypted under, the result is an arbitrary field-element vector —
// indistinguishable from a validly-encrypted but semantically invalid
// command. Callers must route that case through ProcessMessage's normal
// validity predicates rather than treating decryption itself as able to
// fail.
func DecryptMessage(m Message, sharedKey field.Element) (Command, babyjub.Signature) {
	ct := cipher.Ciphertext{IV: m.IV, Data: m.Data[:]}
	pt := cipher.Decrypt(ct, sharedKey)

	cmd := Command{
		StateIndex:      pt[0],
		NewPubKey:       babyjub.PubKey{X: pt[1], Y: pt[2]},
		VoteOptionIndex: pt[3],
		NewVoteWeight:   pt[4],
		Nonce:           pt[5],
		Salt:            pt[6],
	}
	sig := babyjub.Signature{
		R8: babyjub.PubKey{X: pt[7], Y: pt[8]},
		S:  pt[9],
	}
	return cmd, sig
}

// MessageFromFieldElements parses the 11-element wire form back into a
// Message, the inverse of ToFieldElements.
func MessageFromFieldElements(v []field.Element) (Message, error) {
	if len(v) != 11 {
		return Message{}, fmt.Errorf("maci: message vector must have 11 elements, got %d", len(v))
	}
	var m Message
	m.IV = v[0]
	copy(m.Data[:], v[1:])
	return m, nil
}
