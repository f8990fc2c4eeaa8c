package paillier

import (
	"fmt"

	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/pkg/serialize"
)

// Ciphertext is a Paillier ciphertext, a residue modulo N². Its canonical
// wire encoding is a fixed-width 2|N| byte string (spec.md §4.5).
type Ciphertext struct {
	c  *safenum.Nat
	pk *PublicKey
}

// Bytes returns the ciphertext's big-endian encoding, padded to 2*byteLen(N).
func (ct *Ciphertext) Bytes() []byte {
	nLen := (ct.pk.nNat.TrueLen() + 7) / 8
	want := 2 * nLen
	b := ct.c.Bytes()
	if len(b) >= want {
		return b
	}
	out := make([]byte, want)
	copy(out[want-len(b):], b)
	return out
}

// FromBytes decodes a ciphertext previously encoded by Bytes, rejecting
// residues outside [0, N²).
func FromBytes(pk *PublicKey, b []byte) (*Ciphertext, error) {
	c := new(safenum.Nat).SetBytes(b)
	if !pk.ValidateCiphertexts(&Ciphertext{c: c, pk: pk}) {
		return nil, fmt.Errorf("%w", ErrInvalidCipher)
	}
	return &Ciphertext{c: c, pk: pk}, nil
}

// Equal reports whether two ciphertexts are bitwise identical residues.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	return ct.c.Big().Cmp(other.c.Big()) == 0
}

// MarshalBinary encodes the ciphertext together with the modulus N it is
// valid under, so decoding never needs an out-of-band PublicKey reference
// (the sender's ek is not necessarily the only public key in scope when a
// round decodes an inbound message).
func (ct *Ciphertext) MarshalBinary() ([]byte, error) {
	var out []byte
	out = serialize.PutLP(out, ct.pk.nNat.Big().Bytes())
	out = serialize.PutLP(out, ct.c.Big().Bytes())
	return out, nil
}

// UnmarshalBinary decodes a ciphertext previously encoded by MarshalBinary.
func (ct *Ciphertext) UnmarshalBinary(data []byte) error {
	nb, rest, err := serialize.TakeLP(data)
	if err != nil {
		return err
	}
	cb, _, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	n := new(safenum.Nat).SetBytes(nb)
	pk := NewPublicKey(n)
	if !pk.ValidateCiphertexts(&Ciphertext{c: new(safenum.Nat).SetBytes(cb), pk: pk}) {
		return fmt.Errorf("%w", ErrInvalidCipher)
	}
	ct.pk = pk
	ct.c = new(safenum.Nat).SetBytes(cb)
	return nil
}
