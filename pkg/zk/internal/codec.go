package internal

import (
	"math/big"

	"github.com/cronokirby/safenum"
)

// EncodeInt encodes a signed safenum.Int as a sign byte followed by its
// magnitude's big-endian bytes. Every zk/* proof family uses this to give
// its Proof type an explicit MarshalBinary rather than relying on safenum
// (a dependency this repo does not control) to support gob directly.
func EncodeInt(v *safenum.Int) []byte {
	b := v.Big()
	out := make([]byte, 0, 1+(b.BitLen()+7)/8)
	if b.Sign() < 0 {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	return append(out, new(big.Int).Abs(b).Bytes()...)
}

// DecodeInt reverses EncodeInt.
func DecodeInt(data []byte) *safenum.Int {
	if len(data) == 0 {
		return safenum.NewInt(0)
	}
	mag := new(big.Int).SetBytes(data[1:])
	if data[0] == 1 {
		mag.Neg(mag)
	}
	return safenum.NewInt(0).SetBig(mag, mag.BitLen())
}

// EncodeNat encodes an unsigned safenum.Nat as its big-endian bytes.
func EncodeNat(v *safenum.Nat) []byte { return v.Big().Bytes() }

// DecodeNat reverses EncodeNat.
func DecodeNat(data []byte) *safenum.Nat { return new(safenum.Nat).SetBytes(data) }
