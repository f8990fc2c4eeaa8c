// Package internal holds sampling helpers shared by every zk/* proof family,
// so each family doesn't re-derive its own ad hoc blinding-factor sampler.
package internal

import (
	"crypto/rand"
	"math/big"

	"github.com/cronokirby/safenum"
)

// BlindingBits is the extra statistical-security slack added to a modulus's
// bit length when sampling a sigma-protocol blinding factor, so that the
// blinding statistically hides the witness (standard "+ 2*sec_param" slack
// for a Paillier/RSA-based sigma protocol).
const BlindingBits = 256

// RandomInt samples a uniformly random signed integer with approximately
// bound.BitLen()+BlindingBits bits of magnitude, suitable as a sigma-protocol
// blinding factor over a modulus of the given bound.
func RandomInt(bound *safenum.Nat) *safenum.Int {
	bits := bound.TrueLen() + BlindingBits
	bytes := make([]byte, (bits+7)/8)
	if _, err := rand.Read(bytes); err != nil {
		panic("zk: failed to sample blinding factor: " + err.Error())
	}
	n := new(big.Int).SetBytes(bytes)
	neg, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		panic("zk: failed to sample sign bit: " + err.Error())
	}
	if neg.Sign() != 0 {
		n.Neg(n)
	}
	return safenum.NewInt(0).SetBig(n, n.BitLen())
}

// RandomNat samples a uniformly random value in [0, bound).
func RandomNat(bound *safenum.Nat) *safenum.Nat {
	b := bound.Big()
	n, err := rand.Int(rand.Reader, b)
	if err != nil {
		panic("zk: failed to sample randomness: " + err.Error())
	}
	return new(safenum.Nat).SetBytes(n.Bytes())
}

// RandomScalarInt samples a non-negative blinding factor in [0, 2^(bits)).
func RandomScalarInt(bits int) *safenum.Int {
	bytes := make([]byte, (bits+7)/8)
	if _, err := rand.Read(bytes); err != nil {
		panic("zk: failed to sample scalar blinding factor: " + err.Error())
	}
	n := new(big.Int).SetBytes(bytes)
	return safenum.NewInt(0).SetBig(n, n.BitLen())
}
