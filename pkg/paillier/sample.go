package paillier

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/cronokirby/safenum"
)

// randPrimeBits samples a uniformly random probable prime of exactly `bits`
// bits from rnd, via math/big's helper (safenum does not itself expose a
// prime sampler).
func randPrimeBits(rnd io.Reader, bits int) (*safenum.Nat, error) {
	p, err := rand.Prime(rnd, bits)
	if err != nil {
		return nil, err
	}
	return new(safenum.Nat).SetBytes(p.Bytes()), nil
}

// sampleInRange samples a uniformly random value in [1, bound) from rnd.
func sampleInRange(rnd io.Reader, bound *safenum.Nat) *safenum.Nat {
	b := bound.Big()
	for {
		n, err := rand.Int(rnd, b)
		if err != nil {
			panic("paillier: failed to sample randomness: " + err.Error())
		}
		if n.Sign() != 0 {
			return new(safenum.Nat).SetBytes(n.Bytes())
		}
	}
}

// sampleRangeQCubed samples a value in [0, q^3) from rnd, used by the GG20
// range proof's witness masking (spec.md §4.3 R1, §4.4 "range").
func sampleRangeQCubed(rnd io.Reader, q *big.Int) *safenum.Nat {
	qCubed := new(big.Int).Exp(q, big.NewInt(3), nil)
	n, err := rand.Int(rnd, qCubed)
	if err != nil {
		panic("paillier: failed to sample range witness: " + err.Error())
	}
	return new(safenum.Nat).SetBytes(n.Bytes())
}
