// Package pedersen holds the "ZK setup" Pedersen commitment parameters
// (N̂, h1, h2) that every range/MtA proof is stated against (spec.md §4,
// GLOSSARY "ZK setup").
package pedersen

import (
	"errors"

	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/pkg/serialize"
)

// Parameters is a party's public ZK setup: an RSA-like modulus N̂ with two
// generators h1, h2 of the same (hidden-order) subgroup.
type Parameters struct {
	n      *safenum.Modulus
	nNat   *safenum.Nat
	s, t   *safenum.Nat // h1 = s, h2 = t
}

// New builds Parameters from a modulus and two generators.
func New(n, s, t *safenum.Nat) *Parameters {
	return &Parameters{n: safenum.ModulusFromNat(n), nNat: n, s: s, t: t}
}

func (p *Parameters) N() *safenum.Nat { return p.nNat }
func (p *Parameters) S() *safenum.Nat { return p.s }
func (p *Parameters) T() *safenum.Nat { return p.t }

// Commit computes s^x * t^y mod N̂, the Pedersen commitment to (x bound by y).
func (p *Parameters) Commit(x, y *safenum.Int) *safenum.Nat {
	sx := expSigned(p.n, p.s, x)
	ty := expSigned(p.n, p.t, y)
	return new(safenum.Nat).ModMul(sx, ty, p.n)
}

// expSigned computes base^exp mod modulus for a possibly-negative exponent,
// via modular inversion of the absolute-value power.
func expSigned(modulus *safenum.Modulus, base *safenum.Nat, exp *safenum.Int) *safenum.Nat {
	abs := exp.Abs()
	result := modulus.Exp(base, abs)
	if exp.IsNegative() == 1 {
		result = new(safenum.Nat).ModInverse(result, modulus)
	}
	return result
}

// Verify checks that commitment == Commit(x, y), used by the Pedersen and
// Pedersen-WC proof verifiers.
func (p *Parameters) Verify(commitment *safenum.Nat, x, y *safenum.Int) bool {
	expected := p.Commit(x, y)
	return expected.Big().Cmp(commitment.Big()) == 0
}

// MarshalBinary encodes the ZK setup as its raw (N, s, t) bytes.
func (p *Parameters) MarshalBinary() ([]byte, error) {
	var out []byte
	out = serialize.PutLP(out, p.nNat.Big().Bytes())
	out = serialize.PutLP(out, p.s.Big().Bytes())
	out = serialize.PutLP(out, p.t.Big().Bytes())
	return out, nil
}

// UnmarshalBinary decodes a ZK setup previously encoded by MarshalBinary.
func (p *Parameters) UnmarshalBinary(data []byte) error {
	nb, rest, err := serialize.TakeLP(data)
	if err != nil {
		return err
	}
	sb, rest, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	tb, _, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	n := new(safenum.Nat).SetBytes(nb)
	*p = *New(n, new(safenum.Nat).SetBytes(sb), new(safenum.Nat).SetBytes(tb))
	return nil
}

// ErrNotSafeModulus is returned when a received ZK setup's modulus fails the
// correctness proof (spec.md §4.2 round 2: "verify every peer's...
// zkp_proof").
var ErrNotSafeModulus = errors.New("pedersen: zk setup proof rejected")
