package vss

import (
	"io"

	"github.com/gg20lab/tofn/pkg/curve"
)

// Vss bundles a party's keygen-round polynomial together with its public
// commitment, mirroring the Rust source's `vss::Vss` (gg20/keygen/r1.rs).
type Vss struct {
	poly *Polynomial
	exp  *Exponent
}

// New samples a fresh degree-threshold polynomial with a random secret,
// f(0) = u_i.
func New(threshold int) *Vss {
	poly := NewPolynomial(threshold, curve.NewScalarRandom())
	return &Vss{poly: poly, exp: NewExponent(poly)}
}

// NewFromReader is New, but draws the secret and every polynomial
// coefficient from r, so keygen's deterministic seeded RNG drives VSS
// generation (spec.md §6 "Deterministic seeding", §8 "Determinism").
func NewFromReader(threshold int, r io.Reader) (*Vss, error) {
	secret, err := curve.NewScalarFromReader(r)
	if err != nil {
		return nil, err
	}
	poly, err := NewPolynomialFromReader(threshold, secret, r)
	if err != nil {
		return nil, err
	}
	return &Vss{poly: poly, exp: NewExponent(poly)}, nil
}

// GetSecret returns u_i = f(0).
func (v *Vss) GetSecret() *curve.Scalar { return v.poly.Constant() }

// Polynomial exposes the secret polynomial, for shareholder evaluation.
func (v *Vss) Polynomial() *Polynomial { return v.poly }

// Commit returns the public commitment g·f(·).
func (v *Vss) Commit() *Exponent { return v.exp }

// ShareIDToScalar converts a flattened share index into the x-coordinate
// used to evaluate VSS polynomials: index i is evaluated at scalar (i+1), so
// that x=0 is reserved for the secret itself and never collides with a real
// share.
func ShareIDToScalar(shareIndex uint32) *curve.Scalar {
	b := make([]byte, 32)
	v := uint64(shareIndex) + 1
	for i := 0; i < 8; i++ {
		b[31-i] = byte(v >> (8 * i))
	}
	s := curve.NewScalar()
	if err := s.SetBigEndian(b); err != nil {
		panic("vss: share index out of range: " + err.Error())
	}
	return s
}

// Lagrange computes the Lagrange coefficients {λ_i} for reconstructing f(0)
// from the evaluations at the given set of x-coordinates (flattened share
// indices, converted via ShareIDToScalar).
func Lagrange(shareIndices []uint32) map[uint32]*curve.Scalar {
	xs := make(map[uint32]*curve.Scalar, len(shareIndices))
	for _, idx := range shareIndices {
		xs[idx] = ShareIDToScalar(idx)
	}
	out := make(map[uint32]*curve.Scalar, len(shareIndices))
	for _, i := range shareIndices {
		num := curveScalarOne()
		den := curveScalarOne()
		for _, j := range shareIndices {
			if i == j {
				continue
			}
			// num *= (0 - x_j) = -x_j
			negXj := curve.NewScalar().Negate(xs[j])
			num.Mul(num, negXj)
			// den *= (x_i - x_j)
			diff := curve.NewScalar().Add(xs[i], curve.NewScalar().Negate(xs[j]))
			den.Mul(den, diff)
		}
		inv := curve.NewScalar().Invert(den)
		out[i] = curve.NewScalar().Mul(num, inv)
	}
	return out
}

func curveScalarOne() *curve.Scalar {
	b := make([]byte, 32)
	b[31] = 1
	s := curve.NewScalar()
	_ = s.SetBigEndian(b)
	return s
}
