// Package vss implements Feldman verifiable secret sharing over secp256k1:
// a degree-t polynomial f with f(0) = the shared secret, plus the
// commitments g·f(·) that let any shareholder check their share without
// learning anyone else's (spec.md §4.2, GLOSSARY "VSS").
package vss

import (
	"crypto/rand"
	"io"

	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/serialize"
)

// Polynomial is f(X) = c0 + c1*X + ... + ct*X^t, stored as its coefficients.
type Polynomial struct {
	coeffs []*curve.Scalar
}

// NewPolynomial samples a uniformly random degree-t polynomial with the
// given constant term (f(0) = constant), using crypto/rand.
func NewPolynomial(threshold int, constant *curve.Scalar) *Polynomial {
	p, err := NewPolynomialFromReader(threshold, constant, rand.Reader)
	if err != nil {
		panic("vss: failed to read randomness: " + err.Error())
	}
	return p
}

// NewPolynomialFromReader is NewPolynomial, but draws every non-constant
// coefficient from r instead of crypto/rand, so keygen's deterministic
// seeded RNG can drive VSS polynomial generation (spec.md §8).
func NewPolynomialFromReader(threshold int, constant *curve.Scalar, r io.Reader) (*Polynomial, error) {
	coeffs := make([]*curve.Scalar, threshold+1)
	coeffs[0] = constant.Clone()
	for i := 1; i <= threshold; i++ {
		c, err := curve.NewScalarFromReader(r)
		if err != nil {
			return nil, err
		}
		coeffs[i] = c
	}
	return &Polynomial{coeffs: coeffs}, nil
}

// Degree returns t.
func (p *Polynomial) Degree() int { return len(p.coeffs) - 1 }

// Constant returns f(0).
func (p *Polynomial) Constant() *curve.Scalar { return p.coeffs[0] }

// Evaluate computes f(x) via Horner's method.
func (p *Polynomial) Evaluate(x *curve.Scalar) *curve.Scalar {
	result := curve.NewScalar()
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, p.coeffs[i])
	}
	return result
}

// Exponent is the public commitment to a Polynomial: [g*c0, g*c1, ..., g*ct].
type Exponent struct {
	commits []*curve.Point
}

// NewExponent commits to every coefficient of p.
func NewExponent(p *Polynomial) *Exponent {
	commits := make([]*curve.Point, len(p.coeffs))
	for i, c := range p.coeffs {
		commits[i] = curve.NewIdentityPoint().ScalarBaseMult(c)
	}
	return &Exponent{commits: commits}
}

// Degree returns t.
func (e *Exponent) Degree() int { return len(e.commits) - 1 }

// ConstantCommit returns g*f(0).
func (e *Exponent) ConstantCommit() *curve.Point { return e.commits[0] }

// Evaluate computes g*f(x) directly from the commitments, without knowledge
// of f, using Horner's method in the exponent.
func (e *Exponent) Evaluate(x *curve.Scalar) *curve.Point {
	result := curve.NewIdentityPoint()
	for i := len(e.commits) - 1; i >= 0; i-- {
		result = curve.NewIdentityPoint().ScalarMult(x, result)
		result.Add(result, e.commits[i])
	}
	return result
}

// Sum combines several independently-committed polynomials into their sum's
// commitment, F(X) = Σ Fⱼ(X). All inputs must share the same degree.
func Sum(exponents []*Exponent) (*Exponent, error) {
	if len(exponents) == 0 {
		return nil, errNoExponents
	}
	degree := exponents[0].Degree()
	for _, e := range exponents {
		if e.Degree() != degree {
			return nil, errDegreeMismatch
		}
	}
	commits := make([]*curve.Point, degree+1)
	for i := range commits {
		acc := curve.NewIdentityPoint()
		for _, e := range exponents {
			acc.Add(acc, e.commits[i])
		}
		commits[i] = acc
	}
	return &Exponent{commits: commits}, nil
}

// MarshalBinary encodes the exponent as its ordered list of point
// commitments, since Exponent's backing slice is unexported and gob cannot
// reach it via reflection.
func (e *Exponent) MarshalBinary() ([]byte, error) {
	var out []byte
	for _, c := range e.commits {
		b, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = serialize.PutLP(out, b)
	}
	return out, nil
}

// UnmarshalBinary reverses MarshalBinary.
func (e *Exponent) UnmarshalBinary(data []byte) error {
	var commits []*curve.Point
	rest := data
	for len(rest) > 0 {
		var chunk []byte
		var err error
		chunk, rest, err = serialize.TakeLP(rest)
		if err != nil {
			return err
		}
		p := curve.NewIdentityPoint()
		if err := p.UnmarshalBinary(chunk); err != nil {
			return err
		}
		commits = append(commits, p)
	}
	e.commits = commits
	return nil
}
