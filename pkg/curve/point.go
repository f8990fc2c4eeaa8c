package curve

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ErrInvalidPoint is returned when decoding a byte string that does not
// encode a valid, finite, on-curve point.
var ErrInvalidPoint = errors.New("curve: invalid point encoding")

// Point is a projective point on secp256k1, normally serialized as a 33-byte
// SEC1-compressed encoding.
type Point struct {
	v secp256k1.JacobianPoint
}

// NewIdentityPoint returns the point at infinity, the additive identity.
func NewIdentityPoint() *Point {
	p := &Point{}
	p.v.Z.SetInt(0)
	return p
}

// Generator returns the secp256k1 base point G.
func Generator() *Point {
	p := &Point{}
	secp256k1.S256().AsJacobian(secp256k1.S256().BasePoint(), &p.v)
	return p
}

// ScalarBaseMult sets p = s*G and returns p.
func (p *Point) ScalarBaseMult(s *Scalar) *Point {
	var result secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(s.inner(), &result)
	p.v = result
	return p
}

// ScalarMult sets p = s*base and returns p.
func (p *Point) ScalarMult(s *Scalar, base *Point) *Point {
	var result secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(s.inner(), &base.v, &result)
	p.v = result
	return p
}

// Add sets p = a + b and returns p.
func (p *Point) Add(a, b *Point) *Point {
	var result secp256k1.JacobianPoint
	secp256k1.AddNonConst(&a.v, &b.v, &result)
	p.v = result
	return p
}

// Negate sets p = -a and returns p.
func (p *Point) Negate(a *Point) *Point {
	av := a.v
	av.ToAffine()
	av.Y.Negate(1)
	av.Y.Normalize()
	p.v = av
	return p
}

// IsIdentity reports whether p is the point at infinity.
func (p *Point) IsIdentity() bool {
	av := p.v
	av.ToAffine()
	return (av.X.IsZero() && av.Y.IsZero()) || p.v.Z.IsZero()
}

// Equal reports whether p == other, handling differing Jacobian
// representations of the same affine point.
func (p *Point) Equal(other *Point) bool {
	a, b := p.v, other.v
	a.ToAffine()
	b.ToAffine()
	if p.IsIdentity() && other.IsIdentity() {
		return true
	}
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

// ToCompressed returns the 33-byte SEC1-compressed encoding. The identity
// point has no valid compressed encoding and this panics if called on it —
// callers must check IsIdentity first, since an attempt to serialize the
// identity indicates a library invariant violation (the protocol never
// legitimately transmits the identity as a public key or commitment).
func (p *Point) ToCompressed() []byte {
	if p.IsIdentity() {
		panic("curve: cannot encode identity point")
	}
	av := p.v
	av.ToAffine()
	pk := secp256k1.NewPublicKey(&av.X, &av.Y)
	return pk.SerializeCompressed()
}

// SetBytes decodes a 33-byte SEC1-compressed encoding, rejecting the point at
// infinity and any off-curve or malformed encoding (spec.md §4.5).
func (p *Point) SetBytes(b []byte) error {
	if len(b) != 33 {
		return fmt.Errorf("%w: expected 33 bytes, got %d", ErrInvalidPoint, len(b))
	}
	pk, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	pk.AsJacobian(&p.v)
	return nil
}

// Clone returns an independent copy.
func (p *Point) Clone() *Point {
	c := &Point{}
	c.v = p.v
	return c
}

// XCoordScalar returns x(p) mod q, the ECDSA randomizer's r component. Panics
// if p is the identity (an invariant violation for this call site — R is
// never legitimately the identity when this is invoked, per sign round 5/8).
func (p *Point) XCoordScalar() *Scalar {
	if p.IsIdentity() {
		panic("curve: cannot take x-coordinate of identity point")
	}
	av := p.v
	av.ToAffine()
	xBytes := av.X.Bytes()
	s := &Scalar{}
	// x may be >= q (x lives in F_p, reduced here into Z_q); SetBytes
	// reduces mod q via ModNScalar's overflow-tolerant path below.
	overflow := s.v.SetByteSlice(xBytes[:])
	_ = overflow
	return s
}
