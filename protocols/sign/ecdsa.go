package sign

import (
	"encoding/asn1"
	"math/big"

	"github.com/gg20lab/tofn/pkg/curve"
)

// derSignature is the ASN.1 shape encoding/asn1 marshals an ECDSA signature
// into: SEQUENCE { INTEGER r, INTEGER s }. No ASN.1 or ECDSA-signature
// library is declared in any retrieved go.mod (SPEC_FULL.md §4), so this
// repo uses the standard library the same way crypto/ecdsa.SignASN1 does.
type derSignature struct {
	R, S *big.Int
}

// normalizeLowS flips s to q-s whenever s lies in the upper half of the
// scalar field, the canonical ECDSA malleability fix spec.md §4.3 R8
// requires ("s in the low half").
func normalizeLowS(s *curve.Scalar) *curve.Scalar {
	sBig := new(big.Int).SetBytes(s.Bytes())
	half := new(big.Int).Rsh(curve.Order(), 1)
	if sBig.Cmp(half) <= 0 {
		return s
	}
	flipped := new(big.Int).Sub(curve.Order(), sBig)
	out := curve.NewScalar()
	var buf [32]byte
	flipped.FillBytes(buf[:])
	if err := out.SetBigEndian(buf[:]); err != nil {
		panic("sign: low-s normalization produced an out-of-range scalar: " + err.Error())
	}
	return out
}

// buildSignature assembles the final Signature value from r and a
// low-s-normalized s.
func buildSignature(r, s *curve.Scalar) (*Signature, error) {
	s = normalizeLowS(s)
	der, err := asn1.Marshal(derSignature{R: new(big.Int).SetBytes(r.Bytes()), S: new(big.Int).SetBytes(s.Bytes())})
	if err != nil {
		return nil, err
	}
	return &Signature{R: r.Bytes(), S: s.Bytes(), DER: der}, nil
}

// Verify checks sig against digest under public key y using the standard
// ECDSA verification equation (spec.md §8, "Signing soundness").
func Verify(y *curve.Point, digest [32]byte, sig *Signature) bool {
	r := curve.NewScalar()
	if err := r.SetBigEndian(sig.R); err != nil || r.IsZero() {
		return false
	}
	s := curve.NewScalar()
	if err := s.SetBigEndian(sig.S); err != nil || s.IsZero() {
		return false
	}
	mBig := new(big.Int).Mod(new(big.Int).SetBytes(digest[:]), curve.Order())
	var mBuf [32]byte
	mBig.FillBytes(mBuf[:])
	m := curve.NewScalar()
	if err := m.SetBigEndian(mBuf[:]); err != nil {
		return false
	}

	sInv := curve.NewScalar().Invert(s)
	u1 := curve.NewScalar().Mul(m, sInv)
	u2 := curve.NewScalar().Mul(r, sInv)

	point := curve.NewIdentityPoint().Add(
		curve.NewIdentityPoint().ScalarBaseMult(u1),
		curve.NewIdentityPoint().ScalarMult(u2, y),
	)
	if point.IsIdentity() {
		return false
	}
	return point.XCoordScalar().Equal(r)
}
