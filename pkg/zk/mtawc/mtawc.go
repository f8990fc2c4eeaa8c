// Package mtawc implements "MtA with check": the same correctness proof as
// zk/mta, plus a bound proving the multiplicand used is the discrete log of
// a public curve point (e.g. W_i = g·w_i, the Lagrange-adjusted signing key
// share committed at keygen). Used by sign round 2's MtAwc(k_j, w_i)
// (spec.md §4.3 R2, §4.4 "mtawc").
package mtawc

import (
	"math/big"

	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/paillier"
	"github.com/gg20lab/tofn/pkg/pedersen"
	"github.com/gg20lab/tofn/pkg/serialize"
	zkinternal "github.com/gg20lab/tofn/pkg/zk/internal"
)

// Statement is the public claim, as in mta.Statement, plus the public point
// the multiplicand must correspond to.
type Statement struct {
	InitiatorCiphertext *paillier.Ciphertext
	ResponseCiphertext  *paillier.Ciphertext
	Initiator           *paillier.PublicKey
	Aux                 *pedersen.Parameters
	PublicPoint         *curve.Point // W_i = g * multiplicand
}

// Witness adds the multiplicand's curve-scalar form to mta.Witness, so the
// proof can bind the Paillier-side multiplicand to the curve-side point.
type Witness struct {
	Multiplicand      *safenum.Int
	MultiplicandScalar *curve.Scalar
	Beta              *safenum.Int
	Nonce             *safenum.Nat
}

// Proof extends mta.Proof with a Schnorr-style curve commitment/response.
type Proof struct {
	S, T       *safenum.Nat
	MaskCipher *paillier.Ciphertext
	MaskPoint  *curve.Point
	Z1         *safenum.Int
	Z2         *safenum.Nat
	Z3         *safenum.Int
	ZScalar    *curve.Scalar
}

const multiplicandBound = 256

// Prove builds an MtAwc correctness-plus-binding proof.
func Prove(shareID uint32, stmt Statement, wit Witness) *Proof {
	alpha := zkinternal.RandomScalarInt(multiplicandBound + zkinternal.BlindingBits)
	gamma := zkinternal.RandomInt(stmt.Aux.N())
	tau := zkinternal.RandomInt(stmt.Aux.N())
	rho := zkinternal.RandomNat(stmt.Initiator.N())
	alphaScalar := curve.NewScalarRandom()

	s := stmt.Aux.Commit(wit.Multiplicand, gamma)
	t := stmt.Aux.Commit(wit.Beta, tau)
	maskCipher := stmt.Initiator.AddCiphertexts(
		stmt.Initiator.MulByScalar(stmt.InitiatorCiphertext, alpha),
		stmt.Initiator.EncWithNonce(tau, rho),
	)
	maskPoint := curve.NewIdentityPoint().ScalarBaseMult(alphaScalar)

	e := challenge(shareID, stmt, s, t, maskCipher, maskPoint)

	z1 := new(safenum.Int).Add(alpha, new(safenum.Int).Mul(e, wit.Multiplicand, -1), -1)
	z3 := new(safenum.Int).Add(tau, new(safenum.Int).Mul(e, wit.Beta, -1), -1)
	z2 := maskNonce(stmt.Initiator, rho, wit.Nonce, e)

	eScalar := challengeScalar(shareID, stmt, s, t, maskCipher, maskPoint)
	zScalar := curve.NewScalar().Add(alphaScalar, curve.NewScalar().Mul(eScalar, wit.MultiplicandScalar))

	return &Proof{S: s, T: t, MaskCipher: maskCipher, MaskPoint: maskPoint, Z1: z1, Z2: z2, Z3: z3, ZScalar: zScalar}
}

// Verify checks p against stmt, reporting every failure as false.
func Verify(shareID uint32, stmt Statement, p *Proof) bool {
	if p == nil || p.S == nil || p.T == nil || p.MaskCipher == nil || p.MaskPoint == nil || p.Z1 == nil || p.Z2 == nil || p.Z3 == nil || p.ZScalar == nil {
		return false
	}
	bound := new(big.Int).Lsh(big.NewInt(1), multiplicandBound+zkinternal.BlindingBits+1)
	if new(big.Int).Abs(p.Z1.Big()).Cmp(bound) > 0 {
		return false
	}
	e := challenge(shareID, stmt, p.S, p.T, p.MaskCipher, p.MaskPoint)

	lhs := stmt.Initiator.AddCiphertexts(
		stmt.Initiator.MulByScalar(stmt.InitiatorCiphertext, p.Z1),
		stmt.Initiator.EncWithNonce(p.Z3, p.Z2),
	)
	rhs := stmt.Initiator.AddCiphertexts(p.MaskCipher, stmt.Initiator.MulByScalar(stmt.ResponseCiphertext, e))
	if !lhs.Equal(rhs) {
		return false
	}

	eScalar := challengeScalar(shareID, stmt, p.S, p.T, p.MaskCipher, p.MaskPoint)
	lhsPoint := curve.NewIdentityPoint().ScalarBaseMult(p.ZScalar)
	rhsPoint := curve.NewIdentityPoint().ScalarMult(eScalar, stmt.PublicPoint)
	rhsPoint.Add(rhsPoint, p.MaskPoint)
	return lhsPoint.Equal(rhsPoint)
}

func challenge(shareID uint32, stmt Statement, s, t *safenum.Nat, maskCipher *paillier.Ciphertext, maskPoint *curve.Point) *safenum.Int {
	digest := hash.Challenge(hash.TagMtaChallenge, shareID,
		stmt.InitiatorCiphertext.Bytes(), stmt.ResponseCiphertext.Bytes(), s.Bytes(), t.Bytes(),
		maskCipher.Bytes(), stmt.PublicPoint.ToCompressed(), maskPoint.ToCompressed())
	return safenum.NewInt(0).SetBytes(digest[:])
}

func challengeScalar(shareID uint32, stmt Statement, s, t *safenum.Nat, maskCipher *paillier.Ciphertext, maskPoint *curve.Point) *curve.Scalar {
	digest := hash.Challenge(hash.TagMtaChallenge, shareID,
		stmt.InitiatorCiphertext.Bytes(), stmt.ResponseCiphertext.Bytes(), s.Bytes(), t.Bytes(),
		maskCipher.Bytes(), stmt.PublicPoint.ToCompressed(), maskPoint.ToCompressed())
	sc := curve.NewScalar()
	if err := sc.SetBigEndian(digest[:]); err != nil {
		digest2 := hash.Challenge(hash.TagMtaChallenge, shareID, digest[:])
		_ = sc.SetBigEndian(digest2[:])
	}
	return sc
}

func maskNonce(pk *paillier.PublicKey, rho, nonce *safenum.Nat, e *safenum.Int) *safenum.Nat {
	mod := safenum.ModulusFromNat(pk.N())
	nonceE := mod.Exp(nonce, e.Abs())
	if e.IsNegative() == 1 {
		nonceE = new(safenum.Nat).ModInverse(nonceE, mod)
	}
	return new(safenum.Nat).ModMul(rho, nonceE, mod)
}

// MarshalBinary encodes every field of the proof in order.
func (p *Proof) MarshalBinary() ([]byte, error) {
	maskCipherBytes, err := p.MaskCipher.MarshalBinary()
	if err != nil {
		return nil, err
	}
	maskPointBytes, err := p.MaskPoint.MarshalBinary()
	if err != nil {
		return nil, err
	}
	zScalarBytes, err := p.ZScalar.MarshalBinary()
	if err != nil {
		return nil, err
	}
	var out []byte
	out = serialize.PutLP(out, zkinternal.EncodeNat(p.S))
	out = serialize.PutLP(out, zkinternal.EncodeNat(p.T))
	out = serialize.PutLP(out, maskCipherBytes)
	out = serialize.PutLP(out, maskPointBytes)
	out = serialize.PutLP(out, zkinternal.EncodeInt(p.Z1))
	out = serialize.PutLP(out, zkinternal.EncodeNat(p.Z2))
	out = serialize.PutLP(out, zkinternal.EncodeInt(p.Z3))
	out = serialize.PutLP(out, zScalarBytes)
	return out, nil
}

// UnmarshalBinary reverses MarshalBinary.
func (p *Proof) UnmarshalBinary(data []byte) error {
	s, rest, err := serialize.TakeLP(data)
	if err != nil {
		return err
	}
	t, rest, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	maskCipherBytes, rest, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	maskPointBytes, rest, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	z1, rest, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	z2, rest, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	z3, rest, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	zScalarBytes, _, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	p.S = zkinternal.DecodeNat(s)
	p.T = zkinternal.DecodeNat(t)
	p.MaskCipher = &paillier.Ciphertext{}
	if err := p.MaskCipher.UnmarshalBinary(maskCipherBytes); err != nil {
		return err
	}
	p.MaskPoint = curve.NewIdentityPoint()
	if err := p.MaskPoint.UnmarshalBinary(maskPointBytes); err != nil {
		return err
	}
	p.Z1 = zkinternal.DecodeInt(z1)
	p.Z2 = zkinternal.DecodeNat(z2)
	p.Z3 = zkinternal.DecodeInt(z3)
	p.ZScalar = curve.NewScalar()
	if err := p.ZScalar.UnmarshalBinary(zScalarBytes); err != nil {
		return err
	}
	return nil
}
