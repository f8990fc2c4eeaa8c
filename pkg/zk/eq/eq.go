// Package eq implements the "eq" ZK proof: knowledge of a single value k
// that simultaneously opens a Paillier ciphertext (under Prover's key) and
// is the discrete log, base Base, of a public curve point. Sign round 5
// uses this to bind R_i = R^k_i to the k_i encrypted back in round 1
// (spec.md §4.3 R5, §4.4 "eq"), grounded on the combined Paillier/curve
// sigma-protocol shape in pkg/zk/mtawc.
package eq

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

const plaintextBound = 256

// Statement is the public claim: Ciphertext = Prover.Enc(k), and
// PublicPoint = k * Base, for the same secret k.
type Statement struct {
	Ciphertext  *paillier.Ciphertext
	Prover      *paillier.PublicKey
	Aux         *pedersen.Parameters
	PublicPoint *curve.Point
	Base        *curve.Point
}

// Witness is the shared secret k in both its Paillier-plaintext and
// curve-scalar forms, plus the Paillier encryption nonce.
type Witness struct {
	K       *safenum.Int
	KScalar *curve.Scalar
	Nonce   *safenum.Nat
}

// Proof is a Fiat-Shamir sigma-protocol transcript proving both relations
// with a single shared challenge.
type Proof struct {
	S          *safenum.Nat
	MaskCipher *paillier.Ciphertext
	MaskPoint  *curve.Point
	Z1         *safenum.Int
	Z2         *safenum.Nat
	ZScalar    *curve.Scalar
}

// Prove constructs an eq proof for stmt using wit.
func Prove(shareID uint32, stmt Statement, wit Witness) *Proof {
	alpha := zkinternal.RandomScalarInt(plaintextBound + zkinternal.BlindingBits)
	gamma := zkinternal.RandomInt(stmt.Aux.N())
	rho := zkinternal.RandomNat(stmt.Prover.N())
	alphaScalar := curve.NewScalarRandom()

	s := stmt.Aux.Commit(wit.K, gamma)
	maskCipher := stmt.Prover.EncWithNonce(alpha, rho)
	maskPoint := curve.NewIdentityPoint().ScalarMult(alphaScalar, stmt.Base)

	e := challenge(shareID, stmt, s, maskCipher, maskPoint)

	z1 := new(safenum.Int).Add(alpha, new(safenum.Int).Mul(e, wit.K, -1), -1)
	z2 := maskNonce(stmt.Prover, rho, wit.Nonce, e)

	eScalar := challengeScalar(shareID, stmt, s, maskCipher, maskPoint)
	zScalar := curve.NewScalar().Add(alphaScalar, curve.NewScalar().Mul(eScalar, wit.KScalar))

	return &Proof{S: s, MaskCipher: maskCipher, MaskPoint: maskPoint, Z1: z1, Z2: z2, ZScalar: zScalar}
}

// Verify checks p against stmt, reporting every failure as false.
func Verify(shareID uint32, stmt Statement, p *Proof) bool {
	if p == nil || p.S == nil || p.MaskCipher == nil || p.MaskPoint == nil || p.Z1 == nil || p.Z2 == nil || p.ZScalar == nil {
		return false
	}
	bound := new(big.Int).Lsh(big.NewInt(1), plaintextBound+zkinternal.BlindingBits+1)
	if new(big.Int).Abs(p.Z1.Big()).Cmp(bound) > 0 {
		return false
	}

	e := challenge(shareID, stmt, p.S, p.MaskCipher, p.MaskPoint)
	lhs := stmt.Prover.EncWithNonce(p.Z1, p.Z2)
	rhs := stmt.Prover.AddCiphertexts(p.MaskCipher, stmt.Prover.MulByScalar(stmt.Ciphertext, e))
	if !lhs.Equal(rhs) {
		return false
	}

	eScalar := challengeScalar(shareID, stmt, p.S, p.MaskCipher, p.MaskPoint)
	lhsPoint := curve.NewIdentityPoint().ScalarMult(p.ZScalar, stmt.Base)
	rhsPoint := curve.NewIdentityPoint().ScalarMult(eScalar, stmt.PublicPoint)
	rhsPoint.Add(rhsPoint, p.MaskPoint)
	return lhsPoint.Equal(rhsPoint)
}

func challenge(shareID uint32, stmt Statement, s *safenum.Nat, maskCipher *paillier.Ciphertext, maskPoint *curve.Point) *safenum.Int {
	digest := hash.Challenge(hash.TagEqChallenge, shareID,
		stmt.Ciphertext.Bytes(), s.Bytes(), maskCipher.Bytes(),
		stmt.PublicPoint.ToCompressed(), stmt.Base.ToCompressed(), maskPoint.ToCompressed())
	return safenum.NewInt(0).SetBytes(digest[:])
}

func challengeScalar(shareID uint32, stmt Statement, s *safenum.Nat, maskCipher *paillier.Ciphertext, maskPoint *curve.Point) *curve.Scalar {
	digest := hash.Challenge(hash.TagEqChallenge, shareID,
		stmt.Ciphertext.Bytes(), s.Bytes(), maskCipher.Bytes(),
		stmt.PublicPoint.ToCompressed(), stmt.Base.ToCompressed(), maskPoint.ToCompressed())
	sc := curve.NewScalar()
	if err := sc.SetBigEndian(digest[:]); err != nil {
		digest2 := hash.Challenge(hash.TagEqChallenge, shareID, digest[:])
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
	out = serialize.PutLP(out, maskCipherBytes)
	out = serialize.PutLP(out, maskPointBytes)
	out = serialize.PutLP(out, zkinternal.EncodeInt(p.Z1))
	out = serialize.PutLP(out, zkinternal.EncodeNat(p.Z2))
	out = serialize.PutLP(out, zScalarBytes)
	return out, nil
}

// UnmarshalBinary reverses MarshalBinary.
func (p *Proof) UnmarshalBinary(data []byte) error {
	s, rest, err := serialize.TakeLP(data)
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
	zScalarBytes, _, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	p.S = zkinternal.DecodeNat(s)
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
	p.ZScalar = curve.NewScalar()
	if err := p.ZScalar.UnmarshalBinary(zScalarBytes); err != nil {
		return err
	}
	return nil
}
