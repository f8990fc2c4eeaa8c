// Package pedersenwc implements "Pedersen with check": the same proof as
// zk/pedersen, plus a bound proving the committed value x is also the
// discrete log of a public group element (PublicPoint = x*Base). Used by
// sign round 3 ("commitment to (σ_i, g·σ_i)") and round 6/7's WC proofs
// (spec.md §4.3, §4.4).
package pedersenwc

import (
	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/pedersen"
	"github.com/gg20lab/tofn/pkg/serialize"
	zkinternal "github.com/gg20lab/tofn/pkg/zk/internal"
)

// Statement binds a Pedersen commitment to a public curve point that is
// claimed to equal Base^x.
type Statement struct {
	Commit      *safenum.Nat
	Aux         *pedersen.Parameters
	PublicPoint *curve.Point
	Base        *curve.Point // nil means the secp256k1 generator G
}

func (s Statement) base() *curve.Point {
	if s.Base != nil {
		return s.Base
	}
	return curve.Generator()
}

// Witness is the prover's secret: x is shared between the Pedersen
// commitment and the public point; y is the commitment's extra blinding.
type Witness struct {
	X *safenum.Int
	Y *safenum.Int

	// XScalar is X reduced into the secp256k1 scalar field, used for the
	// curve-side commitment. The caller supplies it directly (rather than
	// reducing X itself) because X's canonical range is Z_N̂, not Z_q.
	XScalar *curve.Scalar
}

// Proof is a Fiat-Shamir transcript proving both statements simultaneously
// with a single shared challenge.
type Proof struct {
	A         *safenum.Nat // aux.Commit(alpha, beta)
	Commit    *curve.Point // Base^alphaScalar
	ResponseX *safenum.Int
	ResponseY *safenum.Int
	Response  *curve.Scalar // alphaScalar + e*XScalar (mod q)
}

// Prove constructs a proof that stmt.Commit opens to wit AND
// stmt.PublicPoint == wit.XScalar * stmt.base().
func Prove(shareID uint32, stmt Statement, wit Witness) *Proof {
	alpha := zkinternal.RandomInt(stmt.Aux.N())
	beta := zkinternal.RandomInt(stmt.Aux.N())
	a := stmt.Aux.Commit(alpha, beta)

	alphaScalar := curve.NewScalarRandom()
	commit := curve.NewIdentityPoint().ScalarMult(alphaScalar, stmt.base())

	e := challenge(shareID, stmt, a, commit)

	rx := new(safenum.Int).Add(alpha, new(safenum.Int).Mul(e, wit.X, -1), -1)
	ry := new(safenum.Int).Add(beta, new(safenum.Int).Mul(e, wit.Y, -1), -1)

	eScalar := fiatShamirToScalar(shareID, stmt, a, commit)
	response := curve.NewScalar().Add(alphaScalar, curve.NewScalar().Mul(eScalar, wit.XScalar))

	return &Proof{A: a, Commit: commit, ResponseX: rx, ResponseY: ry, Response: response}
}

// Verify checks p against stmt, reporting every failure as false rather than
// panicking (spec.md §9's resolution of the r7 `assert_eq!`/`unwrap_or_else`
// panics into attributable faults).
func Verify(shareID uint32, stmt Statement, p *Proof) bool {
	if p == nil || p.A == nil || p.Commit == nil || p.ResponseX == nil || p.ResponseY == nil || p.Response == nil {
		return false
	}
	e := challenge(shareID, stmt, p.A, p.Commit)
	mod := safenum.ModulusFromNat(stmt.Aux.N())

	lhs := stmt.Aux.Commit(p.ResponseX, p.ResponseY)
	commitPowE := expSigned(mod, stmt.Commit, e)
	rhs := new(safenum.Nat).ModMul(p.A, commitPowE, mod)
	if lhs.Big().Cmp(rhs.Big()) != 0 {
		return false
	}

	eScalar := fiatShamirToScalar(shareID, stmt, p.A, p.Commit)
	lhsPoint := curve.NewIdentityPoint().ScalarMult(p.Response, stmt.base())
	rhsPoint := curve.NewIdentityPoint().ScalarMult(eScalar, stmt.PublicPoint)
	rhsPoint.Add(rhsPoint, p.Commit)

	return lhsPoint.Equal(rhsPoint)
}

func challenge(shareID uint32, stmt Statement, a *safenum.Nat, commit *curve.Point) *safenum.Int {
	digest := hash.Challenge(hash.TagPedersenChallenge, shareID,
		stmt.Commit.Bytes(), a.Bytes(), stmt.PublicPoint.ToCompressed(), commit.ToCompressed())
	return safenum.NewInt(0).SetBytes(digest[:])
}

func fiatShamirToScalar(shareID uint32, stmt Statement, a *safenum.Nat, commit *curve.Point) *curve.Scalar {
	digest := hash.Challenge(hash.TagPedersenChallenge, shareID,
		stmt.Commit.Bytes(), a.Bytes(), stmt.PublicPoint.ToCompressed(), commit.ToCompressed())
	s := curve.NewScalar()
	if err := s.SetBigEndian(digest[:]); err != nil {
		digest2 := hash.Challenge(hash.TagPedersenChallenge, shareID, digest[:])
		_ = s.SetBigEndian(digest2[:])
	}
	return s
}

func expSigned(mod *safenum.Modulus, base *safenum.Nat, e *safenum.Int) *safenum.Nat {
	abs := e.Abs()
	r := mod.Exp(base, abs)
	if e.IsNegative() == 1 {
		r = new(safenum.Nat).ModInverse(r, mod)
	}
	return r
}

// MarshalBinary encodes every field of the proof in order.
func (p *Proof) MarshalBinary() ([]byte, error) {
	commitBytes, err := p.Commit.MarshalBinary()
	if err != nil {
		return nil, err
	}
	responseBytes, err := p.Response.MarshalBinary()
	if err != nil {
		return nil, err
	}
	var out []byte
	out = serialize.PutLP(out, zkinternal.EncodeNat(p.A))
	out = serialize.PutLP(out, commitBytes)
	out = serialize.PutLP(out, zkinternal.EncodeInt(p.ResponseX))
	out = serialize.PutLP(out, zkinternal.EncodeInt(p.ResponseY))
	out = serialize.PutLP(out, responseBytes)
	return out, nil
}

// UnmarshalBinary reverses MarshalBinary.
func (p *Proof) UnmarshalBinary(data []byte) error {
	a, rest, err := serialize.TakeLP(data)
	if err != nil {
		return err
	}
	commitBytes, rest, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	rx, rest, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	ry, rest, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	responseBytes, _, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	p.A = zkinternal.DecodeNat(a)
	p.Commit = curve.NewIdentityPoint()
	if err := p.Commit.UnmarshalBinary(commitBytes); err != nil {
		return err
	}
	p.ResponseX = zkinternal.DecodeInt(rx)
	p.ResponseY = zkinternal.DecodeInt(ry)
	p.Response = curve.NewScalar()
	if err := p.Response.UnmarshalBinary(responseBytes); err != nil {
		return err
	}
	return nil
}
