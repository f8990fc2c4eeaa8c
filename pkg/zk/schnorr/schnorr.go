// Package schnorr implements a Fiat-Shamir Schnorr proof of knowledge of a
// discrete log, used for keygen round 3's x_i_proof (proof of knowledge of
// the Shamir share's discrete log). protocols/sign's analogous round-5 proof
// additionally binds the witness to a Paillier ciphertext, so it uses
// pkg/zk/eq instead of this package.
package schnorr

import (
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/hash"
)

// Statement is the public discrete-log statement: Public = witness * Base.
type Statement struct {
	Public *curve.Point
	Base   *curve.Point // nil means the secp256k1 generator G
}

func (s Statement) base() *curve.Point {
	if s.Base != nil {
		return s.Base
	}
	return curve.Generator()
}

// Proof is a non-interactive Schnorr proof (commitment, response).
type Proof struct {
	Commitment *curve.Point
	Response   *curve.Scalar
}

// Prove constructs a proof of knowledge of witness such that
// stmt.Public == witness * stmt.base(). shareID binds the proof to the
// prover, per spec.md §4.4's Fiat-Shamir construction.
func Prove(shareID uint32, stmt Statement, witness *curve.Scalar) *Proof {
	k := curve.NewScalarRandom()
	commitment := curve.NewIdentityPoint().ScalarMult(k, stmt.base())

	e := challenge(shareID, stmt, commitment)
	response := curve.NewScalar().Add(k, curve.NewScalar().Mul(e, witness))

	return &Proof{Commitment: commitment, Response: response}
}

// Verify checks p against stmt. It never panics; every failure mode is
// reported via a boolean so the caller can attribute blame (spec.md §4.4).
func Verify(shareID uint32, stmt Statement, p *Proof) bool {
	if p == nil || p.Commitment == nil || p.Response == nil {
		return false
	}
	e := challenge(shareID, stmt, p.Commitment)

	lhs := curve.NewIdentityPoint().ScalarMult(p.Response, stmt.base())
	rhs := curve.NewIdentityPoint().ScalarMult(e, stmt.Public)
	rhs.Add(rhs, p.Commitment)

	return lhs.Equal(rhs)
}

func challenge(shareID uint32, stmt Statement, commitment *curve.Point) *curve.Scalar {
	digest := hash.Challenge(hash.TagSchnorrChallenge, shareID,
		stmt.Public.ToCompressed(), stmt.base().ToCompressed(), commitment.ToCompressed())
	e := curve.NewScalar()
	// Fiat-Shamir challenges are reduced mod q by construction; SetBigEndian
	// enforces canonical range, so hash digests that happen to land >= q are
	// deterministically re-hashed once (overwhelmingly rare: ~2^-128).
	if err := e.SetBigEndian(digest[:]); err != nil {
		digest2 := hash.Challenge(hash.TagSchnorrChallenge, shareID, digest[:])
		_ = e.SetBigEndian(digest2[:])
	}
	return e
}
