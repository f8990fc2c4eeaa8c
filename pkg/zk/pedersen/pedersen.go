// Package pedersen implements the "Pedersen" ZK proof family: a Fiat-Shamir
// proof of knowledge of the value committed inside a Pedersen/Paillier-aux
// commitment, per spec.md §4.4.
package pedersen

import (
	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/pedersen"
	"github.com/gg20lab/tofn/pkg/serialize"
	zkinternal "github.com/gg20lab/tofn/pkg/zk/internal"
)

// Statement is the public commitment being proven: Commit = aux.Commit(x, y)
// for some secret (x, y) known to the prover.
type Statement struct {
	Commit *safenum.Nat
	Aux    *pedersen.Parameters
}

// Witness is the prover's secret opening of the commitment.
type Witness struct {
	X, Y *safenum.Int
}

// Proof is a Fiat-Shamir sigma-protocol transcript (commitment, responses).
type Proof struct {
	A         *safenum.Nat // aux.Commit(alpha, beta)
	ResponseX *safenum.Int // alpha + e*x
	ResponseY *safenum.Int // beta  + e*y
}

// Prove constructs a proof that stmt.Commit opens to wit under stmt.Aux.
func Prove(shareID uint32, stmt Statement, wit Witness) *Proof {
	alpha := zkinternal.RandomInt(stmt.Aux.N())
	beta := zkinternal.RandomInt(stmt.Aux.N())
	a := stmt.Aux.Commit(alpha, beta)

	e := challenge(shareID, stmt, a)

	rx := new(safenum.Int).Add(alpha, new(safenum.Int).Mul(e, wit.X, -1), -1)
	ry := new(safenum.Int).Add(beta, new(safenum.Int).Mul(e, wit.Y, -1), -1)

	return &Proof{A: a, ResponseX: rx, ResponseY: ry}
}

// Verify checks p against stmt. Every failure mode returns false rather than
// panicking, so the caller can record an attributable fault instead of
// aborting the session (spec.md §7).
func Verify(shareID uint32, stmt Statement, p *Proof) bool {
	if p == nil || p.A == nil || p.ResponseX == nil || p.ResponseY == nil {
		return false
	}
	e := challenge(shareID, stmt, p.A)

	// Check: aux.Commit(rx, ry) == A * Commit^e  (mod N̂)
	lhs := stmt.Aux.Commit(p.ResponseX, p.ResponseY)

	mod := safenum.ModulusFromNat(stmt.Aux.N())
	commitPowE := expSigned(mod, stmt.Commit, e)
	rhs := new(safenum.Nat).ModMul(p.A, commitPowE, mod)

	return lhs.Big().Cmp(rhs.Big()) == 0
}

func challenge(shareID uint32, stmt Statement, a *safenum.Nat) *safenum.Int {
	digest := hash.Challenge(hash.TagPedersenChallenge, shareID, stmt.Commit.Bytes(), a.Bytes())
	return safenum.NewInt(0).SetBytes(digest[:])
}

func expSigned(mod *safenum.Modulus, base *safenum.Nat, e *safenum.Int) *safenum.Nat {
	abs := e.Abs()
	r := mod.Exp(base, abs)
	if e.IsNegative() == 1 {
		r = new(safenum.Nat).ModInverse(r, mod)
	}
	return r
}

// MarshalBinary encodes the proof's three big-integer fields in order.
func (p *Proof) MarshalBinary() ([]byte, error) {
	var out []byte
	out = serialize.PutLP(out, zkinternal.EncodeNat(p.A))
	out = serialize.PutLP(out, zkinternal.EncodeInt(p.ResponseX))
	out = serialize.PutLP(out, zkinternal.EncodeInt(p.ResponseY))
	return out, nil
}

// UnmarshalBinary reverses MarshalBinary.
func (p *Proof) UnmarshalBinary(data []byte) error {
	a, rest, err := serialize.TakeLP(data)
	if err != nil {
		return err
	}
	rx, rest, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	ry, _, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	p.A = zkinternal.DecodeNat(a)
	p.ResponseX = zkinternal.DecodeInt(rx)
	p.ResponseY = zkinternal.DecodeInt(ry)
	return nil
}
