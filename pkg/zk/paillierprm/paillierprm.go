// Package paillierprm implements the ZK-setup correctness proof ("zkp_proof"
// in the Rust source): a NIZK proof of knowledge of the discrete log Lambda
// relating a party's Pedersen/Paillier auxiliary parameters S = T^Lambda mod
// N̂ (spec.md §4.2 round 1, §4.4 "paillierprm"). N̂'s order is secret and
// unknown to the verifier, so the usual Schnorr blinding-bits technique
// already used by zk/schnorr and zk/pedersen is reused here rather than a
// curve-group proof.
package paillierprm

import (
	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/serialize"
	zkinternal "github.com/gg20lab/tofn/pkg/zk/internal"
)

// Statement is the public ZK-setup parameters: S = T^Lambda mod N.
type Statement struct {
	N *safenum.Nat
	S *safenum.Nat
	T *safenum.Nat
}

// Witness is the secret discrete log relating S and T.
type Witness struct {
	Lambda *safenum.Nat
}

// Proof is a Fiat-Shamir sigma-protocol transcript.
type Proof struct {
	A        *safenum.Nat // T^alpha mod N
	Response *safenum.Nat // alpha + e*Lambda, computed over the integers
}

// Prove constructs a proof that stmt.S = stmt.T^wit.Lambda mod stmt.N.
func Prove(partyID uint32, stmt Statement, wit Witness) *Proof {
	mod := safenum.ModulusFromNat(stmt.N)
	alpha := zkinternal.RandomNat(stmt.N)

	a := mod.Exp(stmt.T, alpha)
	e := challenge(partyID, stmt, a)

	eNat := natFromOutput(e)
	response := new(safenum.Nat).Add(alpha, new(safenum.Nat).Mul(eNat, wit.Lambda, -1), -1)

	return &Proof{A: a, Response: response}
}

// Verify checks p against stmt, never panicking.
func Verify(partyID uint32, stmt Statement, p *Proof) bool {
	if p == nil || p.A == nil || p.Response == nil {
		return false
	}
	mod := safenum.ModulusFromNat(stmt.N)
	e := challenge(partyID, stmt, p.A)
	eNat := natFromOutput(e)

	lhs := mod.Exp(stmt.T, p.Response)
	sPowE := mod.Exp(stmt.S, eNat)
	rhs := new(safenum.Nat).ModMul(p.A, sPowE, mod)

	return lhs.Big().Cmp(rhs.Big()) == 0
}

func challenge(partyID uint32, stmt Statement, a *safenum.Nat) hash.Output {
	return hash.Challenge(hash.TagZkSetupChallenge, partyID,
		stmt.N.Big().Bytes(), stmt.S.Big().Bytes(), stmt.T.Big().Bytes(), a.Big().Bytes())
}

func natFromOutput(o hash.Output) *safenum.Nat {
	return new(safenum.Nat).SetBytes(o[:])
}

// MarshalBinary encodes the proof's two big-integer fields in order.
func (p *Proof) MarshalBinary() ([]byte, error) {
	var out []byte
	out = serialize.PutLP(out, zkinternal.EncodeNat(p.A))
	out = serialize.PutLP(out, zkinternal.EncodeNat(p.Response))
	return out, nil
}

// UnmarshalBinary reverses MarshalBinary.
func (p *Proof) UnmarshalBinary(data []byte) error {
	a, rest, err := serialize.TakeLP(data)
	if err != nil {
		return err
	}
	resp, _, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	p.A = zkinternal.DecodeNat(a)
	p.Response = zkinternal.DecodeNat(resp)
	return nil
}
