// Package paillierkey implements the Paillier encryption-key correctness
// proof ("ek_proof" in the Rust source): a NIZK, bound to the owning party's
// share id, that a Paillier modulus N is the product of two distinct safe
// Blum primes, without revealing the factorization (spec.md §4.2 round 1,
// §4.4 "paillierkey"). This is the standard "Π_mod" construction: N has no
// small factors iff every challenge has an N-th root, and N is a Blum
// integer (product of two primes ≡ 3 mod 4) iff, for a fixed
// Jacobi-symbol-(-1) witness W, one of {y, -y, Wy, -Wy} is always a perfect
// fourth power mod N.
package paillierkey

import (
	"fmt"
	"math/big"

	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/serialize"
	zkinternal "github.com/gg20lab/tofn/pkg/zk/internal"
)

// Rounds is the number of Fiat-Shamir challenges checked. Each round that
// passes rules out a forged modulus with probability >= 1/2, so Rounds
// bounds soundness error to 2^-Rounds.
const Rounds = 16

// Statement is the public Paillier modulus N being proven well-formed.
type Statement struct {
	N *safenum.Nat
}

// Witness is the modulus's prime factorization.
type Witness struct {
	P, Q *safenum.Nat
}

// RoundProof is one Fiat-Shamir challenge's response.
type RoundProof struct {
	NthRoot    *safenum.Nat // y_i^(N^-1 mod phi(N)) mod N
	FourthRoot *safenum.Nat // 4th root of (-1)^A * W^B * y_i mod N
	A, B       bool
}

// Proof bundles the Jacobi-symbol-(-1) witness and every round's response.
type Proof struct {
	W      *safenum.Nat
	Rounds [Rounds]RoundProof
}

// Prove constructs a proof that stmt.N is a product of two safe Blum primes
// wit.P, wit.Q.
func Prove(partyID uint32, stmt Statement, wit Witness) *Proof {
	n := stmt.N.Big()
	p := wit.P.Big()
	q := wit.Q.Big()

	one := big.NewInt(1)
	pMinus1 := new(big.Int).Sub(p, one)
	qMinus1 := new(big.Int).Sub(q, one)
	phi := new(big.Int).Mul(pMinus1, qMinus1)
	nInv := new(big.Int).ModInverse(n, phi)

	w := findNonResidueWitness(p, q, n)

	proof := &Proof{W: natFromBig(w)}
	for i := 0; i < Rounds; i++ {
		y := challengeValue(partyID, stmt.N, proof.W, i, n)

		nthRoot := new(big.Int).Exp(y, nInv, n)

		a, b, fourthRoot := quarticRoot(y, p, q, n, w)

		proof.Rounds[i] = RoundProof{
			NthRoot:    natFromBig(nthRoot),
			FourthRoot: natFromBig(fourthRoot),
			A:          a,
			B:          b,
		}
	}
	return proof
}

// Verify checks proof against stmt, never panicking.
func Verify(partyID uint32, stmt Statement, proof *Proof) bool {
	if proof == nil || proof.W == nil {
		return false
	}
	n := stmt.N.Big()
	if n.Sign() <= 0 || n.Bit(0) == 0 {
		return false
	}
	w := proof.W.Big()
	if w.Sign() <= 0 || w.Cmp(n) >= 0 {
		return false
	}

	for i := 0; i < Rounds; i++ {
		r := proof.Rounds[i]
		if r.NthRoot == nil || r.FourthRoot == nil {
			return false
		}
		y := challengeValue(partyID, stmt.N, proof.W, i, n)

		nthRootPowN := new(big.Int).Exp(r.NthRoot.Big(), n, n)
		if nthRootPowN.Cmp(y) != 0 {
			return false
		}

		signed := applySign(y, w, n, r.A, r.B)
		fourthPow := new(big.Int).Exp(r.FourthRoot.Big(), big.NewInt(4), n)
		if fourthPow.Cmp(signed) != 0 {
			return false
		}
	}
	return true
}

// challengeValue derives the i-th Fiat-Shamir challenge y_i deterministically
// from the public statement, so the prover cannot bias it.
func challengeValue(partyID uint32, n *safenum.Nat, w *safenum.Nat, round int, modN *big.Int) *big.Int {
	digest := hash.Challenge(hash.TagEkProofChallenge, partyID, n.Big().Bytes(), w.Big().Bytes(), []byte{byte(round)})
	y := new(big.Int).SetBytes(digest[:])
	y.Mod(y, modN)
	if y.Sign() == 0 {
		y.SetInt64(1)
	}
	return y
}

// findNonResidueWitness returns a W in [0,N) with Jacobi(W,p) == -1 and
// Jacobi(W,q) == +1 (or vice versa), so Jacobi(W,N) == -1.
func findNonResidueWitness(p, q, n *big.Int) *big.Int {
	for c := int64(2); ; c++ {
		w := big.NewInt(c)
		if w.Cmp(n) >= 0 {
			w = new(big.Int).Mod(w, n)
		}
		jp := big.Jacobi(w, p)
		jq := big.Jacobi(w, q)
		if jp*jq == -1 {
			return w
		}
	}
}

// applySign returns (-1)^a * w^b * y mod n.
func applySign(y, w, n *big.Int, a, b bool) *big.Int {
	v := new(big.Int).Set(y)
	if a {
		v.Neg(v)
		v.Mod(v, n)
	}
	if b {
		v.Mul(v, w)
		v.Mod(v, n)
	}
	return v
}

// quarticRoot finds (a,b) in {0,1}x{0,1} such that (-1)^a * w^b * y is a
// quadratic residue mod p and mod q, then extracts its fourth root via CRT.
// Because p,q ≡ 3 (mod 4), (p-1)/2 and (q-1)/2 are odd, so every quadratic
// residue mod p (resp. q) is automatically a fourth power there too, and the
// double-sqrt formula a^((p+1)/4)^2 mod p recovers a fourth root directly.
func quarticRoot(y, p, q, n, w *big.Int) (a, b bool, root *big.Int) {
	for _, cand := range []struct{ a, b bool }{{false, false}, {true, false}, {false, true}, {true, true}} {
		signed := applySign(y, w, n, cand.a, cand.b)
		modP := new(big.Int).Mod(signed, p)
		modQ := new(big.Int).Mod(signed, q)
		if big.Jacobi(modP, p) != 1 || big.Jacobi(modQ, q) != 1 {
			continue
		}
		rootP := fourthRootMod3Prime(modP, p)
		rootQ := fourthRootMod3Prime(modQ, q)
		return cand.a, cand.b, crtCombine(rootP, rootQ, p, q)
	}
	// Unreachable for a genuine Blum modulus: one of the four sign
	// combinations always yields a simultaneous quadratic residue.
	return false, false, big.NewInt(0)
}

// fourthRootMod3Prime computes a fourth root of a QR a modulo a prime p ≡ 3
// (mod 4), via two applications of the p ≡ 3 (mod 4) square-root formula.
func fourthRootMod3Prime(a, p *big.Int) *big.Int {
	exp := new(big.Int).Add(p, big.NewInt(1))
	exp.Rsh(exp, 2)
	s1 := new(big.Int).Exp(a, exp, p)
	return new(big.Int).Exp(s1, exp, p)
}

// crtCombine reconstructs x mod p*q from x mod p and x mod q.
func crtCombine(xp, xq, p, q *big.Int) *big.Int {
	n := new(big.Int).Mul(p, q)
	qInvModP := new(big.Int).ModInverse(q, p)
	h := new(big.Int).Mul(new(big.Int).Sub(xp, xq), qInvModP)
	h.Mod(h, p)
	x := new(big.Int).Add(xq, new(big.Int).Mul(h, q))
	return x.Mod(x, n)
}

func natFromBig(v *big.Int) *safenum.Nat {
	return new(safenum.Nat).SetBytes(v.Bytes())
}

// MarshalBinary encodes the witness value W followed by every round's
// response (NthRoot, FourthRoot, A, B packed into one byte).
func (p *Proof) MarshalBinary() ([]byte, error) {
	out := serialize.PutLP(nil, zkinternal.EncodeNat(p.W))
	for _, r := range p.Rounds {
		out = serialize.PutLP(out, zkinternal.EncodeNat(r.NthRoot))
		out = serialize.PutLP(out, zkinternal.EncodeNat(r.FourthRoot))
		var flags byte
		if r.A {
			flags |= 1
		}
		if r.B {
			flags |= 2
		}
		out = append(out, flags)
	}
	return out, nil
}

// UnmarshalBinary reverses MarshalBinary.
func (p *Proof) UnmarshalBinary(data []byte) error {
	w, rest, err := serialize.TakeLP(data)
	if err != nil {
		return err
	}
	p.W = zkinternal.DecodeNat(w)
	for i := 0; i < Rounds; i++ {
		var nthRoot, fourthRoot []byte
		nthRoot, rest, err = serialize.TakeLP(rest)
		if err != nil {
			return err
		}
		fourthRoot, rest, err = serialize.TakeLP(rest)
		if err != nil {
			return err
		}
		if len(rest) < 1 {
			return fmt.Errorf("paillierkey: truncated proof")
		}
		flags := rest[0]
		rest = rest[1:]
		p.Rounds[i] = RoundProof{
			NthRoot:    zkinternal.DecodeNat(nthRoot),
			FourthRoot: zkinternal.DecodeNat(fourthRoot),
			A:          flags&1 != 0,
			B:          flags&2 != 0,
		}
	}
	return nil
}
