// Package mta implements the "MtA" ZK proof: the responder's proof that the
// ciphertext it returns during a multiplicative-to-additive exchange was
// formed correctly from the initiator's ciphertext, a chosen multiplicand,
// and an additive mask (spec.md §4.3 R2, §4.4 "mta").
package mta

import (
	"math/big"

	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/pkg/hash"
	"github.com/gg20lab/tofn/pkg/paillier"
	"github.com/gg20lab/tofn/pkg/pedersen"
	"github.com/gg20lab/tofn/pkg/serialize"
	zkinternal "github.com/gg20lab/tofn/pkg/zk/internal"
)

// Statement is the public claim: ResponseCiphertext = Initiator.Enc(beta) +
// Multiplicand * InitiatorCiphertext, for a secret beta and a secret
// multiplicand in [0,q), proven to the owner of Aux (the initiator's ZK
// setup).
type Statement struct {
	InitiatorCiphertext *paillier.Ciphertext
	ResponseCiphertext  *paillier.Ciphertext
	Initiator           *paillier.PublicKey // the initiator's Paillier key (responder encrypts under it)
	Aux                 *pedersen.Parameters
}

// Witness is the responder's secret multiplicand (k_j's peer, i.e. the
// responder's own γ_i or w_i) and additive mask beta, plus the nonce used
// when forming ResponseCiphertext.
type Witness struct {
	Multiplicand *safenum.Int
	Beta         *safenum.Int
	Nonce        *safenum.Nat
}

// Proof is a Fiat-Shamir sigma-protocol transcript.
type Proof struct {
	S        *safenum.Nat
	T        *safenum.Nat
	MaskCipher *paillier.Ciphertext
	Z1       *safenum.Int // masked multiplicand
	Z2       *safenum.Nat // masked nonce
	Z3       *safenum.Int // masked beta
}

const multiplicandBound = 256 // bits: multiplicand lives in Z_q

// Prove builds an MtA correctness proof.
func Prove(shareID uint32, stmt Statement, wit Witness) *Proof {
	alpha := zkinternal.RandomScalarInt(multiplicandBound + zkinternal.BlindingBits)
	gamma := zkinternal.RandomInt(stmt.Aux.N())
	tau := zkinternal.RandomInt(stmt.Aux.N())
	rho := zkinternal.RandomNat(stmt.Initiator.N())

	s := stmt.Aux.Commit(wit.Multiplicand, gamma)
	t := stmt.Aux.Commit(wit.Beta, tau)

	maskCipher := stmt.Initiator.AddCiphertexts(
		stmt.Initiator.MulByScalar(stmt.InitiatorCiphertext, alpha),
		stmt.Initiator.EncWithNonce(tau, rho),
	)

	e := challenge(shareID, stmt, s, t, maskCipher)

	z1 := new(safenum.Int).Add(alpha, new(safenum.Int).Mul(e, wit.Multiplicand, -1), -1)
	z3 := new(safenum.Int).Add(tau, new(safenum.Int).Mul(e, wit.Beta, -1), -1)
	z2 := maskNonce(stmt.Initiator, rho, wit.Nonce, e)

	return &Proof{S: s, T: t, MaskCipher: maskCipher, Z1: z1, Z2: z2, Z3: z3}
}

// Verify checks p against stmt, reporting every failure mode as false.
func Verify(shareID uint32, stmt Statement, p *Proof) bool {
	if p == nil || p.S == nil || p.T == nil || p.MaskCipher == nil || p.Z1 == nil || p.Z2 == nil || p.Z3 == nil {
		return false
	}
	bound := new(big.Int).Lsh(big.NewInt(1), multiplicandBound+zkinternal.BlindingBits+1)
	if new(big.Int).Abs(p.Z1.Big()).Cmp(bound) > 0 {
		return false
	}
	e := challenge(shareID, stmt, p.S, p.T, p.MaskCipher)

	lhs := stmt.Initiator.AddCiphertexts(
		stmt.Initiator.MulByScalar(stmt.InitiatorCiphertext, p.Z1),
		stmt.Initiator.EncWithNonce(p.Z3, p.Z2),
	)
	rhs := stmt.Initiator.AddCiphertexts(p.MaskCipher, stmt.Initiator.MulByScalar(stmt.ResponseCiphertext, e))
	return lhs.Equal(rhs)
}

func challenge(shareID uint32, stmt Statement, s, t *safenum.Nat, maskCipher *paillier.Ciphertext) *safenum.Int {
	digest := hash.Challenge(hash.TagMtaChallenge, shareID,
		stmt.InitiatorCiphertext.Bytes(), stmt.ResponseCiphertext.Bytes(), s.Bytes(), t.Bytes(), maskCipher.Bytes())
	return safenum.NewInt(0).SetBytes(digest[:])
}

func maskNonce(pk *paillier.PublicKey, rho, nonce *safenum.Nat, e *safenum.Int) *safenum.Nat {
	mod := safenum.ModulusFromNat(pk.N())
	nonceE := mod.Exp(nonce, e.Abs())
	if e.IsNegative() == 1 {
		nonceE = new(safenum.Nat).ModInverse(nonceE, mod)
	}
	return new(safenum.Nat).ModMul(rho, nonceE, mod)
}

func zeroIfNil(v *safenum.Int) *safenum.Int {
	if v == nil {
		return safenum.NewInt(0)
	}
	return v
}

// MarshalBinary encodes every field of the proof in order.
func (p *Proof) MarshalBinary() ([]byte, error) {
	maskBytes, err := p.MaskCipher.MarshalBinary()
	if err != nil {
		return nil, err
	}
	var out []byte
	out = serialize.PutLP(out, zkinternal.EncodeNat(p.S))
	out = serialize.PutLP(out, zkinternal.EncodeNat(p.T))
	out = serialize.PutLP(out, maskBytes)
	out = serialize.PutLP(out, zkinternal.EncodeInt(p.Z1))
	out = serialize.PutLP(out, zkinternal.EncodeNat(p.Z2))
	out = serialize.PutLP(out, zkinternal.EncodeInt(p.Z3))
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
	maskBytes, rest, err := serialize.TakeLP(rest)
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
	z3, _, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	p.S = zkinternal.DecodeNat(s)
	p.T = zkinternal.DecodeNat(t)
	p.MaskCipher = &paillier.Ciphertext{}
	if err := p.MaskCipher.UnmarshalBinary(maskBytes); err != nil {
		return err
	}
	p.Z1 = zkinternal.DecodeInt(z1)
	p.Z2 = zkinternal.DecodeNat(z2)
	p.Z3 = zkinternal.DecodeInt(z3)
	return nil
}
