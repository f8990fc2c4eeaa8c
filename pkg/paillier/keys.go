// Package paillier wraps the Paillier cryptosystem used for GG20's
// homomorphic share arithmetic. Key generation, encryption, decryption and
// ciphertext homomorphic operations are treated as a black-box per spec.md
// §1 ("low-level Paillier encryption primitives... treated as a black-box
// library"); this package supplies that primitive using
// github.com/cronokirby/safenum for constant-time big-integer arithmetic.
package paillier

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/pkg/serialize"
)

// BitsBlumPrime is the bit length each Paillier prime factor must have.
// Fixed per SPEC_FULL.md §9: this repo treats the safe-prime soundness
// parameter as a black box and does not make it configurable.
const BitsBlumPrime = 1024

var (
	ErrPrimeBadLength = errors.New("paillier: prime factor is not the right length")
	ErrNotBlum        = errors.New("paillier: prime factor is not equivalent to 3 (mod 4)")
	ErrNotSafePrime   = errors.New("paillier: supposed prime factor is not a safe prime")
	ErrInvalidCipher  = errors.New("paillier: ciphertext is not in the valid residue range")
)

var oneNat = new(safenum.Nat).SetUint64(1)

// PublicKey is a Paillier encryption key: the modulus N (and N² cached for
// speed).
type PublicKey struct {
	n        *safenum.Modulus
	nSquared *safenum.Modulus
	nNat     *safenum.Nat
}

// NewPublicKey wraps a modulus N as a PublicKey.
func NewPublicKey(n *safenum.Nat) *PublicKey {
	nSq := new(safenum.Nat).Mul(n, n, -1)
	return &PublicKey{
		n:        safenum.ModulusFromNat(n),
		nSquared: safenum.ModulusFromNat(nSq),
		nNat:     n,
	}
}

// N returns the modulus N.
func (pk *PublicKey) N() *safenum.Nat { return pk.nNat }

// MarshalBinary encodes the public key as its raw modulus bytes, so the
// self-describing wire codec (pkg/serialize) can gob-encode a *PublicKey
// field directly without needing safenum itself to support gob.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return pk.nNat.Big().Bytes(), nil
}

// UnmarshalBinary reconstructs a public key from MarshalBinary's output.
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	n := new(safenum.Nat).SetBytes(data)
	*pk = *NewPublicKey(n)
	return nil
}

// Enc encrypts m under a freshly sampled random nonce, returning the
// ciphertext and the nonce used (needed by range proofs).
func (pk *PublicKey) Enc(m *safenum.Int) (*Ciphertext, *safenum.Nat) {
	nonce := sampleUnit(rand.Reader, pk.n)
	return pk.EncWithNonce(m, nonce), nonce
}

// EncWithNonce encrypts m using caller-supplied randomness nonce ∈ Z*_N.
func (pk *PublicKey) EncWithNonce(m *safenum.Int, nonce *safenum.Nat) *Ciphertext {
	// c = (1 + m*N) * nonce^N mod N^2
	mMod := new(safenum.Nat).ModSymmetric(m, pk.n)
	mN := new(safenum.Nat).ModMul(mMod, pk.nNat, pk.nSquared)
	base := new(safenum.Nat).Add(oneNat, mN, -1)

	nonceToN := pk.nSquared.Exp(nonce, pk.nNat)
	c := new(safenum.Nat).ModMul(base, nonceToN, pk.nSquared)
	return &Ciphertext{c: c, pk: pk}
}

// AddCiphertexts homomorphically adds two ciphertexts encrypted under this
// public key: Dec(out) = Dec(a) + Dec(b).
func (pk *PublicKey) AddCiphertexts(a, b *Ciphertext) *Ciphertext {
	c := new(safenum.Nat).ModMul(a.c, b.c, pk.nSquared)
	return &Ciphertext{c: c, pk: pk}
}

// MulByScalar homomorphically scales a ciphertext by a public scalar k:
// Dec(out) = k * Dec(a).
func (pk *PublicKey) MulByScalar(a *Ciphertext, k *safenum.Int) *Ciphertext {
	kAbs, kNeg := k.Abs(), k.IsNegative()
	c := pk.nSquared.Exp(a.c, kAbs)
	if kNeg == 1 {
		c = new(safenum.Nat).ModInverse(c, pk.nSquared)
	}
	return &Ciphertext{c: c, pk: pk}
}

// ValidateCiphertexts reports whether every ciphertext is a valid residue
// modulo N² (per spec.md §4.5: "deserialization rejects out-of-range
// residues").
func (pk *PublicKey) ValidateCiphertexts(cts ...*Ciphertext) bool {
	for _, ct := range cts {
		if ct == nil || ct.pk == nil {
			return false
		}
		if !MemberOfMultiplicativeGroup(ct.c, pk.nSquared.Nat()) {
			return false
		}
	}
	return true
}

// SecretKey is the decryption key corresponding to a PublicKey: the two
// prime factors P, Q.
type SecretKey struct {
	*PublicKey
	p, q   *safenum.Nat
	phi    *safenum.Nat
	phiInv *safenum.Nat
}

// KeyGen samples two BitsBlumPrime-sized safe Blum primes and returns the
// resulting key pair, drawing all randomness from rnd (spec.md §6
// "Deterministic seeding": every byte keygen spends must come from the
// session's seeded RNG).
func KeyGen(rnd io.Reader) (*PublicKey, *SecretKey, error) {
	p, err := sampleBlumPrime(rnd)
	if err != nil {
		return nil, nil, err
	}
	q, err := sampleBlumPrime(rnd)
	if err != nil {
		return nil, nil, err
	}
	sk, err := NewSecretKeyFromPrimes(p, q)
	if err != nil {
		return nil, nil, err
	}
	return sk.PublicKey, sk, nil
}

// NewSecretKeyFromPrimes builds a SecretKey from two already-validated safe
// Blum primes.
func NewSecretKeyFromPrimes(p, q *safenum.Nat) (*SecretKey, error) {
	if err := ValidatePrime(p); err != nil {
		return nil, fmt.Errorf("paillier: P invalid: %w", err)
	}
	if err := ValidatePrime(q); err != nil {
		return nil, fmt.Errorf("paillier: Q invalid: %w", err)
	}
	n := new(safenum.Nat).Mul(p, q, -1)
	pMinus1 := new(safenum.Nat).Sub(p, oneNat, -1)
	qMinus1 := new(safenum.Nat).Sub(q, oneNat, -1)
	phi := new(safenum.Nat).Mul(pMinus1, qMinus1, -1)
	nMod := safenum.ModulusFromNat(n)
	phiInv := new(safenum.Nat).ModInverse(phi, nMod)

	pk := NewPublicKey(n)
	return &SecretKey{PublicKey: pk, p: p, q: q, phi: phi, phiInv: phiInv}, nil
}

// MarshalBinary encodes a secret key as its two prime factors; N, phi and
// phiInv are all cheaply recomputed from them on decode.
func (sk *SecretKey) MarshalBinary() ([]byte, error) {
	var out []byte
	out = serialize.PutLP(out, sk.p.Big().Bytes())
	out = serialize.PutLP(out, sk.q.Big().Bytes())
	return out, nil
}

// UnmarshalBinary reconstructs a secret key from MarshalBinary's output.
func (sk *SecretKey) UnmarshalBinary(data []byte) error {
	pb, rest, err := serialize.TakeLP(data)
	if err != nil {
		return err
	}
	qb, _, err := serialize.TakeLP(rest)
	if err != nil {
		return err
	}
	reconstructed, err := NewSecretKeyFromPrimes(new(safenum.Nat).SetBytes(pb), new(safenum.Nat).SetBytes(qb))
	if err != nil {
		return err
	}
	*sk = *reconstructed
	return nil
}

// P returns the first prime factor.
func (sk *SecretKey) P() *safenum.Nat { return sk.p }

// Q returns the second prime factor.
func (sk *SecretKey) Q() *safenum.Nat { return sk.q }

// Phi returns ϕ(N) = (P-1)(Q-1).
func (sk *SecretKey) Phi() *safenum.Nat { return sk.phi }

// Dec decrypts ct, returning the symmetric (signed) plaintext in
// (-N/2, N/2]. Returns an error if ct is not a valid ciphertext (spec.md
// §4.5).
func (sk *SecretKey) Dec(ct *Ciphertext) (*safenum.Int, error) {
	if !sk.PublicKey.ValidateCiphertexts(ct) {
		return nil, ErrInvalidCipher
	}
	result := sk.nSquared.Exp(ct.c, sk.phi)
	result.Sub(result, oneNat, -1)
	result.Div(result, sk.n, -1)
	result.ModMul(result, sk.phiInv, sk.n)
	return new(safenum.Int).SetModSymmetric(result, sk.n), nil
}

// GeneratePedersenSecret samples (s, t, λ) such that s = t^λ mod N, for use
// as this share's ZK setup (pkg/pedersen).
func (sk *SecretKey) GeneratePedersenSecret(rnd io.Reader) (s, t, lambda *safenum.Nat) {
	lambda = sampleInRange(rnd, sk.phi)
	t = sampleUnit(rnd, sk.n)
	s = new(safenum.Nat).ModMul(new(safenum.Nat).Exp(t, lambda, sk.n), oneNat, sk.n)
	return s, t, lambda
}

// ValidatePrime checks that p has the right bit length, p ≡ 3 (mod 4), and
// (p-1)/2 is itself prime (a "safe" Blum prime), per spec.md §4.5 / §9.
func ValidatePrime(p *safenum.Nat) error {
	if bits := p.TrueLen(); bits != BitsBlumPrime {
		return fmt.Errorf("%w: have %d bits, want %d", ErrPrimeBadLength, bits, BitsBlumPrime)
	}
	if p.Byte(0)&0b11 != 3 {
		return ErrNotBlum
	}
	q := new(safenum.Nat).Rsh(p, 1, -1)
	if !q.Big().ProbablyPrime(20) {
		return ErrNotSafePrime
	}
	return nil
}

// MemberOfMultiplicativeGroup checks whether x ∈ Z*_n: 1 <= x < n and
// gcd(x, n) == 1. This is the Go analogue of the Rust source's
// `member_of_mul_group` (gg20/crypto_tools/paillier/zk/utils.rs), used by
// ValidateCiphertexts and to accept freshly sampled encryption nonces.
func MemberOfMultiplicativeGroup(x, n *safenum.Nat) bool {
	if x.Big().Sign() < 1 {
		return false
	}
	if x.Big().Cmp(n.Big()) >= 0 {
		return false
	}
	gcd := x.Big()
	gcd.GCD(nil, nil, gcd, n.Big())
	return gcd.Cmp(oneNat.Big()) == 0
}

func sampleBlumPrime(rnd io.Reader) (*safenum.Nat, error) {
	for {
		candidate, err := randPrimeBits(rnd, BitsBlumPrime)
		if err != nil {
			return nil, err
		}
		if candidate.Byte(0)&0b11 != 3 {
			continue
		}
		half := new(safenum.Nat).Rsh(candidate, 1, -1)
		if !half.Big().ProbablyPrime(20) {
			continue
		}
		return candidate, nil
	}
}

func sampleUnit(rnd io.Reader, n *safenum.Modulus) *safenum.Nat {
	for {
		cand := sampleInRange(rnd, n.Nat())
		if MemberOfMultiplicativeGroup(cand, n.Nat()) {
			return cand
		}
	}
}
