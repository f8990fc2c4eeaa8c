package sign

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/pkg/curve"
	"github.com/gg20lab/tofn/pkg/sdk"
)

// blindingBits mirrors pkg/zk/internal's BlindingBits. protocols/sign sits
// outside pkg/zk, so it cannot import that package's Go-internal sampling
// helpers directly; randomBlindingInt below reimplements RandomInt's
// algorithm for the one place this package needs it (the σ_i Pedersen
// commitment's blinding factor, reused across rounds 3/6/7).
const blindingBits = 256

// randomBlindingInt samples a uniformly random signed integer with
// approximately bound.TrueLen()+blindingBits bits of magnitude, the same
// distribution pkg/zk/internal.RandomInt produces for every ZK proof's own
// sigma-protocol blinding factor.
func randomBlindingInt(bound *safenum.Nat) *safenum.Int {
	bits := bound.TrueLen() + blindingBits
	buf := make([]byte, (bits+7)/8)
	if _, err := rand.Read(buf); err != nil {
		panic("sign: failed to sample blinding factor: " + err.Error())
	}
	n := new(big.Int).SetBytes(buf)
	neg, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		panic("sign: failed to sample sign bit: " + err.Error())
	}
	if neg.Sign() != 0 {
		n.Neg(n)
	}
	return safenum.NewInt(0).SetBig(n, n.BitLen())
}

// scalarToInt converts a curve scalar into the signed integer representation
// Paillier encryption operates on. Every witness this package ever encrypts
// is already reduced mod q, so the result is always non-negative.
func scalarToInt(s *curve.Scalar) *safenum.Int {
	b := new(big.Int).SetBytes(s.Bytes())
	return safenum.NewInt(0).SetBig(b, b.BitLen())
}

// intToScalar is scalarToInt's inverse, reducing a decrypted Paillier
// plaintext into Z_q the way every MtA accumulation in this package expects.
// Unlike keygen's intToScalar, negative or oversized values are reduced
// rather than rejected: MtA arithmetic routinely produces intermediate
// values outside [0, N) that must still land in Z_q.
func intToScalar(v *safenum.Int) *curve.Scalar {
	b := v.Big()
	q := curve.Order()
	m := new(big.Int).Mod(b, q)
	var buf [32]byte
	m.FillBytes(buf[:])
	s := curve.NewScalar()
	if err := s.SetBigEndian(buf[:]); err != nil {
		panic(fmt.Sprintf("sign: reduced value still out of range: %v", err))
	}
	return s
}

// digestToScalar reduces a 32-byte message digest into Z_q, the standard
// ECDSA "bits2int" step for a curve whose order is close to 2^256.
func digestToScalar(digest sdk.MessageDigest) *curve.Scalar {
	b := new(big.Int).SetBytes(digest.Bytes())
	q := curve.Order()
	m := new(big.Int).Mod(b, q)
	var buf [32]byte
	m.FillBytes(buf[:])
	s := curve.NewScalar()
	if err := s.SetBigEndian(buf[:]); err != nil {
		panic(fmt.Sprintf("sign: reduced digest still out of range: %v", err))
	}
	return s
}

// negateScalar returns -s mod q as a fresh scalar.
func negateScalar(s *curve.Scalar) *curve.Scalar {
	return curve.NewScalar().Negate(s)
}

// addScalars returns a + b as a fresh scalar.
func addScalars(a, b *curve.Scalar) *curve.Scalar {
	return curve.NewScalar().Add(a, b)
}
