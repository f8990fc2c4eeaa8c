package keygen

import (
	"fmt"
	"math/big"

	"github.com/cronokirby/safenum"
	"github.com/gg20lab/tofn/pkg/curve"
)

// scalarToInt converts a curve scalar into the signed integer representation
// Paillier encryption operates on. Every VSS evaluation keygen ever encrypts
// is already reduced mod q, so the result is always non-negative.
func scalarToInt(s *curve.Scalar) *safenum.Int {
	b := new(big.Int).SetBytes(s.Bytes())
	return safenum.NewInt(0).SetBig(b, b.BitLen())
}

// intToScalar is scalarToInt's inverse, used to recover a VSS evaluation
// after Paillier decryption. A plaintext that does not fit in 32 bytes, or
// that is negative, indicates the sender encrypted something other than a
// scalar — the caller treats this as an attributable fault, not a panic.
func intToScalar(v *safenum.Int) (*curve.Scalar, error) {
	b := v.Big()
	if b.Sign() < 0 {
		return nil, fmt.Errorf("keygen: decrypted share evaluation is negative")
	}
	raw := b.Bytes()
	if len(raw) > 32 {
		return nil, fmt.Errorf("keygen: decrypted share evaluation out of range")
	}
	var buf [32]byte
	copy(buf[32-len(raw):], raw)
	s := curve.NewScalar()
	if err := s.SetBigEndian(buf[:]); err != nil {
		return nil, err
	}
	return s, nil
}
